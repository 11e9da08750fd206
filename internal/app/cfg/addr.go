// Package cfg implements functionality to configure an app.
//
// A configuration object is implemented once but can be applied to
// multiple app types; supporting a new type only requires adding the
// corresponding ApplyX method.
package cfg

import (
	"lockstep/internal"
	"lockstep/internal/app/apps"
)

// AddrCfg is configuration for the arbiter server address.
type AddrCfg struct {
	host string
	port uint16
}

// NewAddrCfg creates a new AddrCfg from the given config.
func NewAddrCfg(host string, port uint16) *AddrCfg {
	return &AddrCfg{
		host: host,
		port: port,
	}
}

// AddrFromEnv creates a new AddrCfg from the current environment.
func AddrFromEnv() *AddrCfg {
	return &AddrCfg{
		host: internal.Host,
		port: internal.Port,
	}
}

// ApplyServerApp applies the AddrCfg to a ServerApp.
func (cfg AddrCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.Host = cfg.host
	app.Port = cfg.port
	return nil
}

// ApplyClientApp applies the AddrCfg to a ClientApp.
func (cfg AddrCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Host = cfg.host
	app.Port = cfg.port
	return nil
}

// ApplyDemoApp applies the AddrCfg to a DemoApp.
func (cfg AddrCfg) ApplyDemoApp(app *apps.DemoApp) error {
	app.Host = cfg.host
	app.Port = cfg.port
	return nil
}
