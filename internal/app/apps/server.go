package apps

import (
	"context"
	"time"

	"lockstep/internal"
	"lockstep/internal/pkg/server"
	"lockstep/internal/pkg/validate"

	"github.com/pkg/errors"
)

// ServerAppCfg configures a ServerApp.
type ServerAppCfg interface {
	ApplyServerApp(*ServerApp) error
}

// ServerApp is the arbiter server application.
type ServerApp struct {
	Host string
	Port uint16 `validate:"required"`
}

// NewServerApp creates a new ServerApp.
func NewServerApp(cfgs ...ServerAppCfg) (*ServerApp, error) {
	app := &ServerApp{}
	for _, cfg := range cfgs {
		if err := cfg.ApplyServerApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ServerApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = internal.Port
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ServerApp failed")
	}
	return app, nil
}

func (app *ServerApp) Run(ctx context.Context, args []string) error {
	cfgs := []server.Cfg{
		server.WithHost(app.Host),
		server.WithPort(app.Port),
	}
	if internal.ServerPollMS > 0 {
		cfgs = append(cfgs, server.WithPollInterval(time.Duration(internal.ServerPollMS)*time.Millisecond))
	}
	srv, err := server.NewServer(cfgs...)
	if err != nil {
		return errors.Wrap(err, "create server failed")
	}
	return errors.Wrap(srv.ListenAndServe(ctx), "run server failed")
}
