package apps

import (
	"context"
	"net"
	"strconv"
	"time"

	"lockstep/internal"
	"lockstep/internal/pkg/client"
	"lockstep/internal/pkg/validate"

	"github.com/pkg/errors"
)

// ClientAppCfg configures a ClientApp.
type ClientAppCfg interface {
	ApplyClientApp(*ClientApp) error
}

// ClientApp is a single participant client application.
type ClientApp struct {
	Host  string
	Port  uint16 `validate:"required"`
	Name  string `validate:"required"`
	Start int64
}

// NewClientApp creates a new ClientApp.
func NewClientApp(cfgs ...ClientAppCfg) (*ClientApp, error) {
	app := &ClientApp{}
	for _, cfg := range cfgs {
		if err := cfg.ApplyClientApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ClientApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = internal.Port
	}
	if app.Name == "" {
		app.Name = internal.ClientName
		app.Start = internal.ClientStart
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ClientApp failed")
	}
	return app, nil
}

func (app *ClientApp) Run(ctx context.Context, args []string) error {
	addrCfg := client.WithServerPort(app.Port)
	if app.Host != "" {
		addrCfg = client.WithServerAddr(net.JoinHostPort(app.Host, strconv.Itoa(int(app.Port))))
	}
	cfgs := []client.Cfg{
		addrCfg,
		client.WithName(app.Name),
		client.WithStartValue(app.Start),
	}
	if internal.ClientPollMS > 0 {
		cfgs = append(cfgs, client.WithPollInterval(time.Duration(internal.ClientPollMS)*time.Millisecond))
	}
	if internal.ClientPauseMS > 0 {
		cfgs = append(cfgs, client.WithSendPause(time.Duration(internal.ClientPauseMS)*time.Millisecond))
	}
	c, err := client.NewClient(cfgs...)
	if err != nil {
		return errors.Wrap(err, "create client failed")
	}
	if err := c.Connect(ctx); err != nil {
		return errors.Wrap(err, "connect client failed")
	}
	return errors.Wrap(c.Run(ctx), "run client failed")
}
