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
	"golang.org/x/sync/errgroup"
)

// Participant is one row of the fixed demo roster.
type Participant struct {
	Name  string
	Start int64
}

// DefaultParticipants is the demo roster: two participants connecting in
// order, interleaving odd and even counters.
var DefaultParticipants = []Participant{
	{Name: "Client1", Start: 1},
	{Name: "Client2", Start: 2},
}

// DemoAppCfg configures a DemoApp.
type DemoAppCfg interface {
	ApplyDemoApp(*DemoApp) error
}

// DemoApp runs the fixed roster of participant clients against a running
// arbiter server in a single process.
type DemoApp struct {
	Host         string
	Port         uint16        `validate:"required"`
	Participants []Participant `validate:"required,dive"`
}

// NewDemoApp creates a new DemoApp.
func NewDemoApp(cfgs ...DemoAppCfg) (*DemoApp, error) {
	app := &DemoApp{}
	for _, cfg := range cfgs {
		if err := cfg.ApplyDemoApp(app); err != nil {
			return nil, errors.Wrap(err, "apply DemoApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = internal.Port
	}
	if app.Host == "" {
		app.Host = "localhost"
	}
	if len(app.Participants) == 0 {
		app.Participants = DefaultParticipants
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate DemoApp failed")
	}
	return app, nil
}

func (app *DemoApp) Run(ctx context.Context, args []string) error {
	addr := net.JoinHostPort(app.Host, strconv.Itoa(int(app.Port)))
	g, ctx := errgroup.WithContext(ctx)
	for _, participant := range app.Participants {
		participant := participant
		cfgs := []client.Cfg{
			client.WithServerAddr(addr),
			client.WithName(participant.Name),
			client.WithStartValue(participant.Start),
		}
		if internal.ClientPollMS > 0 {
			cfgs = append(cfgs, client.WithPollInterval(time.Duration(internal.ClientPollMS)*time.Millisecond))
		}
		if internal.ClientPauseMS > 0 {
			cfgs = append(cfgs, client.WithSendPause(time.Duration(internal.ClientPauseMS)*time.Millisecond))
		}
		c, err := client.NewClient(cfgs...)
		if err != nil {
			return errors.Wrapf(err, "create client %s failed", participant.Name)
		}
		// Connect in roster order so identities are assigned deterministically.
		if err := c.Connect(ctx); err != nil {
			return errors.Wrapf(err, "connect client %s failed", participant.Name)
		}
		g.Go(func() error {
			return errors.Wrapf(c.Run(ctx), "run client %s failed", participant.Name)
		})
	}
	return errors.Wrap(g.Wait(), "run participants failed")
}
