package cfg

import (
	"lockstep/internal"
	"lockstep/internal/app/apps"
)

// ParticipantCfg is configuration for a participant's name and first counter value.
type ParticipantCfg struct {
	name  string
	start int64
}

// NewParticipantCfg creates a new ParticipantCfg from the given config.
func NewParticipantCfg(name string, start int64) *ParticipantCfg {
	return &ParticipantCfg{
		name:  name,
		start: start,
	}
}

// ParticipantFromEnv creates a new ParticipantCfg from the current environment.
func ParticipantFromEnv() *ParticipantCfg {
	return &ParticipantCfg{
		name:  internal.ClientName,
		start: internal.ClientStart,
	}
}

// ApplyClientApp applies the ParticipantCfg to a ClientApp.
func (cfg ParticipantCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Name = cfg.name
	app.Start = cfg.start
	return nil
}
