// Package internal holds process-wide configuration populated from CLI
// flags and environment variables.
package internal

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all environment variables read by the process.
const EnvPrefix = "LOCKSTEP"

// Configuration values populated by RegisterCommandFlags.
var (
	LogLevel string
	Host     string
	Port     uint16

	ServerPollMS uint16

	ClientName    string
	ClientStart   int64
	ClientPollMS  uint16
	ClientPauseMS uint16
)

// Flag binds a CLI flag to one of the package configuration variables.
type Flag struct {
	Name     string
	Register func(fs *pflag.FlagSet)
}

// CLI flag definitions.
var (
	LogLevelFlag = Flag{
		Name: "log-level",
		Register: func(fs *pflag.FlagSet) {
			fs.StringVar(&LogLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
		},
	}
	HostFlag = Flag{
		Name: "host",
		Register: func(fs *pflag.FlagSet) {
			fs.StringVar(&Host, "host", "", "host to bind (server) or connect to (client)")
		},
	}
	PortFlag = Flag{
		Name: "port",
		Register: func(fs *pflag.FlagSet) {
			fs.Uint16Var(&Port, "port", 5001, "arbiter server port")
		},
	}

	ServerPollMSFlag = Flag{
		Name: "poll-ms",
		Register: func(fs *pflag.FlagSet) {
			fs.Uint16Var(&ServerPollMS, "poll-ms", 100, "interval between turn checks while a session is waiting")
		},
	}

	ClientNameFlag = Flag{
		Name: "name",
		Register: func(fs *pflag.FlagSet) {
			fs.StringVar(&ClientName, "name", "Client1", "participant name sent with every message")
		},
	}
	ClientStartFlag = Flag{
		Name: "start",
		Register: func(fs *pflag.FlagSet) {
			fs.Int64Var(&ClientStart, "start", 1, "first counter value to send")
		},
	}
	ClientPollMSFlag = Flag{
		Name: "poll-ms",
		Register: func(fs *pflag.FlagSet) {
			fs.Uint16Var(&ClientPollMS, "poll-ms", 100, "pause before re-checking after a WAIT signal")
		},
	}
	ClientPauseMSFlag = Flag{
		Name: "pause-ms",
		Register: func(fs *pflag.FlagSet) {
			fs.Uint16Var(&ClientPauseMS, "pause-ms", 1000, "pause after each transmitted message")
		},
	}
)

// RegisterCommandFlags registers the given flags on the command and binds
// each one to its LOCKSTEP_* environment variable. A flag set explicitly on
// the command line always wins over the environment.
func RegisterCommandFlags(cmd *cobra.Command, flags []*Flag) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := cmd.PersistentFlags()
	for _, flag := range flags {
		if fs.Lookup(flag.Name) != nil {
			return errors.Errorf("flag %q already registered on command %q", flag.Name, cmd.Name())
		}
		flag.Register(fs)
		f := fs.Lookup(flag.Name)
		if err := v.BindPFlag(flag.Name, f); err != nil {
			return errors.Wrapf(err, "bind flag %q failed", flag.Name)
		}
		if !f.Changed && v.IsSet(flag.Name) {
			if err := fs.Set(flag.Name, fmt.Sprintf("%v", v.Get(flag.Name))); err != nil {
				return errors.Wrapf(err, "apply environment override for %q failed", flag.Name)
			}
		}
	}
	return nil
}

// ValidateEnv checks that the resolved configuration values are usable.
func ValidateEnv() error {
	switch strings.ToLower(LogLevel) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unknown log level %q", LogLevel)
	}
	if Port == 0 {
		return errors.New("port must be non-zero")
	}
	return nil
}
