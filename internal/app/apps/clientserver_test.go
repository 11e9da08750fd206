package apps_test

import (
	"context"
	"net"
	"testing"
	"time"

	"lockstep/internal"
	"lockstep/internal/app/apps"
	"lockstep/internal/app/cfg"

	"github.com/stretchr/testify/require"
)

// freePort reserves an ephemeral port and releases it for the server to bind.
func freePort(t *testing.T) uint16 {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	require.NoError(t, ln.Close())
	return port
}

func TestServerAndDemoApps(t *testing.T) {
	internal.ServerPollMS = 1
	internal.ClientPollMS = 1
	internal.ClientPauseMS = 1
	port := freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		s, err := apps.NewServerApp(cfg.NewAddrCfg("127.0.0.1", port))
		require.NoError(t, err)
		serverErr <- s.Run(ctx, nil)
	}()

	// The server binds synchronously at the start of Run; give it a
	// moment before the participants dial in.
	time.Sleep(100 * time.Millisecond)

	demoErr := make(chan error, 1)
	go func() {
		d, err := apps.NewDemoApp(cfg.NewAddrCfg("127.0.0.1", port))
		require.NoError(t, err)
		demoErr <- d.Run(ctx, nil)
	}()

	// Let the participants exchange a few messages, then shut down.
	time.Sleep(500 * time.Millisecond)
	cancel()
	require.NoError(t, <-demoErr)
	require.NoError(t, <-serverErr)
}

func TestNewServerAppRequiresPort(t *testing.T) {
	internal.Port = 0
	_, err := apps.NewServerApp()
	require.Error(t, err)
}

func TestNewClientAppDefaults(t *testing.T) {
	internal.ClientName = "Client1"
	internal.ClientStart = 1
	app, err := apps.NewClientApp(cfg.NewAddrCfg("", 5001))
	require.NoError(t, err)
	require.Empty(t, app.Host)
	require.Equal(t, uint16(5001), app.Port)
	require.Equal(t, "Client1", app.Name)
	require.Equal(t, int64(1), app.Start)
}

func TestNewDemoAppUsesFixedRoster(t *testing.T) {
	app, err := apps.NewDemoApp(cfg.NewAddrCfg("", 5001))
	require.NoError(t, err)
	require.Equal(t, apps.DefaultParticipants, app.Participants)
}
