package server

import (
	"context"
	"net"
	"testing"
	"time"

	"lockstep/internal/pkg/protocol"
	"lockstep/internal/pkg/session"

	"github.com/stretchr/testify/require"
)

// startServer runs a server on an ephemeral port with a fast poll interval.
func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	srv, err := NewServer(
		WithHost("127.0.0.1"),
		WithPort(0),
		WithPollInterval(2*time.Millisecond),
	)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx)
	}()
	require.Eventually(t, func() bool {
		return srv.Addr() != nil
	}, time.Second, time.Millisecond)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-errCh)
	})
	return srv, srv.Addr().String()
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// awaitGo drains signals until a GO arrives. Consecutive unterminated WAIT
// signals can coalesce into a single read, so only the token suffix is
// inspected.
func awaitGo(t *testing.T, conn net.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		token, err := protocol.ReadToken(conn)
		require.NoError(t, err)
		if protocol.LatestSignal(token) == protocol.SignalGo {
			return
		}
	}
}

func send(t *testing.T, conn net.Conn, msg protocol.Message) {
	t.Helper()
	require.NoError(t, protocol.WriteToken(conn, msg.String()))
}

func TestAcceptedMessagesStrictlyAlternate(t *testing.T) {
	srv, addr := startServer(t)
	one := dial(t, addr)
	two := dial(t, addr)

	for i := int64(0); i < 3; i++ {
		awaitGo(t, one)
		send(t, one, protocol.Message{Name: "Client1", Value: 1 + 2*i})
		awaitGo(t, two)
		send(t, two, protocol.Message{Name: "Client2", Value: 2 + 2*i})
	}

	require.Eventually(t, func() bool {
		return len(srv.Transcript().Entries()) == 6
	}, time.Second, time.Millisecond)
	entries := srv.Transcript().Entries()
	require.Equal(t, []uint8{1, 2, 1, 2, 1, 2}, session.Identities(entries))
	require.Equal(t, "Client1:1 Client2:2 Client1:3 Client2:4 Client1:5 Client2:6", session.String(entries))
}

func TestSecondParticipantOnlyWaitsUntilFirstSends(t *testing.T) {
	_, addr := startServer(t)
	one := dial(t, addr)
	two := dial(t, addr)

	// The turn starts at identity 1, so the second connection must not
	// see a GO before the first accepted message.
	require.NoError(t, two.SetReadDeadline(time.Now().Add(time.Second)))
	token, err := protocol.ReadToken(two)
	require.NoError(t, err)
	require.NotContains(t, token, protocol.SignalGo)

	awaitGo(t, one)
	send(t, one, protocol.Message{Name: "Client1", Value: 1})
	awaitGo(t, two)
}

func TestMalformedPayloadTerminatesOnlyThatSession(t *testing.T) {
	srv, addr := startServer(t)
	one := dial(t, addr)
	two := dial(t, addr)

	awaitGo(t, one)
	send(t, one, protocol.Message{Name: "Client1", Value: 1})
	awaitGo(t, two)
	require.NoError(t, protocol.WriteToken(two, "no delimiter"))

	// The offending session is closed and its message is never accepted.
	require.NoError(t, two.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, err := protocol.ReadToken(two); err != nil {
			break
		}
	}
	require.Len(t, srv.Transcript().Entries(), 1)

	// The turn did not move, so the peer keeps receiving WAIT.
	require.NoError(t, one.SetReadDeadline(time.Now().Add(time.Second)))
	token, err := protocol.ReadToken(one)
	require.NoError(t, err)
	require.NotContains(t, token, protocol.SignalGo)
}

func TestDisconnectDoesNotAffectPeerSession(t *testing.T) {
	srv, addr := startServer(t)
	one := dial(t, addr)
	two := dial(t, addr)

	awaitGo(t, one)
	send(t, one, protocol.Message{Name: "Client1", Value: 1})
	require.Eventually(t, func() bool {
		return len(srv.Transcript().Entries()) == 1
	}, time.Second, time.Millisecond)

	// Identity 2 holds the turn but disconnects instead of sending.
	require.NoError(t, two.Close())

	// The peer keeps polling and receiving WAIT; the server stays up.
	require.NoError(t, one.SetReadDeadline(time.Now().Add(time.Second)))
	for i := 0; i < 3; i++ {
		token, err := protocol.ReadToken(one)
		require.NoError(t, err)
		require.NotContains(t, token, protocol.SignalGo)
	}
	require.Len(t, srv.Transcript().Entries(), 1)
}

func TestLoneParticipantReceivesNoSignal(t *testing.T) {
	_, addr := startServer(t)
	one := dial(t, addr)

	// With a single connection the server is still blocked in Accept, so
	// no handler runs and no signal is ever sent.
	require.NoError(t, one.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, err := protocol.ReadToken(one)
	require.Error(t, err)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout())
}

func TestBindFailureIsFatal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := uint16(ln.Addr().(*net.TCPAddr).Port)

	srv, err := NewServer(WithHost("127.0.0.1"), WithPort(port))
	require.NoError(t, err)
	require.Error(t, srv.ListenAndServe(context.Background()))
}
