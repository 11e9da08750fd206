package server

import (
	"context"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"lockstep/internal/pkg/arbiter"
	"lockstep/internal/pkg/log"
	"lockstep/internal/pkg/protocol"
	"lockstep/internal/pkg/session"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// ParticipantCount is the fixed number of connections the server accepts.
const ParticipantCount = 2

// DefaultPollInterval is the pause between turn checks for a waiting session.
const DefaultPollInterval = 100 * time.Millisecond

// Server arbitrates the send turn between two participant connections.
type Server struct {
	host         string
	port         uint16
	pollInterval time.Duration

	arb        *arbiter.Arbiter
	transcript session.Transcript

	mu       sync.Mutex
	listener net.Listener
	sessions []*session.Session
}

// Cfg configures a Server.
type Cfg func(*Server) error

// WithHost sets the host to bind. Empty means all interfaces.
func WithHost(host string) Cfg {
	return func(s *Server) error {
		s.host = host
		return nil
	}
}

// WithPort sets the port to bind. Zero selects an ephemeral port.
func WithPort(port uint16) Cfg {
	return func(s *Server) error {
		s.port = port
		return nil
	}
}

// WithPollInterval sets the pause between turn checks for a waiting session.
func WithPollInterval(d time.Duration) Cfg {
	return func(s *Server) error {
		s.pollInterval = d
		return nil
	}
}

// WithTranscript sets the transcript that records accepted messages.
func WithTranscript(transcript session.Transcript) Cfg {
	return func(s *Server) error {
		s.transcript = transcript
		return nil
	}
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfgs ...Cfg) (*Server, error) {
	server := &Server{
		pollInterval: DefaultPollInterval,
		arb:          arbiter.New(),
		transcript:   session.NewMemoryTranscript(),
	}
	for _, cfg := range cfgs {
		if err := cfg(server); err != nil {
			return nil, errors.Wrap(err, "apply Server cfg failed")
		}
	}
	return server, nil
}

// Transcript returns the transcript recording accepted messages.
func (s *Server) Transcript() session.Transcript {
	return s.transcript
}

// Addr returns the bound listener address. Only valid during ListenAndServe.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ListenAndServe binds the listening socket, accepts exactly two
// connections, assigns identity 1 to the first and 2 to the second, and
// runs one handler per session until both disconnect or ctx is cancelled.
// A bind failure is fatal and returned immediately.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(int(s.port))))
	if err != nil {
		return errors.Wrapf(err, "listen on port %d failed", s.port)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	logger.WithField("addr", ln.Addr().String()).Info("server listening")

	// Unblock Accept and the session reads when ctx is cancelled.
	watchdog := make(chan struct{})
	defer close(watchdog)
	go func() {
		select {
		case <-ctx.Done():
			s.close()
		case <-watchdog:
		}
	}()
	defer s.close()

	// No handler starts until both participants are present, so a lone
	// participant never receives a signal.
	for identity := arbiter.IdentityOne; identity <= ParticipantCount; identity++ {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept connection failed")
		}
		sess := session.New(identity, conn)
		s.mu.Lock()
		s.sessions = append(s.sessions, sess)
		s.mu.Unlock()
		logger.WithFields(log.SessionToFields(sess.ID, sess.Identity, sess.RemoteAddr())).Info("participant connected")
	}

	var wg sync.WaitGroup
	s.mu.Lock()
	sessions := s.sessions
	s.mu.Unlock()
	for _, sess := range sessions {
		sess := sess
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, sess)
		}()
	}

	// Both handlers spawned; the accept loop's work is done.
	wg.Wait()
	return nil
}

// handle runs one session until disconnect, protocol error or ctx
// cancellation. Failures terminate this session only.
func (s *Server) handle(ctx context.Context, sess *session.Session) {
	fields := log.SessionToFields(sess.ID, sess.Identity, sess.RemoteAddr())
	defer func() {
		if err := sess.Conn.Close(); err != nil && ctx.Err() == nil {
			logger.WithFields(fields).WithError(err).Debug("close connection failed")
		}
	}()

	for ctx.Err() == nil {
		// TryAcquire can miss while the peer's handler briefly holds the
		// turn lock, sending one spurious WAIT to the actual turn holder;
		// the next poll cycle picks the turn up.
		if s.arb.TryAcquire(sess.Identity) {
			if done := s.exchange(sess, fields); done {
				return
			}
		} else {
			if err := protocol.WriteToken(sess.Conn, protocol.SignalWait); err != nil {
				logger.WithFields(fields).WithError(err).Warn("participant disconnected")
				return
			}
		}
		// The lock is never held while sleeping, so the peer's handler
		// can take its own turn in the meantime.
		time.Sleep(s.pollInterval)
	}
}

// exchange performs one full turn while holding the arbiter lock: signal
// GO, read the reply, record it and pass the turn on. It reports whether
// the session is finished. The turn only moves on an accepted message.
func (s *Server) exchange(sess *session.Session, fields logrus.Fields) bool {
	if err := protocol.WriteToken(sess.Conn, protocol.SignalGo); err != nil {
		s.arb.Release()
		logger.WithFields(fields).WithError(err).Warn("participant disconnected")
		return true
	}
	token, err := protocol.ReadToken(sess.Conn)
	if errors.Is(err, io.EOF) {
		s.arb.Release()
		logger.WithFields(fields).Info("participant closed the connection")
		return true
	}
	if err != nil {
		s.arb.Release()
		logger.WithFields(fields).WithError(err).Warn("participant disconnected")
		return true
	}
	msg, err := protocol.ParseMessage(token)
	if err != nil {
		s.arb.Release()
		logger.WithFields(fields).WithError(err).Warn("terminating session on malformed payload")
		return true
	}
	entry := s.transcript.Record(sess.Identity, msg)
	logger.WithFields(fields).WithFields(log.MessageToFields(msg)).WithField("seq", entry.Seq).Info("message accepted")
	s.arb.Switch()
	return false
}

// close shuts the listener and every session connection.
func (s *Server) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for _, sess := range s.sessions {
		_ = sess.Conn.Close()
	}
}
