package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"lockstep/internal/pkg/log"
	"lockstep/internal/pkg/protocol"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Step is the fixed amount the counter advances after each transmission.
const Step = 2

// Default pacing. The send pause only exists to keep the output readable.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultSendPause    = time.Second
)

// Client implements the participant behaviour of the rendezvous.
type Client struct {
	serverAddr   string
	name         string
	value        int64
	pollInterval time.Duration
	sendPause    time.Duration

	conn net.Conn
}

// Cfg configures a Client.
type Cfg func(*Client) error

// WithServerPort sets the server port to connect to on localhost.
func WithServerPort(p uint16) Cfg {
	return func(c *Client) error {
		c.serverAddr = fmt.Sprintf("localhost:%d", p)
		return nil
	}
}

// WithServerAddr sets the full server address to connect to.
func WithServerAddr(addr string) Cfg {
	return func(c *Client) error {
		c.serverAddr = addr
		return nil
	}
}

// WithName sets the participant name sent with every message.
func WithName(name string) Cfg {
	return func(c *Client) error {
		c.name = name
		return nil
	}
}

// WithStartValue sets the first counter value to send.
func WithStartValue(v int64) Cfg {
	return func(c *Client) error {
		c.value = v
		return nil
	}
}

// WithPollInterval sets the pause before re-checking after a WAIT signal.
func WithPollInterval(d time.Duration) Cfg {
	return func(c *Client) error {
		c.pollInterval = d
		return nil
	}
}

// WithSendPause sets the pause after each transmitted message.
func WithSendPause(d time.Duration) Cfg {
	return func(c *Client) error {
		c.sendPause = d
		return nil
	}
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfgs ...Cfg) (*Client, error) {
	client := &Client{
		pollInterval: DefaultPollInterval,
		sendPause:    DefaultSendPause,
	}
	for _, cfg := range cfgs {
		if err := cfg(client); err != nil {
			return nil, errors.Wrap(err, "apply Client cfg failed")
		}
	}
	if client.name == "" {
		return nil, errors.New("participant name is required")
	}
	return client, nil
}

// Connect establishes the connection to the server.
func (c *Client) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.serverAddr)
	if err != nil {
		return errors.Wrapf(err, "connect to %s failed", c.serverAddr)
	}
	c.conn = conn
	logger.WithField("name", c.name).WithField("addr", c.serverAddr).Info("connected")
	return nil
}

// Run reacts to server signals until an I/O failure or ctx cancellation.
// Any I/O failure is fatal; there is no reconnect.
func (c *Client) Run(ctx context.Context) error {
	if c.conn == nil {
		return errors.New("client is not connected")
	}
	// Unblock the signal read when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
		case <-done:
		}
	}()
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		token, err := protocol.ReadToken(c.conn)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "read signal failed")
		}
		switch protocol.LatestSignal(token) {
		case protocol.SignalGo:
			msg := protocol.Message{
				Name:  c.name,
				Value: c.value,
			}
			if err := protocol.WriteToken(c.conn, msg.String()); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return errors.Wrap(err, "send message failed")
			}
			logger.WithFields(log.MessageToFields(msg)).Info("message sent")
			c.value += Step
			time.Sleep(c.sendPause)
		case protocol.SignalWait:
			time.Sleep(c.pollInterval)
		default:
			return errors.Wrapf(ErrUnknownSignal, "received %q", token)
		}
	}
}
