// Package protocol defines the wire format spoken between the arbiter
// server and its participants.
//
// Everything on the wire is a bare ASCII token with no terminator; each
// logical message is carried by a single size-bounded read. The server
// sends the literal signals GO and WAIT, and a participant replies to GO
// with a payload of the form <name>:<value>, where value is a decimal
// integer. The value sits after the last colon, so names are free to
// contain colons themselves.
package protocol

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Signals sent by the server to a participant.
const (
	SignalGo   = "GO"
	SignalWait = "WAIT"
)

// MaxTokenSize bounds the size of a single read from the wire.
const MaxTokenSize = 1024

// ErrMalformedPayload indicates a payload that does not follow the
// <name>:<value> form.
var ErrMalformedPayload = errors.New("malformed payload")

// Message is a single participant payload.
type Message struct {
	Name  string
	Value int64
}

// String encodes the message in its wire form.
func (m Message) String() string {
	return m.Name + ":" + strconv.FormatInt(m.Value, 10)
}

// ParseMessage decodes a participant payload. The delimiter is the last
// colon in the token; the part after it must be a decimal integer.
func ParseMessage(token string) (Message, error) {
	i := strings.LastIndex(token, ":")
	if i < 0 {
		return Message{}, errors.Wrapf(ErrMalformedPayload, "no delimiter in %q", token)
	}
	value, err := strconv.ParseInt(token[i+1:], 10, 64)
	if err != nil {
		return Message{}, errors.Wrapf(ErrMalformedPayload, "bad counter value in %q", token)
	}
	return Message{
		Name:  token[:i],
		Value: value,
	}, nil
}

// LatestSignal collapses a token of coalesced signals to the most recent
// one. Signals are unterminated, so back-to-back WAITs (or WAITs followed
// by a GO) can arrive in a single read; only the last signal matters. A
// token that does not end in a known signal is returned unchanged.
func LatestSignal(token string) string {
	switch {
	case strings.HasSuffix(token, SignalWait):
		return SignalWait
	case strings.HasSuffix(token, SignalGo):
		return SignalGo
	default:
		return token
	}
}

// ReadToken performs one bounded read and returns the received bytes as a
// string. A closed peer surfaces as io.EOF.
func ReadToken(r io.Reader) (string, error) {
	buf := make([]byte, MaxTokenSize)
	n, err := r.Read(buf)
	if n == 0 && err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// WriteToken writes a single token to the wire.
func WriteToken(w io.Writer, token string) error {
	_, err := w.Write([]byte(token))
	return errors.Wrapf(err, "write token %q failed", token)
}
