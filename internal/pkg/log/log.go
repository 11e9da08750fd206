// Package log add logging utilities.
package log

import (
	"strings"
	"time"

	"lockstep/internal/pkg/protocol"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SetLogger sets the default logger's level.
func SetLogger(level string) {
	logrus.SetLevel(logrus.ErrorLevel)
	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = time.RFC3339
	logrus.SetFormatter(customFormatter)
	customFormatter.FullTimestamp = true
	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.ErrorLevel)
	}
}

// SessionToFields returns log fields identifying a session.
func SessionToFields(id uuid.UUID, identity uint8, remoteAddr string) logrus.Fields {
	return logrus.Fields{
		"uuid":     id.String(),
		"identity": identity,
		"addr":     remoteAddr,
	}
}

// MessageToFields returns log fields describing an accepted message.
func MessageToFields(msg protocol.Message) logrus.Fields {
	return logrus.Fields{
		"name":  msg.Name,
		"value": msg.Value,
	}
}
