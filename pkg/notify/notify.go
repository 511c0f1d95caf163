// Package notify delivers fire-and-forget user-facing notifications.
// The engine never awaits or branches on their outcome.
package notify

import "github.com/slidecast/slidecast/pkg/logger"

type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

// Log renders notifications into the structured log.
type Log struct {
	L *logger.Logger
}

func (n Log) Success(msg string) { n.L.Info().Str("notify", "success").Msg(msg) }
func (n Log) Warning(msg string) { n.L.Warn().Str("notify", "warning").Msg(msg) }
func (n Log) Error(msg string)   { n.L.Error().Str("notify", "error").Msg(msg) }

// Multi fans a notification out to several sinks.
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Warning(msg string) {
	for _, n := range m {
		n.Warning(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
