// Package store is the durable segment mirror. It is a best-effort cache:
// the in-memory chunk list stays authoritative, and a failing store never
// fails a recording.
package store

import (
	"context"

	"github.com/slidecast/slidecast/pkg/config"
	"github.com/slidecast/slidecast/pkg/logger"
)

type ChunkStore interface {
	SaveChunk(ctx context.Context, sessionID string, index int, data []byte) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// New picks a store by the configured provider name. Any setup failure
// degrades to the no-op store, keeping recordings possible.
func New(conf config.Storage, log *logger.Logger) ChunkStore {
	switch conf.Provider {
	case "s3":
		st, err := NewS3(conf, log)
		if err != nil {
			log.Error().Err(err).Msg("s3 chunk store is unavailable, persistence disabled")
			return Noop{}
		}
		return st
	case "file":
		st, err := NewFileStore(conf.Dir)
		if err != nil {
			log.Error().Err(err).Msg("file chunk store is unavailable, persistence disabled")
			return Noop{}
		}
		return st
	default:
		return Noop{}
	}
}

// Noop is the disabled-persistence store.
type Noop struct{}

func (Noop) SaveChunk(context.Context, string, int, []byte) error { return nil }
func (Noop) DeleteSession(context.Context, string) error          { return nil }
