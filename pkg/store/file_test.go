package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/slidecast/slidecast/pkg/config"
	"github.com/slidecast/slidecast/pkg/logger"
)

func TestFileStoreSaveAndDelete(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := st.SaveChunk(ctx, "sess-1", 0, []byte("aaa")); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveChunk(ctx, "sess-1", 1, []byte("bbb")); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(st.dir, "sess-1", chunkName(1)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("bbb")) {
		t.Errorf("chunk content %q", got)
	}

	if err := st.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(st.dir, "sess-1")); !os.IsNotExist(err) {
		t.Error("session dir survived deletion")
	}
}

func TestChunkNameOrder(t *testing.T) {
	// lexical order must equal numeric order for directory listings
	if chunkName(9) >= chunkName(10) {
		t.Errorf("chunk names unsorted: %v >= %v", chunkName(9), chunkName(10))
	}
}

func TestNewDegradesToNoop(t *testing.T) {
	tests := []config.Storage{
		{Provider: "noop"},
		{Provider: ""},
		{Provider: "s3"}, // no endpoint configured
	}
	for _, conf := range tests {
		st := New(conf, logger.Default())
		if st == nil {
			t.Fatalf("no store for provider %q", conf.Provider)
		}
		if _, ok := st.(Noop); !ok {
			t.Errorf("provider %q did not degrade to noop", conf.Provider)
		}
	}
}

func TestNewFilePicker(t *testing.T) {
	st := New(config.Storage{Provider: "file", Dir: t.TempDir()}, logger.Default())
	if _, ok := st.(*FileStore); !ok {
		t.Errorf("expected a file store, got %T", st)
	}
}
