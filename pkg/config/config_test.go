package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	conf, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if conf.Recording.Video.Width != 1920 || conf.Recording.Video.Height != 1080 {
		t.Errorf("default resolution %vx%v", conf.Recording.Video.Width, conf.Recording.Video.Height)
	}
	if conf.Recording.Video.Fps != 30 {
		t.Errorf("default fps %v", conf.Recording.Video.Fps)
	}
	if conf.Recording.ChunkIntervalMs != 1000 {
		t.Errorf("default chunk interval %v", conf.Recording.ChunkIntervalMs)
	}
	if conf.Recording.Dir != "recordings" {
		t.Errorf("default dir %v", conf.Recording.Dir)
	}
	if conf.Storage.Provider != "file" {
		t.Errorf("default storage provider %v", conf.Storage.Provider)
	}
}

func TestNewConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("recording:\n  title: from-file\n  video:\n    fps: 24\nstorage:\n  provider: noop\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0644); err != nil {
		t.Fatal(err)
	}

	conf, err := NewConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Recording.Title != "from-file" {
		t.Errorf("title %q", conf.Recording.Title)
	}
	if conf.Recording.Video.Fps != 24 {
		t.Errorf("fps %v", conf.Recording.Video.Fps)
	}
	if conf.Storage.Provider != "noop" {
		t.Errorf("provider %v", conf.Storage.Provider)
	}
	// unset values still get defaults
	if conf.Recording.Video.Width != 1920 {
		t.Errorf("width %v", conf.Recording.Video.Width)
	}
}
