package config

import (
	"errors"
	"os"

	"github.com/kkyr/fig"
	flag "github.com/spf13/pflag"
)

const EnvPrefix = "SLIDECAST"

// LoadConfig loads a configuration file into the given struct.
// The path param specifies a custom path to the configuration file.
// Reads and puts environment variables with the prefix SLIDECAST_.
// Params from the config should be in uppercase separated with _.
func LoadConfig(config any, path string) error {
	dirs := []string{path}
	if path == "" {
		dirs = append(dirs, ".", "configs")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, home+"/.slidecast")
		}
	}
	return fig.Load(config, fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
}

// NewConfig loads the app config. A missing config file is not an error,
// the defaults apply.
func NewConfig(path string) (conf Config, err error) {
	err = LoadConfig(&conf, path)
	if errors.Is(err, fig.ErrFileNotFound) {
		err = nil
	}
	if err != nil {
		return
	}
	conf.fixValues()
	return
}

func (c *Config) fixValues() {
	if c.Recording.Video.Width <= 0 {
		c.Recording.Video.Width = 1920
	}
	if c.Recording.Video.Height <= 0 {
		c.Recording.Video.Height = 1080
	}
	if c.Recording.Video.Fps <= 0 {
		c.Recording.Video.Fps = 30
	}
	if c.Recording.ChunkIntervalMs <= 0 {
		c.Recording.ChunkIntervalMs = 1000
	}
	if c.Recording.Dir == "" {
		c.Recording.Dir = "recordings"
	}
	if c.Storage.Provider == "" {
		c.Storage.Provider = "file"
	}
}

// ParseFlags binds command line flags on top of the loaded values.
func (c *Config) ParseFlags() {
	flag.BoolVarP(&c.Debug, "debug", "d", c.Debug, "debug mode")
	flag.StringVar(&c.Recording.Dir, "dir", c.Recording.Dir, "recordings folder")
	flag.StringVar(&c.Recording.Title, "title", c.Recording.Title, "presentation title")
	flag.StringVar(&c.Server.Address, "address", c.Server.Address, "server address (host:port)")
	flag.Parse()
}
