package virtual

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ancientlore/scribe/content"
	"github.com/pelletier/go-toml/v2"
)

// Config contains configuration data from the site.cfg file.
type Config struct {
	Title         string            `toml:"title"`         // Site title, used by templates and the feed
	BaseURL       string            `toml:"baseurl"`       // Absolute base URL, used to build feed links
	Description   string            `toml:"description"`   // Site description for the feed
	PostsDir      string            `toml:"postsdir"`      // Folder holding posts; defaults to "posts"
	Expires       content.Duration  `toml:"expires"`       // Expires header for rendered pages
	StaticExpires content.Duration  `toml:"staticexpires"` // Expires header for static files
	Headers       map[string]string `toml:"headers"`       // Extra headers to send
}

// postsDir returns the posts folder, tolerating a nil config.
func (c *Config) postsDir() string {
	if c == nil || c.PostsDir == "" {
		return "posts"
	}
	return c.PostsDir
}

// Config returns configuration from the site.cfg file.
// It is not an error if the file does not exist.
func (vfs *FS) Config() (*Config, error) {
	var cfg Config
	cfgBytes, err := fs.ReadFile(vfs.fs, "site.cfg")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}
	err = toml.Unmarshal(cfgBytes, &cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}
	return &cfg, nil
}
