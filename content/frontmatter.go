// Package content loads blog post records from a file system and prepares
// them for display. A post is a Markdown file with optional front matter;
// the package parses the front matter, sorts posts by publish date, and
// projects them into the reduced form used by listing pages and feeds.
package content

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FrontMatter holds data scraped from the top of a Markdown page.
type FrontMatter struct {
	Title        string    `toml:"title" yaml:"title"`               // Title of this page
	Date         time.Time `toml:"date" yaml:"date"`                 // Date the article appears
	LastMod      time.Time `toml:"lastmod" yaml:"lastmod"`           // Date the article was last modified
	Summary      string    `toml:"summary" yaml:"summary"`           // Short description for listings
	Tags         []string  `toml:"tags" yaml:"tags"`                 // Tags to assign to this article
	Draft        bool      `toml:"draft" yaml:"draft"`               // Drafts are hidden from view
	Template     string    `toml:"template" yaml:"template"`         // The name of the template to use
	Expires      Duration  `toml:"expires" yaml:"expires"`           // Use for pages that need an Expires header
	Redirect     string    `toml:"redirect" yaml:"redirect"`         // Issue a redirect to another location
	OriginalFile string    `toml:"originalfile" yaml:"originalfile"` // The original filename (markdown or image)
}

// Visible reports whether a page with this front matter should be shown
// at the given time. Drafts and pages dated in the future are hidden.
func (fm FrontMatter) Visible(now time.Time) bool {
	return !fm.Draft && !now.Before(fm.Date)
}

// Format identifies the front matter encoding found in a file.
type Format int

const (
	FormatNone Format = iota // no front matter present
	FormatTOML               // delimited by +++
	FormatYAML               // delimited by ---
)

var (
	tomlRegexp = regexp.MustCompile(`(?m)^\s*\+\+\+\s*$`)
	yamlRegexp = regexp.MustCompile(`(?m)^\s*---\s*$`)
)

// ExtractFrontMatter splits the front matter and Markdown content.
// TOML front matter is delimited by "+++" and YAML front matter by "---";
// either way the delimiter must be the first thing in the file.
func ExtractFrontMatter(x []byte) (fm, r []byte, format Format) {
	for _, try := range []struct {
		re     *regexp.Regexp
		format Format
	}{
		{tomlRegexp, FormatTOML},
		{yamlRegexp, FormatYAML},
	} {
		subs := try.re.Split(string(x), 3)
		if len(subs) != 3 {
			continue
		}
		if s := strings.TrimSpace(subs[0]); len(s) > 0 {
			continue
		}
		return []byte(strings.TrimSpace(subs[1])), []byte(strings.TrimSpace(subs[2])), try.format
	}
	return nil, x, FormatNone
}

// UnmarshalFrontMatter parses front matter bytes in the given format.
func UnmarshalFrontMatter(b []byte, format Format, fm *FrontMatter) error {
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(b, fm)
	case FormatYAML:
		err = yaml.Unmarshal(b, fm)
	case FormatNone:
		// nothing to do
	}
	if err != nil {
		return fmt.Errorf("frontmatter: %w", err)
	}
	return nil
}
