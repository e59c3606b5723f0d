package virtual

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"path"
	"strings"
	"time"

	"github.com/ancientlore/scribe/content"
	"github.com/russross/blackfriday/v2"
)

// pathToMarkdown takes a URL path and converts it into the path to the associated Markdown file.
func pathToMarkdown(filename string) string {
	// check for folder - if so, add index.md
	if strings.HasSuffix(filename, "/") {
		filename += "index.md"
	}
	filename = path.Clean(filename)
	// removing leading / so we find it on the file system
	filename = strings.TrimPrefix(filename, "/")
	// make sure the extension is present
	if path.Ext(filename) == "" {
		filename += ".md"
	}
	return filename
}

// renderBody converts Markdown to HTML.
func renderBody(b []byte) template.HTML {
	return template.HTML(blackfriday.Run(b, blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.Footnotes)))
}

// renderMarkdown renders the markdown for the given file and returns the front matter.
func (vfs *FS) renderMarkdown(filename string) (*content.FrontMatter, template.HTML, time.Time, error) {
	var (
		fmData  content.FrontMatter
		modTime time.Time
	)
	filename = pathToMarkdown(filename)
	s, err := fs.Stat(vfs.fs, filename)
	if err != nil {
		return nil, "", modTime, fmt.Errorf("renderMarkdown: %w", err)
	}
	b, err := fs.ReadFile(vfs.fs, filename)
	if err != nil {
		return nil, "", modTime, fmt.Errorf("renderMarkdown: %w", err)
	}
	fm, r, format := content.ExtractFrontMatter(b)
	md := renderBody(r)
	if err := content.UnmarshalFrontMatter(fm, format, &fmData); err != nil {
		return nil, "", modTime, fmt.Errorf("renderMarkdown: %w", err)
	}
	return &fmData, md, s.ModTime(), nil
}

// md converts the given markdown file to HTML and is used in templates.
func (vfs *FS) md(filename string) template.HTML {
	_, md, _, err := vfs.renderMarkdown(filename)
	if err != nil {
		log.Printf("md: %s", err)
		return ""
	}
	return md
}

// fm returns front matter for the given file and is used in templates.
func (vfs *FS) fm(filename string) *content.FrontMatter {
	fm, _, _, err := vfs.renderMarkdown(filename)
	if err != nil {
		log.Printf("fm: %s", err)
		return nil
	}
	return fm
}
