package virtual

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"text/template"
	"time"
)

// newSitemapFile parses the underlying text file as a template and
// executes it with the list of visible site paths, returning the
// resulting virtual file.
func (vfs *FS) newSitemapFile(f fs.File, pathname string) (fs.File, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("newSitemapFile: %w", err)
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("newSitemapFile: %w", err)
	}
	tpl, err := template.New("sitemap").Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("newSitemapFile: %w", err)
	}
	paths, modTime, err := vfs.sitePaths()
	if err != nil {
		return nil, fmt.Errorf("newSitemapFile: %w", err)
	}
	if fi.ModTime().After(modTime) {
		modTime = fi.ModTime()
	}
	var wtr bytes.Buffer
	err = tpl.Execute(&wtr, paths)
	if err != nil {
		return nil, fmt.Errorf("newSitemapFile: %w", err)
	}
	return newRenderFile(path.Base(pathname), wtr.Bytes(), modTime), nil
}

// sitePaths walks the virtual view and returns the URL paths of visible
// files, along with the most recent modification time seen. Rendered
// pages are listed without their .html extension, and index pages as
// their folder. Error pages, the site map itself, and the feed are left
// out.
func (vfs *FS) sitePaths() ([]string, time.Time, error) {
	var (
		result  []string
		maxTime time.Time
	)
	err := fs.WalkDir(vfs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch p {
		case "sitemap.txt", "feed.xml", "404.html", "500.html":
			return nil
		}
		if fi, err := d.Info(); err == nil && fi.ModTime().After(maxTime) {
			maxTime = fi.ModTime()
		}
		r := "/" + p
		if strings.HasSuffix(r, ".html") {
			r = strings.TrimSuffix(r, ".html")
			if path.Base(r) == "index" {
				r = strings.TrimSuffix(r, "index")
			}
		}
		result = append(result, r)
		return nil
	})
	if err != nil {
		return nil, maxTime, err
	}
	return result, maxTime, nil
}
