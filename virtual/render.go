package virtual

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"path"
	"strings"
	"time"

	"github.com/ancientlore/scribe/content"
)

// redirectTpl renders the page used for front matter redirects.
var redirectTpl = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="en">
	<head>
		<meta charset="utf-8">
		<meta http-equiv="refresh" content="0; url={{.}}">
		<title>Redirecting</title>
	</head>
	<body>
		<a href="{{.}}">Moved here</a>
	</body>
</html>
`))

// newMarkdownFile reads the underlying markdown file, extracts the front
// matter, renders the markdown, and executes the matching template,
// returning the resulting virtual file. Index pages also receive the
// listing of their folder, sorted most recent first with bodies stripped.
func (vfs *FS) newMarkdownFile(f fs.File, pathname string) (fs.File, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("newMarkdownFile: %w", err)
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("newMarkdownFile: %w", err)
	}

	fm, r, format := content.ExtractFrontMatter(b)
	var front content.FrontMatter
	if err := content.UnmarshalFrontMatter(fm, format, &front); err != nil {
		return nil, &fs.PathError{Op: "open", Path: pathname, Err: err}
	}

	// Drafts and future-dated pages do not exist yet.
	if !front.Visible(time.Now()) {
		return nil, &fs.PathError{Op: "open", Path: pathname, Err: fs.ErrNotExist}
	}

	p, bn := path.Split(pathname)
	if front.Title == "" {
		front.Title = strings.TrimSuffix(bn, ".html")
	}

	// A redirect needs no template; render the meta-refresh page.
	if front.Redirect != "" {
		var wtr bytes.Buffer
		if err := redirectTpl.Execute(&wtr, front.Redirect); err != nil {
			return nil, fmt.Errorf("newMarkdownFile: %w", err)
		}
		return newRenderFile(bn, wtr.Bytes(), fi.ModTime()), nil
	}

	// prepare template data
	var data = data{
		FrontMatter: front,
		Page: pageInfo{
			Path:     p,
			Filename: bn,
		},
		Content: renderBody(r),
	}
	if cfg, err := vfs.Config(); err == nil && cfg != nil {
		data.Site = *cfg
	}

	// Index pages compose the listing of their folder: the full set of
	// visible posts, newest first, projected to listing fields.
	if bn == "index.html" {
		folder := strings.TrimSuffix(p, "/")
		if folder == "" {
			folder = "."
		}
		data.Posts, err = content.Listing(vfs.fs, folder)
		if err != nil {
			log.Printf("newMarkdownFile: %s", err)
		}
	}

	// Render the HTML template
	templateName := "default"
	if data.FrontMatter.Template != "" {
		templateName = data.FrontMatter.Template
	}
	tpl := vfs.getTemplates()
	var wtr bytes.Buffer
	err = tpl.ExecuteTemplate(&wtr, templateName, data)
	if err != nil {
		log.Printf("Error executing template: %s", err)
	}

	return newRenderFile(bn, wtr.Bytes(), fi.ModTime()), nil
}

// newImageFile builds front matter for the underlying image file and
// executes the "image" template, returning the resulting virtual file.
func (vfs *FS) newImageFile(f fs.File, pathname, original string) (fs.File, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	// prepare template data
	p, bn := path.Split(pathname)
	var data = data{
		FrontMatter: content.FrontMatter{
			Title:        strings.TrimSuffix(bn, ".html"),
			Date:         fi.ModTime(),
			OriginalFile: original,
		},
		Page: pageInfo{
			Path:     p,
			Filename: original,
		},
	}
	if cfg, err := vfs.Config(); err == nil && cfg != nil {
		data.Site = *cfg
	}

	// Render the HTML template
	tpl := vfs.getTemplates()
	var wtr bytes.Buffer
	err = tpl.ExecuteTemplate(&wtr, "image", data)
	if err != nil {
		log.Printf("Error executing template: %s", err)
	}

	return newRenderFile(bn, wtr.Bytes(), fi.ModTime()), nil
}
