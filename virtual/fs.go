/*
Package virtual implements a "virtual" view over a fs.FS that presents a
folder of Markdown blog content as a ready-to-serve web site. It includes a
template system and helpers for producing listing pages, a site map, and an
RSS feed from an easy-to-maintain content format.

A special file "site.cfg" at the root exposes settings you can read via the
Config function. This file is hidden from view, as is the "template" folder
and any file or folder starting with a period.

# Markdown Handling

When an endpoint like "/posts/bar.html" is requested and it does not exist,
the file system looks for a Markdown file named "/posts/bar.md". If present,
a virtual file "/posts/bar.html" is returned that renders the Markdown
through an HTML template. Markdown source files are never exposed directly;
only their rendered form is visible. By default the "default" template is
used, unless the front matter of the file names a different one.

Draft posts and posts dated in the future do not exist as far as this file
system is concerned: they are absent from directory listings, the site map,
and the feed, and opening them returns fs.ErrNotExist.

# Listing Pages

Index pages (an "index.html" rendered from "index.md") additionally receive
the listing of their folder: every visible post, sorted most recent first,
projected down to its listing fields. Templates access it as .Posts. The
same data is available anywhere via the "listing" template function.

# Front Matter

Markdown files may start with front matter in TOML format delimited by
"+++", or in YAML format delimited by "---". For example:

	+++
	title = "My glorious page"
	date = 2024-03-01T00:00:00Z
	summary = "In which things are explained."
	tags = ["go", "blogging"]
	+++
	# This is my Heading

Recognized fields are title, date, lastmod, summary, tags, draft, template,
expires, and redirect. A redirect renders a small page that issues an HTML
meta-tag redirect.

# Images

If a Markdown file is not found, and the request is inside one of the image
folders below, the system looks for an image file (PNG, JPG, GIF, or WebP)
and renders an HTML page for it using the "image" template. The image file
itself remains visible because the page needs to serve it.

	"photos", "images", "pictures", "cartoons", "toons", "sketches", "artwork", "drawings"

# Site Map and Feed

If a file named "sitemap.txt" is present at the root, it is executed as a
text template receiving the list of visible site paths. A virtual
"feed.xml" presents the posts folder as an RSS 2.0 feed using the site
title, base URL, and description from site.cfg.

# Templates

Templates use the html/template package and live in the "template" folder
with the extension ".html". Built-in templates named "default", "list", and
"image" are used when that folder is absent. Templates receive the front
matter, page information, rendered HTML, the site configuration, and (for
index pages) the post listing. The following helper functions are
available:

	dir(path string) []virtual.File
		Contents of the given folder, excluding special files
	listing(path string) []content.CoreContent
		Visible posts in the folder, newest first, bodies stripped
	sortbyname([]virtual.File) []virtual.File
		Sort by name (reverse)
	sortbytime([]virtual.File) []virtual.File
		Sort by time (reverse)
	match(string, ...string) bool
		Match string against file patterns
	filter([]virtual.File, ...string) []virtual.File
		Filter list against file patterns
	join(parts ...string) string
		The same as path.Join
	ext(path string) string
		The same as path.Ext
	prev([]virtual.File, string) *virtual.File
		Find the previous file based on Filename
	next([]virtual.File, string) *virtual.File
		Find the next file based on Filename
	reverse([]virtual.File) []virtual.File
		Reverse the list
	trimsuffix(string, string) string
		The same as strings.TrimSuffix
	trimprefix(string, string) string
		The same as strings.TrimPrefix
	trimspace(string) string
		The same as strings.TrimSpace
	markdown(string) template.HTML
		Render a Markdown file into HTML
	frontmatter(string) *content.FrontMatter
		Read front matter from a file
	now() time.Time
		Current time

# Index Files

Most web servers will want an "index.html" to handle folder roots (like
"/posts"). This works automatically with things like http.FileServer if you
simply create an "index.md" in the folder.

# Errors

To assist web implementations that want to serve a custom page for 404 or
500 errors, you can create 404.md and 500.md files in the root of the file
system. The rendered 404.html and 500.html are excluded from the site map
and the "dir" helper, so they do not pollute listings.
*/
package virtual

import (
	"errors"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// FS provides a virtual view of the file system suitable for serving
// Markdown blog content in a web format.
type FS struct {
	fs       fs.FS
	tpl      *template.Template
	tplMutex sync.RWMutex
}

// New returns a new FS that presents a virtual view of innerFS.
func New(innerFS fs.FS) (*FS, error) {
	var vfs = FS{
		fs: innerFS,
	}
	_, err := vfs.loadTemplates()
	if err != nil {
		return nil, err
	}
	return &vfs, nil
}

// Open opens the named file.
//
// When Open returns an error, it should be of type *fs.PathError
// with the Op field set to "open", the Path field set to name,
// and the Err field describing the problem.
//
// Open should reject attempts to open names that do not satisfy
// fs.ValidPath(name), returning a *PathError with Err set to
// ErrInvalid or ErrNotExist.
func (vfs *FS) Open(name string) (fs.File, error) {
	// Make sure the path is valid per fs rules
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	// Don't show hidden or special files
	if isHiddenFile(name) || (name != "." && containsSpecialFile(name)) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	// Markdown sources are only visible through their rendered form
	if path.Ext(name) == ".md" {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	// open the file with the underlying file system
	f, err := vfs.fs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// the feed is generated when no real feed.xml is present
			if name == "feed.xml" {
				return vfs.newFeedFile(name)
			}
			// for files that don't exist, check for underlying matching files
			if path.Ext(name) == ".html" {
				base := strings.TrimSuffix(name, ".html")
				if f2, err2 := vfs.fs.Open(base + ".md"); err2 == nil {
					defer f2.Close()
					return vfs.newMarkdownFile(f2, name)
				}
				// if it's in an image folder, check image files too
				if hasImageFolderPrefix(name) {
					for _, ext := range imageExtensions {
						if f2, err2 := vfs.fs.Open(base + ext); err2 == nil {
							defer f2.Close()
							return vfs.newImageFile(f2, name, path.Base(base)+ext)
						}
					}
				}
			}
		}
		// no matching underlying file; return error from opening the underlying file
		return nil, err
	}
	// check for directory
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	// Directories need to be virtual so that we don't
	// accidentally pick up the wrong ReadDir implementation.
	if fi.IsDir() {
		// don't close f because it is used for Stat and Close
		return &virtualDir{File: f, vfs: vfs, path: name}, nil
	}
	// The sitemap file, if present, needs to be handled as a virtual
	// file to process the template.
	if name == "sitemap.txt" {
		defer f.Close()
		return vfs.newSitemapFile(f, name)
	}
	return f, nil
}
