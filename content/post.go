package content

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
	"time"
)

// Post is a single blog post as loaded from the content source.
// It is immutable once loaded for a given render pass.
type Post struct {
	Slug string // unique name of the post within its folder
	FrontMatter
	Body []byte // raw Markdown, unused at listing time
}

// Core returns the reduced view of the post used for listings.
func (p Post) Core() CoreContent {
	return CoreContent{
		Slug:    p.Slug,
		Title:   p.Title,
		Date:    p.Date,
		LastMod: p.LastMod,
		Summary: p.Summary,
		Tags:    p.Tags,
	}
}

// CoreContent is the listing projection of a Post. The body is
// intentionally omitted.
type CoreContent struct {
	Slug    string
	Title   string
	Date    time.Time
	LastMod time.Time
	Summary string
	Tags    []string
}

// specialPages are Markdown files that live alongside posts but are not
// posts themselves.
var specialPages = []string{"index.md", "404.md", "500.md"}

func isSpecialPage(name string) bool {
	for _, s := range specialPages {
		if name == s {
			return true
		}
	}
	return false
}

// SortPosts orders posts by non-increasing publish date, most recent
// first. The sort is stable, so posts sharing a date keep their relative
// order, and sorting an already-sorted slice is a no-op.
func SortPosts(posts []Post) []Post {
	sort.SliceStable(posts, func(i, j int) bool { return posts[j].Date.Before(posts[i].Date) })
	return posts
}

// AllCoreContent projects each post to its listing view, preserving order.
func AllCoreContent(posts []Post) []CoreContent {
	cc := make([]CoreContent, len(posts))
	for i, p := range posts {
		cc[i] = p.Core()
	}
	return cc
}

// Load reads all visible posts under dir in fsys. Drafts and future-dated
// posts are excluded here, by the content source's own convention; callers
// add no filtering of their own. A post that fails to parse is skipped
// with a log message rather than failing the whole collection.
func Load(fsys fs.FS, dir string) ([]Post, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	now := time.Now()
	posts := make([]Post, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".md" || isSpecialPage(name) || strings.HasPrefix(name, ".") {
			continue
		}
		p, err := loadPost(fsys, dir, name)
		if err != nil {
			log.Printf("content: skipping %s: %s", path.Join(dir, name), err)
			continue
		}
		if p.Visible(now) {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// loadPost reads one Markdown file and fills in defaults for missing
// front matter: the title falls back to the slug and the dates to the
// file's modification time.
func loadPost(fsys fs.FS, dir, name string) (Post, error) {
	var p Post
	p.Slug = strings.TrimSuffix(name, ".md")
	b, err := fs.ReadFile(fsys, path.Join(dir, name))
	if err != nil {
		return p, err
	}
	fm, body, format := ExtractFrontMatter(b)
	if err := UnmarshalFrontMatter(fm, format, &p.FrontMatter); err != nil {
		return p, err
	}
	p.Body = body
	if p.Title == "" {
		p.Title = p.Slug
	}
	if p.Date.IsZero() || p.LastMod.IsZero() {
		if fi, err := fs.Stat(fsys, path.Join(dir, name)); err == nil {
			if p.Date.IsZero() {
				p.Date = fi.ModTime()
			}
			if p.LastMod.IsZero() {
				p.LastMod = fi.ModTime()
			}
		}
	}
	return p, nil
}

// Listing composes the listing view of a folder of posts: the full
// collection, sorted most recent first, projected to core content.
// An empty folder yields an empty listing, not an error, and repeated
// calls over unchanged input yield identical output.
func Listing(fsys fs.FS, dir string) ([]CoreContent, error) {
	posts, err := Load(fsys, dir)
	if err != nil {
		return nil, err
	}
	return AllCoreContent(SortPosts(posts)), nil
}
