package virtual

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/ancientlore/scribe/content"
)

// rssFeed is the RSS 2.0 document written to feed.xml.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description,omitempty"`
}

// newFeedFile presents the posts folder as an RSS feed: the full listing,
// newest first, with bodies stripped. The site title, link, and
// description come from site.cfg.
func (vfs *FS) newFeedFile(pathname string) (fs.File, error) {
	cfg, err := vfs.Config()
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: pathname, Err: err}
	}
	posts, err := content.Listing(vfs.fs, cfg.postsDir())
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: pathname, Err: err}
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title: "Scribe",
			Items: make([]rssItem, 0, len(posts)),
		},
	}
	var base string
	if cfg != nil {
		if cfg.Title != "" {
			feed.Channel.Title = cfg.Title
		}
		feed.Channel.Link = cfg.BaseURL
		feed.Channel.Description = cfg.Description
		base = cfg.BaseURL
	}
	modTime := time.Now()
	if len(posts) > 0 {
		modTime = posts[0].Date
		feed.Channel.LastBuildDate = modTime.Format(time.RFC1123Z)
	}
	for _, p := range posts {
		link := base + "/" + path.Join(cfg.postsDir(), p.Slug) + ".html"
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        link,
			PubDate:     p.Date.Format(time.RFC1123Z),
			Description: p.Summary,
		})
	}

	b, err := xml.MarshalIndent(feed, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("newFeedFile: %w", err)
	}
	out := append([]byte(xml.Header), b...)
	return newRenderFile(path.Base(pathname), out, modTime), nil
}
