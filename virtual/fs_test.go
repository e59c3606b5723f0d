package virtual

import (
	"encoding/xml"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"
)

func testFS() fstest.MapFS {
	old := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return fstest.MapFS{
		"site.cfg":        &fstest.MapFile{Data: []byte("title = \"Test Site\"\nbaseurl = \"https://test.example\"\ndescription = \"A test.\"\n"), ModTime: old},
		"index.md":        &fstest.MapFile{Data: []byte("+++\ntitle = \"Home\"\ntemplate = \"list\"\n+++\nWelcome."), ModTime: old},
		"404.md":          &fstest.MapFile{Data: []byte("+++\ntitle = \"Not Found\"\n+++\nNothing here."), ModTime: old},
		"500.md":          &fstest.MapFile{Data: []byte("+++\ntitle = \"Error\"\n+++\nBroke."), ModTime: old},
		"old-link.md":     &fstest.MapFile{Data: []byte("+++\nredirect = \"/posts/first.html\"\n+++\n"), ModTime: old},
		"sitemap.txt":     &fstest.MapFile{Data: []byte("{{range .}}https://test.example{{.}}\n{{end}}"), ModTime: old},
		"posts/index.md":  &fstest.MapFile{Data: []byte("+++\ntitle = \"All Posts\"\ntemplate = \"list\"\n+++\nThe posts."), ModTime: old},
		"posts/first.md":  &fstest.MapFile{Data: []byte("+++\ntitle = \"First\"\ndate = 2024-01-01T00:00:00Z\nsummary = \"The first post.\"\n+++\nHello *world*."), ModTime: old},
		"posts/second.md": &fstest.MapFile{Data: []byte("---\ntitle: Second\ndate: 2024-03-01T00:00:00Z\nsummary: The second post.\n---\nMore words."), ModTime: old},
		"posts/draft.md":  &fstest.MapFile{Data: []byte("+++\ntitle = \"Draft\"\ndate = 2024-02-01T00:00:00Z\ndraft = true\n+++\nShh."), ModTime: old},
		"posts/future.md": &fstest.MapFile{Data: []byte("+++\ntitle = \"Future\"\ndate = 2199-01-01T00:00:00Z\n+++\nNot yet."), ModTime: old},
		"photos/cat.png":  &fstest.MapFile{Data: []byte("pretend this is a png"), ModTime: old},
		"static/main.css": &fstest.MapFile{Data: []byte("body { margin: 0 }"), ModTime: old},
		".secret":         &fstest.MapFile{Data: []byte("hidden"), ModTime: old},
	}
}

func TestFS(t *testing.T) {
	const count = 10
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func() {
			defer wg.Done()
			numEntries := 0
			fs.WalkDir(fileSys, ".", func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					t.Error(err)
					return nil
				}
				if path == "" {
					t.Error("Path is empty")
					return nil
				}
				numEntries++
				if !d.IsDir() {
					b, err := fs.ReadFile(fileSys, path)
					if err != nil {
						t.Errorf("Cannot read %q: %v", path, err)
						return nil
					}
					if len(b) == 0 {
						t.Errorf("File %q has no data", path)
					}
				} else {
					_, err := fs.ReadDir(fileSys, path)
					if err != nil {
						t.Errorf("Cannot readdir %q: %v", path, err)
					}
				}
				fi, err := fs.Stat(fileSys, path)
				if err != nil {
					t.Errorf("Cannot stat %q: %v", path, err)
					return nil
				}
				if !strings.HasSuffix(path, fi.Name()) {
					t.Errorf("%q should be part of %q", fi.Name(), path)
				}
				if !d.IsDir() && fi.ModTime().IsZero() {
					t.Errorf("Expected %q to have non-zero mod time", path)
				}
				return nil
			})
			if numEntries == 0 {
				t.Error("Walk saw no entries")
			}
		}()
	}
	wg.Wait()
}

func TestOpenHidden(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"site.cfg", ".secret", "posts/first.md", "posts/draft.html", "posts/future.html"} {
		_, err := fileSys.Open(name)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Expected %q to not exist, got %v", name, err)
		}
	}
	if _, err := fileSys.Open("../nope"); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("Expected invalid path error, got %v", err)
	}
}

func TestRenderedPage(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fileSys, "posts/first.html")
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, "Hello <em>world</em>") {
		t.Errorf("Markdown not rendered: %s", s)
	}
	if !strings.Contains(s, "First") {
		t.Errorf("Title missing: %s", s)
	}
	fi, err := fs.Stat(fileSys, "posts/first.html")
	if err != nil {
		t.Fatal(err)
	}
	if fi.Name() != "first.html" {
		t.Errorf("Expected name first.html but got %q", fi.Name())
	}
	if fi.Size() != int64(len(b)) {
		t.Errorf("Stat size %d does not match content length %d", fi.Size(), len(b))
	}
}

func TestListingPage(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fileSys, "posts/index.html")
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	first := strings.Index(s, "First")
	second := strings.Index(s, "Second")
	if first < 0 || second < 0 {
		t.Fatalf("Listing is missing posts: %s", s)
	}
	if second > first {
		t.Error("Posts are not in reverse chronological order")
	}
	for _, absent := range []string{"Draft", "Future"} {
		if strings.Contains(s, absent) {
			t.Errorf("Listing should not contain %q", absent)
		}
	}
	if !strings.Contains(s, "The second post.") {
		t.Error("Listing is missing summaries")
	}
	// Rendering twice over unchanged input yields identical output.
	b2, err := fs.ReadFile(fileSys, "posts/index.html")
	if err != nil {
		t.Fatal(err)
	}
	if string(b2) != s {
		t.Error("Listing render is not idempotent")
	}
}

func TestReadDirVirtualEntries(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	entries, err := fs.ReadDir(fileSys, "posts")
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	for _, want := range []string{"first.html", "second.html", "index.html"} {
		if !names[want] {
			t.Errorf("Expected %q in posts listing: %v", want, names)
		}
	}
	for _, nope := range []string{"draft.html", "future.html", "first.md", "draft.md"} {
		if names[nope] {
			t.Errorf("Did not expect %q in posts listing", nope)
		}
	}
}

func TestReadDirLoop(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	f, err := fileSys.Open(".")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rdf, ok := f.(fs.ReadDirFile)
	if !ok {
		t.Fatal("Root is not a ReadDirFile")
	}
	total := 0
	for {
		dirs, err := rdf.ReadDir(2)
		if errors.Is(err, io.EOF) {
			if len(dirs) != 0 {
				t.Error("Expected empty directory at EOF")
			}
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if len(dirs) == 0 {
			t.Error("Should not return empty directory if not EOF")
			break
		}
		if len(dirs) > 2 {
			t.Errorf("Returned more than 2 entries: %d", len(dirs))
		}
		total += len(dirs)
	}
	if total == 0 {
		t.Error("No entries returned")
	}
}

func TestImagePage(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fileSys, "photos/cat.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "cat.png") {
		t.Errorf("Image page should reference the image: %s", b)
	}
	// the image itself stays visible
	if _, err := fs.Stat(fileSys, "photos/cat.png"); err != nil {
		t.Errorf("Image file should remain visible: %v", err)
	}
	entries, err := fs.ReadDir(fileSys, "photos")
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]bool)
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	if !names["cat.png"] || !names["cat.html"] {
		t.Errorf("Expected cat.png and cat.html in photos: %v", names)
	}
}

func TestImagePageShadowed(t *testing.T) {
	old := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	fsys := testFS()
	// dog.jpg sorts before dog.md, so the shadow must hold either way
	fsys["photos/dog.jpg"] = &fstest.MapFile{Data: []byte("pretend this is a jpg"), ModTime: old}
	fsys["photos/dog.md"] = &fstest.MapFile{Data: []byte("+++\ntitle = \"Dog\"\n+++\nA very good dog."), ModTime: old}
	fileSys, err := New(fsys)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := fs.ReadDir(fileSys, "photos")
	if err != nil {
		t.Fatal(err)
	}
	counts := make(map[string]int, len(entries))
	for _, entry := range entries {
		counts[entry.Name()]++
	}
	for name, n := range counts {
		if n > 1 {
			t.Errorf("Entry %q appears %d times", name, n)
		}
	}
	if counts["dog.html"] != 1 || counts["dog.jpg"] != 1 {
		t.Errorf("Expected one dog.html and one dog.jpg: %v", counts)
	}
	b, err := fs.ReadFile(fileSys, "photos/dog.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "A very good dog") {
		t.Errorf("Markdown page should shadow the image page: %s", b)
	}
	b, err = fs.ReadFile(fileSys, "sitemap.txt")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(b), "https://test.example/photos/dog\n"); n != 1 {
		t.Errorf("Expected /photos/dog once in the sitemap but found it %d times:\n%s", n, b)
	}
}

func TestRedirectPage(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fileSys, "old-link.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `http-equiv="refresh"`) || !strings.Contains(string(b), "/posts/first.html") {
		t.Errorf("Expected a meta refresh to the new location: %s", b)
	}
}

func TestSitemap(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fileSys, "sitemap.txt")
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, want := range []string{
		"https://test.example/\n",
		"https://test.example/posts/\n",
		"https://test.example/posts/first\n",
		"https://test.example/posts/second\n",
		"https://test.example/photos/cat\n",
		"https://test.example/static/main.css\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Sitemap missing %q:\n%s", strings.TrimSpace(want), s)
		}
	}
	for _, nope := range []string{"draft", "future", "404", "500", "sitemap.txt", "site.cfg"} {
		if strings.Contains(s, nope) {
			t.Errorf("Sitemap should not contain %q:\n%s", nope, s)
		}
	}
}

func TestFeed(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fileSys, "feed.xml")
	if err != nil {
		t.Fatal(err)
	}
	var feed rssFeed
	if err := xml.Unmarshal(b, &feed); err != nil {
		t.Fatalf("Feed is not valid XML: %v", err)
	}
	if feed.Channel.Title != "Test Site" {
		t.Errorf("Expected channel title from site.cfg but got %q", feed.Channel.Title)
	}
	if len(feed.Channel.Items) != 2 {
		t.Fatalf("Expected 2 items but got %d", len(feed.Channel.Items))
	}
	if feed.Channel.Items[0].Title != "Second" || feed.Channel.Items[1].Title != "First" {
		t.Errorf("Items not in reverse chronological order: %+v", feed.Channel.Items)
	}
	if feed.Channel.Items[0].Link != "https://test.example/posts/second.html" {
		t.Errorf("Unexpected item link %q", feed.Channel.Items[0].Link)
	}
}

func TestConfig(t *testing.T) {
	fileSys, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := fileSys.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil || cfg.Title != "Test Site" || cfg.BaseURL != "https://test.example" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.postsDir() != "posts" {
		t.Errorf("Expected default posts folder but got %q", cfg.postsDir())
	}

	empty, err := New(fstest.MapFS{"index.md": &fstest.MapFile{Data: []byte("hi")}})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err = empty.Config()
	if err != nil || cfg != nil {
		t.Errorf("Expected no config and no error, got %+v, %v", cfg, err)
	}
}

func TestReloadTemplates(t *testing.T) {
	fsys := testFS()
	fsys["template/default.html"] = &fstest.MapFile{Data: []byte(`{{define "default"}}ONE {{.Content}}{{end}}{{define "list"}}ONE{{end}}{{define "image"}}ONE{{end}}`)}
	fileSys, err := New(fsys)
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fileSys, "posts/first.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "ONE") {
		t.Fatalf("Custom template not used: %s", b)
	}
	fsys["template/default.html"] = &fstest.MapFile{Data: []byte(`{{define "default"}}TWO {{.Content}}{{end}}{{define "list"}}TWO{{end}}{{define "image"}}TWO{{end}}`)}
	if err := fileSys.ReloadTemplates(); err != nil {
		t.Fatal(err)
	}
	b, err = fs.ReadFile(fileSys, "posts/first.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "TWO") {
		t.Errorf("Templates were not reloaded: %s", b)
	}
	// templates stay hidden from view, including the files inside
	for _, name := range []string{"template", "template/default.html"} {
		if _, err := fileSys.Open(name); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Expected %q to be hidden, got %v", name, err)
		}
	}
}

func TestExampleSite(t *testing.T) {
	fileSys, err := New(os.DirFS("../example"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fileSys, "posts/index.html")
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	broadcasting := strings.Index(s, "Broadcasting, the Rule Behind the Magic")
	pandas := strings.Index(s, "Exploring a Dataset with pandas")
	hello := strings.Index(s, "Hello, Field Notes")
	if broadcasting < 0 || pandas < 0 || hello < 0 {
		t.Fatalf("Example listing is missing posts:\n%s", s)
	}
	if !(broadcasting < pandas && pandas < hello) {
		t.Error("Example posts are not newest first")
	}
	if strings.Contains(s, "Matplotlib Styles Worth Stealing") {
		t.Error("Draft post should not be listed")
	}
	if strings.Contains(s, "A First Look at Polars") {
		t.Error("Future-dated post should not be listed")
	}
	b, err = fs.ReadFile(fileSys, "index.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "Recent Posts") {
		t.Error("Home page did not use the home template")
	}
}
