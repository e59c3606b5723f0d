package virtual

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/ancientlore/scribe/content"
)

// virtualDir presents the virtual view of a directory: Markdown sources
// appear as their rendered .html names, hidden and invisible files are
// omitted, and image files gain a companion .html page entry.
type virtualDir struct {
	fs.File // underlying directory, used for Stat and Close

	vfs     *FS
	path    string
	entries []fs.DirEntry
	pos     int
}

// ReadDir reads the contents of the directory and returns a slice of up
// to n DirEntry values, following the fs.ReadDirFile contract.
func (d *virtualDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.entries == nil {
		entries, err := d.vfs.mapDir(d.path)
		if err != nil {
			return nil, err
		}
		d.entries = entries
	}
	remaining := len(d.entries) - d.pos
	if n <= 0 {
		result := d.entries[d.pos:]
		d.pos = len(d.entries)
		return result, nil
	}
	if remaining == 0 {
		return nil, io.EOF
	}
	if n > remaining {
		n = remaining
	}
	result := d.entries[d.pos : d.pos+n]
	d.pos += n
	return result, nil
}

// mapDir builds the virtual entries for a folder from the underlying one.
func (vfs *FS) mapDir(folderpath string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(vfs.fs, folderpath)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	result := make([]fs.DirEntry, 0, len(entries))
	// Markdown pages are mapped first so that image companions know which
	// bases are shadowed regardless of name order.
	mdBases := make(map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		full := path.Join(folderpath, name)
		if entry.IsDir() || path.Ext(name) != ".md" || isHiddenFile(full) || strings.HasPrefix(name, ".") {
			continue
		}
		var fm content.FrontMatter
		err := vfs.readFrontMatter(full, &fm)
		if err != nil {
			log.Printf("mapDir: %s", err)
			continue
		}
		if !fm.Visible(now) {
			continue
		}
		mdBases[strings.TrimSuffix(name, ".md")] = true
		result = append(result, virtualDirEntry{vfs.entryInfo(entry, strings.TrimSuffix(name, ".md")+".html")})
	}
	for _, entry := range entries {
		name := entry.Name()
		full := path.Join(folderpath, name)
		if isHiddenFile(full) || strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			result = append(result, entry)
			continue
		}
		if path.Ext(name) == ".md" {
			continue
		}
		result = append(result, entry)
		// image files gain a virtual page unless a Markdown page shadows it
		if hasImageFolderPrefix(full) && hasImageExtension(name) {
			base := strings.TrimSuffix(name, path.Ext(name))
			if !mdBases[base] {
				result = append(result, virtualDirEntry{vfs.entryInfo(entry, base+".html")})
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

// entryInfo builds the lightweight info for a virtual entry, carrying the
// source file's modification time when available.
func (vfs *FS) entryInfo(entry fs.DirEntry, name string) renderFileInfo {
	rfi := renderFileInfo{name: name}
	if fi, err := entry.Info(); err == nil {
		rfi.modTime = fi.ModTime()
	}
	return rfi
}

// File holds data about a page endpoint and is used in templates.
type File struct {
	FrontMatter content.FrontMatter
	Filename    string
}

// dir returns a sorted slice of files and is used in templates.
func (vfs *FS) dir(folderpath string) []File {
	folderpath = "./" + strings.TrimPrefix(folderpath, "/")
	folderpath = path.Clean(folderpath)
	entries, err := fs.ReadDir(vfs, folderpath)
	if err != nil {
		log.Printf("dir: %s", err)
		return nil
	}
	f := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.Name() == "index.html" || entry.Name() == "404.html" || entry.Name() == "500.html" {
			continue
		}
		fm := content.FrontMatter{
			Title: strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())),
		}
		fi, err := entry.Info()
		if err == nil {
			fm.Date = fi.ModTime().Local()
		}
		if !entry.IsDir() && path.Ext(entry.Name()) == ".html" {
			err = vfs.readFrontMatter(path.Join(folderpath, strings.TrimSuffix(entry.Name(), ".html")+".md"), &fm)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					log.Printf("dir: %s", err)
				} else if hasImageFolderPrefix(folderpath) {
					base := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
					for _, ext := range imageExtensions {
						_, err = fs.Stat(vfs, path.Join(folderpath, base+ext))
						if err == nil {
							fm.OriginalFile = base + ext
							break
						}
					}
				}
			}
		}
		f = append(f, File{FrontMatter: fm, Filename: entry.Name()})
	}
	return f
}

// listing returns the visible posts in a folder ready for display and is
// used in templates. Errors yield an empty listing.
func (vfs *FS) listing(folderpath string) []content.CoreContent {
	folderpath = path.Clean("./" + strings.TrimPrefix(folderpath, "/"))
	cc, err := content.Listing(vfs.fs, folderpath)
	if err != nil {
		log.Printf("listing: %s", err)
		return nil
	}
	return cc
}

// sortByTime sorts the files by the time in reverse order
func sortByTime(f []File) []File {
	sort.Slice(f, func(i, j int) bool { return f[j].FrontMatter.Date.Before(f[i].FrontMatter.Date) })
	return f
}

// sortByName sorts the files by the name in reverse order
func sortByName(f []File) []File {
	sort.Slice(f, func(i, j int) bool { return f[j].Filename < f[i].Filename })
	return f
}

// reverse reverses the order of the file list.
func reverse(f []File) []File {
	j := len(f) - 1
	for i := 0; i < len(f)/2; i++ {
		f[i], f[j] = f[j], f[i]
		j--
	}
	return f
}

// filter trims out non-matching files based on name.
func filter(f []File, pat ...string) []File {
	var r []File
	for i := range f {
		if match(f[i].Filename, pat...) {
			r = append(r, f[i])
		}
	}
	return r
}

// match uses path.Match to test for a match.
func match(s string, pat ...string) bool {
	for i := range pat {
		b, err := path.Match(pat[i], s)
		if err != nil {
			log.Printf("match: %s", err)
		}
		if b {
			return true
		}
	}
	return false
}

// next returns the next file in the list.
func next(f []File, current string) *File {
	for i := range f {
		if f[i].Filename == current {
			if i > 0 {
				return &f[i-1]
			}
			return nil
		}
	}
	return nil
}

// prev returns the previous file in the list.
func prev(f []File, current string) *File {
	for i := range f {
		if f[i].Filename == current {
			if i < len(f)-1 {
				return &f[i+1]
			}
			return nil
		}
	}
	return nil
}
