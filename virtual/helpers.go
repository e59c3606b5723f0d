package virtual

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/ancientlore/scribe/content"
)

var hiddenFiles = []string{
	"template",
	"site.cfg",
}

// isHiddenFile returns true if the given file is considered
// hidden from outside view. Anything below a hidden folder is
// hidden as well.
func isHiddenFile(name string) bool {
	for _, s := range hiddenFiles {
		if name == s || strings.HasPrefix(name, s+"/") {
			return true
		}
	}
	return false
}

// containsSpecialFile reports whether name contains a path element starting with a period
// or is another kind of special file. The name is assumed to be a delimited by forward
// slashes, as guaranteed by the fs.FS interface.
func containsSpecialFile(name string) bool {
	parts := strings.Split(name, "/")
	for _, part := range parts {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// hasImageFolderPrefix checks if the entry is in an image folder.
func hasImageFolderPrefix(s string) bool {
	imageFolders := []string{"photos", "images", "pictures", "cartoons", "toons", "sketches", "artwork", "drawings"}
	for _, f := range imageFolders {
		if strings.HasPrefix(s, f) {
			return true
		}
	}
	return false
}

// imageExtensions lists the image types given virtual HTML pages.
var imageExtensions = []string{".png", ".jpg", ".gif", ".webp", ".jpeg"}

// hasImageExtension checks if the path ends in an image type.
func hasImageExtension(s string) bool {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

// readFrontMatter extracts and unmarshals front matter from the given file
// in the underlying file system.
func (vfs *FS) readFrontMatter(name string, fm *content.FrontMatter) error {
	b, err := fs.ReadFile(vfs.fs, name)
	if err != nil {
		return fmt.Errorf("readFrontMatter: %w", err)
	}
	fmb, _, format := content.ExtractFrontMatter(b)
	err = content.UnmarshalFrontMatter(fmb, format, fm)
	if err != nil {
		return fmt.Errorf("readFrontMatter: %w", err)
	}
	return nil
}
