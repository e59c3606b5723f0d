package virtual

import (
	"bytes"
	"io"
	"io/fs"
	"time"
)

// renderFile is an in-memory file holding rendered output, such as a
// Markdown page run through a template, the site map, or the feed.
type renderFile struct {
	name    string
	reader  io.ReadSeeker
	size    int64
	modTime time.Time
}

// newRenderFile wraps rendered bytes as a read-only fs.File.
func newRenderFile(name string, b []byte, modTime time.Time) *renderFile {
	return &renderFile{
		name:    name,
		reader:  bytes.NewReader(b),
		size:    int64(len(b)),
		modTime: modTime,
	}
}

// Stat returns a FileInfo describing the file. The size reported is the
// length of the rendered data, not of the underlying source file.
func (f *renderFile) Stat() (fs.FileInfo, error) {
	return renderFileInfo{name: f.name, size: f.size, modTime: f.modTime}, nil
}

// Read reads up to len(b) bytes from the File. It returns the number of bytes read
// and any error encountered. At end of file, Read returns 0, io.EOF.
func (f *renderFile) Read(b []byte) (int, error) {
	return f.reader.Read(b)
}

// Seek sets the offset for the next Read to offset, interpreted according
// to whence: io.SeekStart means relative to the start of the file,
// io.SeekCurrent means relative to the current offset, and io.SeekEnd
// means relative to the end.
func (f *renderFile) Seek(offset int64, whence int) (int64, error) {
	return f.reader.Seek(offset, whence)
}

// Close closes the file. Rendered files are in memory, so this function does nothing.
func (f *renderFile) Close() error {
	return nil
}

// renderFileInfo holds the metadata about a rendered file.
type renderFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

// Name returns the base name of the file.
func (fi renderFileInfo) Name() string { return fi.name }

// Size reports the length of the rendered data.
func (fi renderFileInfo) Size() int64 { return fi.size }

// Mode returns the file mode bits of the file.
func (fi renderFileInfo) Mode() fs.FileMode { return 0444 }

// ModTime returns the modification time of the underlying source.
func (fi renderFileInfo) ModTime() time.Time { return fi.modTime }

// IsDir is an abbreviation for Mode().IsDir().
func (fi renderFileInfo) IsDir() bool { return false }

// Sys always returns nil because rendered files have no system data.
func (fi renderFileInfo) Sys() interface{} { return nil }

// virtualDirEntry represents a directory entry for a virtual file. It is
// lightweight in that the size is not known until the file is rendered.
type virtualDirEntry struct {
	renderFileInfo
}

// Type returns the type bits for the entry.
// The type bits are a subset of the usual FileMode bits, those returned by the FileMode.Type method.
func (de virtualDirEntry) Type() fs.FileMode {
	return de.Mode().Type()
}

// Info returns the FileInfo for the file described by the entry.
// The returned info is from the time of the directory read.
func (de virtualDirEntry) Info() (fs.FileInfo, error) {
	return de.renderFileInfo, nil
}
