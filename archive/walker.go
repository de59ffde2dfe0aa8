// Package archive reads stylesheets back from debug report archives.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// OutputPrefix is the directory of debug report holding generated stylesheets.
const OutputPrefix = "output/"

// WalkFunc is called for every matching file in archive. Name is the entry
// path inside archive. If an error is returned, processing stops.
type WalkFunc func(name string, data []byte) error

// Walk visits all regular files in the archive whose names start with prefix
// and end with suffix, in archive order. Entries with absolute paths or ".."
// components are rejected.
func Walk(archive, prefix, suffix string, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(strings.ToLower(name), suffix) {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", name, err)
		}
		if err := walkFn(name, data); err != nil {
			return err
		}
	}
	return nil
}

// Stylesheets visits generated stylesheets stored in debug report.
func Stylesheets(archive string, walkFn WalkFunc) error {
	return Walk(archive, OutputPrefix, ".css", walkFn)
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
