package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gridcss/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter. When destination cannot be
// created report goes to temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {

	r := &Report{entries: make(map[string]entry)}

	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	r.file = f
	return r, nil
}

// entry is either a file read when report is closed (path) or data captured
// at the time of a call.
type entry struct {
	path  string
	data  []byte
	stamp time.Time
}

func (e entry) captured() bool {
	return e.data != nil
}

// Report accumulates files and data for debug archive, which is written on
// Close. All methods are no-ops on nil report so callers do not have to check
// whether debugging was requested. Not safe for concurrent use.
type Report struct {
	entries map[string]entry
	file    *os.File
}

// Close writes debug archive.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.finalize()
}

// Name returns name of archive file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store adds file to the archive. File is read on Close, files absent by
// then are skipped.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if p, err := filepath.Abs(path); err == nil {
		path = p
	}
	if old, exists := r.entries[name]; exists && old.path != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.path, path))
	}
	r.entries[name] = entry{path: path}
}

// StoreData adds data to the archive under requested name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}
	if data == nil {
		data = []byte{}
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// StoreCopy captures file content at the time of a call. Repeated names are
// versioned with timestamps, so it is safe to store the same file several
// times while it changes.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("unable to copy '%s' into report: not a regular file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	e := entry{data: data, stamp: info.ModTime()}
	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, time.Now().UnixNano())
	}
	r.entries[name] = e
	return nil
}

func (r *Report) finalize() error {

	arc := zip.NewWriter(r.file)
	defer arc.Close()

	now := time.Now()

	names := make([]string, 0, len(r.entries))
	for k := range r.entries {
		names = append(names, k)
	}
	sort.Strings(names)

	if err := saveFile(arc, "MANIFEST", now, manifest(names, r.entries, now)); err != nil {
		return err
	}

	// in the same order as in manifest
	for _, name := range names {
		e := r.entries[name]
		if e.captured() {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		if err := savePath(arc, name, e.path); err != nil {
			return err
		}
	}
	return nil
}

func manifest(names []string, entries map[string]entry, now time.Time) *bytes.Buffer {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%s %s (%s)\n", misc.GetAppName(), misc.GetVersion(), misc.GetGitHash())
	for _, k := range names {
		e := entries[k]
		stamp, source := e.stamp, e.path
		if stamp.IsZero() {
			stamp = now
		}
		if e.captured() {
			source = fmt.Sprintf("<%d bytes>", len(e.data))
		}
		fmt.Fprintf(buf, "%s\t%s\t%s\n", stamp.UTC().Format(time.UnixDate), k, source)
	}
	return buf
}

// savePath stores regular file, absent files and anything else are ignored.
func savePath(dst *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(dst, name, info.ModTime(), f)
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
