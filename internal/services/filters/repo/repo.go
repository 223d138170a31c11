// Package repo reads and writes filter documents on the local filesystem
package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	perr "seedsearch/internal/platform/errors"
	dom "seedsearch/internal/services/filters/domain"

	"gopkg.in/yaml.v3"
)

// Repo is the filter persistence surface used by the service layer
type Repo interface {
	Read(ctx context.Context, path string) (*dom.Filter, fs.FileInfo, error)
	Write(ctx context.Context, path string, f *dom.Filter) error
	List(ctx context.Context, dir string) ([]string, error)
	Stat(path string) (fs.FileInfo, error)
}

// Files is the filesystem implementation
type Files struct{}

// NewFiles returns the filesystem repo
func NewFiles() Repo { return Files{} }

// Read decodes the document at path using the encoding implied by its extension
func (Files) Read(ctx context.Context, path string) (*dom.Filter, fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, nil, mapFSErr(err, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, mapFSErr(err, path)
	}
	f, err := Decode(path, raw)
	if err != nil {
		return nil, nil, err
	}
	f.Path = path
	return f, st, nil
}

// Write encodes f and replaces path atomically via a temp file in the same directory
func (Files) Write(ctx context.Context, path string, f *dom.Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := Encode(path, f)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "create filter dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "create temp for %s", path)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "replace %s", path)
	}
	return nil
}

// List returns the filter document paths directly under dir, sorted
func (Files) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, mapFSErr(err, dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, ok := dom.FormatOf(e.Name()); ok {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Stat reports file info with project error mapping
func (Files) Stat(path string) (fs.FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, mapFSErr(err, path)
	}
	return st, nil
}

// Decode parses a document; the extension of path selects JSON or YAML
func Decode(path string, raw []byte) (*dom.Filter, error) {
	format, ok := dom.FormatOf(path)
	if !ok {
		return nil, perr.WithField(perr.InvalidArgf("unsupported filter extension %q", filepath.Ext(path)), "path")
	}
	var f dom.Filter
	switch format {
	case dom.FormatYAML:
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "invalid YAML in %s", path)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&f); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "invalid JSON in %s", path)
		}
	}
	return &f, nil
}

// Encode renders a document in the encoding chosen by the extension of path
func Encode(path string, f *dom.Filter) ([]byte, error) {
	format, ok := dom.FormatOf(path)
	if !ok {
		return nil, perr.WithField(perr.InvalidArgf("unsupported filter extension %q", filepath.Ext(path)), "path")
	}
	if format == dom.FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDecode, "encode YAML")
		}
		_ = enc.Close()
		return buf.Bytes(), nil
	}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDecode, "encode JSON")
	}
	return append(raw, '\n'), nil
}

func mapFSErr(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return perr.Wrapf(err, perr.ErrorCodeNotFound, "filter %s not found", path)
	}
	return perr.Wrapf(err, perr.ErrorCodeUnavailable, "access %s", path)
}
