// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Finder expands a list of files and directories into the files with a
// given extension.
type Finder struct {
	// Ext is the extension to match, including the dot.
	Ext string
	// SkipMissing ignores paths that do not exist instead of failing.
	SkipMissing bool
}

// Find returns every matching file under paths. Files named directly are
// kept when they carry the extension; directories are walked recursively
// in lexical order. Each file appears once, in first-seen order.
func (f Finder) Find(paths ...string) ([]string, error) {
	if f.Ext == "" {
		panic("extension must not be empty")
	}

	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if f.SkipMissing && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) == f.Ext {
				add(path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == f.Ext {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
