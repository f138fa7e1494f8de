package service

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ExpandSources resolves source paths into regular files. A directory
// contributes its files (not recursively). The result is sorted.
func ExpandSources(paths []string) ([]string, error) {
	var files []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, invalidf("source %s does not exist", p)
			}
			return nil, &ResourceError{Path: p, Err: err}
		}

		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, &ResourceError{Path: p, Err: err}
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}

	if len(files) == 0 {
		return nil, invalidf("no source files found in %s", strings.Join(paths, ", "))
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

// baseName returns the file name of path without its extension, or
// "document" when nothing is left.
func baseName(path string) string {
	name := filepath.Base(filepath.Clean(path))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "document"
	}
	return name
}
