package naming

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MediaExtensions are the file extensions picked up when walking a
// directory (lowercase, with leading dot). Files named explicitly are
// always accepted.
var MediaExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".avi":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".ts":   true,
	".m2ts": true,
	".mpg":  true,
	".mpeg": true,
	".ogv":  true,
	".gif":  true,
	".flac": true,
	".wav":  true,
	".mp3":  true,
	".opus": true,
	".ogg":  true,
	".m4a":  true,
}

// Input is one file to convert.
type Input struct {
	Path string
	// Root is the directory the file was discovered under, empty when the
	// file was named directly.
	Root string
}

// RelDir returns the input's directory relative to Root, or "" when the
// input was named directly.
func (in Input) RelDir() string {
	if in.Root == "" {
		return ""
	}
	rel, err := filepath.Rel(in.Root, filepath.Dir(in.Path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return rel
}

// Discover expands paths into inputs. Files pass through; directories are
// walked recursively and their media files returned sorted
// lexicographically for a deterministic processing order.
func Discover(paths []string) ([]Input, error) {
	var inputs []Input
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", path, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, Input{Path: path})
			continue
		}

		var files []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if MediaExtensions[strings.ToLower(filepath.Ext(p))] {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
		sort.Strings(files)
		for _, f := range files {
			inputs = append(inputs, Input{Path: f, Root: path})
		}
	}
	return inputs, nil
}
