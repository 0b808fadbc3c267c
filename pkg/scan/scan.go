// Package scan enumerates candidate photos in a directory.
package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Options controls which files Scan reports.
type Options struct {
	// MaxDepth limits recursion. 0 lists only the top level, -1 is unlimited.
	MaxDepth int

	// Extensions are matched case-insensitively, with or without a leading dot.
	Extensions []string
}

// DefaultOptions returns the listing a review works on: JPEG and PNG only,
// since those are the containers the EXIF reader and writer handle, and no
// recursion, so a review never rewrites photos in subfolders the user did
// not point it at.
func DefaultOptions() Options {
	return Options{
		MaxDepth:   0,
		Extensions: []string{".png", ".jpg", ".jpeg"},
	}
}

// Record describes a matched file.
type Record struct {
	Path          string    `json:"path"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ModTime       time.Time `json:"mod_time"`
}

// Scan returns the slash-separated paths, relative to root, of matching files
// in lexical order. The order is the order photos are reviewed and prompted
// for.
func Scan(fsys fs.FS, root string, opts Options) ([]string, error) {
	records, err := ScanRecords(fsys, root, opts)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.Path)
	}
	return paths, nil
}

// ScanRecords is like Scan but includes size and modification time.
func ScanRecords(fsys fs.FS, root string, opts Options) ([]Record, error) {
	if opts.MaxDepth < -1 {
		return nil, fs.ErrInvalid
	}

	exts := extensionSet(opts.Extensions)
	var records []Record

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if opts.MaxDepth >= 0 && depth(rel) >= opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if !exts[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}

		records = append(records, Record{
			Path:          filepath.ToSlash(rel),
			FileSizeBytes: info.Size(),
			ModTime:       info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	return records, nil
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		e := strings.ToLower(strings.TrimSpace(ext))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// depth counts the directories between root and rel; a top-level entry is 0.
func depth(rel string) int {
	return strings.Count(filepath.ToSlash(filepath.Clean(rel)), "/")
}
