package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DocumentExt is the extension of input documents, matched case-insensitively.
const DocumentExt = ".pdf"

// Discover collects documents under root and returns their paths sorted
// lexicographically for deterministic processing order. Without recursive
// only the immediate children of root are considered.
func Discover(root string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), DocumentExt) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			fi, statErr := os.Stat(path)
			if statErr != nil || !fi.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
