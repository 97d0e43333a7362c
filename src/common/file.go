package common

import (
	"os"
	"sort"
	"strings"
)

func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// ListFilesWith returns the sorted names of dir's files starting with prefix and
// ending with suffix.
func ListFilesWith(dir, prefix, suffix string) ([]string, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	matched := files[:0]
	for _, f := range files {
		if strings.HasPrefix(f, prefix) && strings.HasSuffix(f, suffix) {
			matched = append(matched, f)
		}
	}
	return matched, nil
}
