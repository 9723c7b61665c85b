package picker

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ExpandPaths replaces directory arguments with the files found beneath them,
// so the classifier sees every file a directory drop presents. Hidden files
// and directories are skipped. Plain file arguments are kept as-is.
func ExpandPaths(paths []string) ([]string, error) {
	var expanded []string

	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil || !fi.IsDir() {
			// Missing paths are reported by Classify
			expanded = append(expanded, path)
			continue
		}

		found, err := findFilesRecursively(path)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		expanded = append(expanded, found...)
	}

	return expanded, nil
}

func findFilesRecursively(directory string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := path != directory && strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if !hidden && d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})

	slices.Sort(files)
	return files, err
}

// SplitDropped parses text pasted into the drop zone. Terminals paste dragged
// files either quoted or with backslash-escaped spaces; on Windows backslashes
// are path separators and stay literal.
func SplitDropped(text string) []string {
	return splitDropped(text, runtime.GOOS)
}

func splitDropped(text, goos string) []string {
	if goos == "windows" {
		text = strings.ReplaceAll(text, `\`, `\\`)
	}

	words, err := shellquote.Split(text)
	if err != nil {
		// Unbalanced quotes: fall back to plain whitespace separation
		words = strings.Fields(text)
	}

	var paths []string
	for _, w := range words {
		if w == "" {
			continue
		}
		paths = append(paths, fromFileURI(w, goos))
	}
	return paths
}

// fromFileURI turns file:// entries into decoded local paths
func fromFileURI(word, goos string) string {
	if !strings.HasPrefix(word, "file://") {
		return word
	}
	u, err := url.Parse(word)
	if err != nil || u.Path == "" {
		return strings.TrimPrefix(word, "file://")
	}

	path := u.Path
	if goos == "windows" {
		// file:///C:/dir/a.png
		if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		path = strings.ReplaceAll(path, "/", `\`)
	}
	return path
}
