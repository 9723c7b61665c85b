package workflow

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/lepinkainen/imgconvert/converter"
)

// ArchiveName is the file name of the download-all archive. It has no extension.
const ArchiveName = "convertedImages"

// DownloadContentType is the content label attached to single-file saves.
// It does not match the converted image format.
const DownloadContentType = "application/pdf"

// ArchiveContentType labels the download-all archive
const ArchiveContentType = "application/zip"

// Download describes a file written by DownloadOne or DownloadAllAsZip
type Download struct {
	Path        string
	ContentType string
	Size        int
}

// DownloadOne decodes the converted payload at index and saves it in dir
// under the name the service returned
func (w *Workflow) DownloadOne(index int, dir string) (Download, error) {
	w.mu.Lock()
	if index < 0 || index >= len(w.entries) {
		w.mu.Unlock()
		return Download{}, ErrIndexOutOfRange
	}
	result := w.entries[index].Result
	w.mu.Unlock()

	if result == nil {
		return Download{}, ErrNoResult
	}

	data, err := DecodePayload(result.FileData)
	if err != nil {
		return Download{}, fmt.Errorf("failed to decode %s: %w", result.FileName, err)
	}

	path, err := save(dir, safeName(result.FileName, index), data)
	if err != nil {
		return Download{}, err
	}

	w.logger.Info("saved converted file", "path", path, "bytes", len(data))
	return Download{Path: path, ContentType: DownloadContentType, Size: len(data)}, nil
}

// DownloadAllAsZip bundles every converted file into one archive saved in dir
func (w *Workflow) DownloadAllAsZip(dir string) (Download, error) {
	snap := w.Snapshot()
	if !snap.CanDownloadZip() {
		return Download{}, ErrZipUnavailable
	}

	archive, err := BuildArchive(snap.ConvertedData())
	if err != nil {
		return Download{}, err
	}

	path, err := save(dir, ArchiveName, archive)
	if err != nil {
		return Download{}, err
	}

	w.logger.Info("saved archive", "path", path, "bytes", len(archive))
	return Download{Path: path, ContentType: ArchiveContentType, Size: len(archive)}, nil
}

// DecodePayload decodes a base64 file payload, ignoring embedded whitespace
func DecodePayload(data string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)
	return base64.StdEncoding.DecodeString(cleaned)
}

// BuildArchive writes every result into a zip under its stored file name.
// Repeated names get a numeric suffix so no entry is shadowed.
func BuildArchive(results []converter.Result) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]int, len(results))

	for i, res := range results {
		data, err := DecodePayload(res.FileData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", res.FileName, err)
		}

		name := uniqueName(safeName(res.FileName, i), used)
		fw, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func save(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// safeName strips directory components from a service supplied name
func safeName(name string, index int) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		return fmt.Sprintf("converted-%d", index+1)
	}
	return base
}

func uniqueName(name string, used map[string]int) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n+1, ext)
}
