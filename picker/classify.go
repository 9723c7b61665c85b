package picker

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var invalidTypeMessage = "File type must be " + strings.Join(AcceptedTypes, ", ")

// Classify splits the presented paths into accepted and rejected files.
// Every path ends up in exactly one of the two lists, in presentation order.
func Classify(ctx context.Context, paths []string, limits Limits) ([]PendingFile, []RejectedFile) {
	tooMany := limits.MaxFiles > 0 && len(paths) > limits.MaxFiles

	var accepted []PendingFile
	var rejected []RejectedFile

	for _, path := range paths {
		file, errs := inspect(path)
		if tooMany {
			errs = append(errs, FileError{Code: CodeTooManyFiles, Message: "Too many files"})
		}
		if len(errs) > 0 {
			rejected = append(rejected, RejectedFile{File: file, Errors: errs})
			continue
		}
		accepted = append(accepted, file)
	}

	annotate(ctx, accepted, limits.SimilarityThreshold)
	return accepted, rejected
}

// inspect stats the path and checks its content type
func inspect(path string) (PendingFile, []FileError) {
	file := PendingFile{
		Name: filepath.Base(path),
		Path: path,
	}

	fi, err := os.Stat(path)
	if err != nil {
		return file, []FileError{{Code: CodeUnreadable, Message: err.Error()}}
	}
	file.Size = fi.Size()

	if fi.IsDir() {
		return file, []FileError{{Code: CodeInvalidType, Message: invalidTypeMessage}}
	}

	mimeType, err := DetectType(path)
	if err != nil {
		return file, []FileError{{Code: CodeUnreadable, Message: err.Error()}}
	}
	file.Type = mimeType

	if !IsAcceptedType(mimeType) {
		return file, []FileError{{Code: CodeInvalidType, Message: invalidTypeMessage}}
	}
	return file, nil
}

// DetectType sniffs the file's MIME type, falling back to the extension when
// the content is not recognised
func DetectType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	detected := http.DetectContentType(head[:n])
	if detected == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
			detected = byExt
		}
	}
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	return detected, nil
}

// IsAcceptedType reports whether the MIME type may be submitted
func IsAcceptedType(mimeType string) bool {
	return slices.Contains(AcceptedTypes, mimeType)
}
