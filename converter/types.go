package converter

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Format is an output image format understood by the conversion service
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatJPG  Format = "jpg"
)

// Formats lists the selectable output formats in display order
var Formats = []Format{FormatPNG, FormatWebP, FormatJPG}

// ParseFormat normalises a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	}
	return "", fmt.Errorf("unknown format %q (want png, webp or jpg)", s)
}

// Label returns the upper-case name shown in the format selector
func (f Format) Label() string {
	if f == FormatWebP {
		return "WebP"
	}
	return strings.ToUpper(string(f))
}

// Options holds the resize/quality/format settings sent with every submit.
// Values are kept as strings and passed through verbatim.
type Options struct {
	Height  string
	Width   string
	Quality string
	Format  Format
}

// DefaultOptions returns the form defaults: no resize, quality 80, WebP output
func DefaultOptions() Options {
	return Options{
		Quality: "80",
		Format:  FormatWebP,
	}
}

// Upload is one image part of a conversion request
type Upload struct {
	Name string
	Path string
	Type string // MIME type sent as the part's Content-Type
}

// Request is everything submitted in a single conversion call
type Request struct {
	Options Options
	Files   []Upload
}

// Result is the service's payload for one submitted file
type Result struct {
	FileName string  `json:"fileName"`
	FileData string  `json:"fileData"` // base64
	Size     float64 `json:"size"`     // approximate kb
}

// response is the JSON envelope returned by the conversion endpoint
type response struct {
	Status  *int     `json:"status"`
	Message string   `json:"message"`
	Files   []Result `json:"files"`
}

// Converter turns a Request into one Result per submitted file, in order
type Converter interface {
	Convert(ctx context.Context, req Request) ([]Result, error)
}

// ProgressFunc returns a writer that observes the request body as it is sent.
// size is the total body length in bytes.
type ProgressFunc func(size int64) io.Writer
