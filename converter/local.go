package converter

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
)

// Local converts images in-process. It understands the same options as the
// remote service but can only encode PNG and JPG.
type Local struct{}

// NewLocal creates an offline converter
func NewLocal() *Local { return &Local{} }

// Convert decodes, resizes and re-encodes every file in order
func (l *Local) Convert(ctx context.Context, req Request) ([]Result, error) {
	if req.Options.Format == FormatWebP {
		return nil, &ServiceError{Message: "unsupported format"}
	}
	if _, err := ParseFormat(string(req.Options.Format)); err != nil {
		return nil, &ServiceError{Message: "unsupported format"}
	}

	width, err := parseDimension(req.Options.Width)
	if err != nil {
		return nil, &ServiceError{Message: fmt.Sprintf("invalid width: %s", req.Options.Width)}
	}
	height, err := parseDimension(req.Options.Height)
	if err != nil {
		return nil, &ServiceError{Message: fmt.Sprintf("invalid height: %s", req.Options.Height)}
	}
	quality, err := parseQuality(req.Options.Quality)
	if err != nil {
		return nil, &ServiceError{Message: fmt.Sprintf("invalid quality: %s", req.Options.Quality)}
	}

	results := make([]Result, 0, len(req.Files))
	for _, upload := range req.Files {
		if err := ctx.Err(); err != nil {
			return nil, &TransportError{Err: err}
		}
		res, err := convertFile(upload, req.Options.Format, width, height, quality)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func convertFile(upload Upload, format Format, width, height uint, quality int) (Result, error) {
	f, err := os.Open(upload.Path)
	if err != nil {
		return Result{}, &TransportError{Err: fmt.Errorf("failed to open %s: %w", upload.Name, err)}
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return Result{}, &ServiceError{Message: fmt.Sprintf("cannot decode %s", upload.Name)}
	}

	if width > 0 || height > 0 {
		img = resize.Resize(width, height, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return Result{}, &ServiceError{Message: fmt.Sprintf("cannot encode %s: %v", upload.Name, err)}
	}

	base := strings.TrimSuffix(upload.Name, filepath.Ext(upload.Name))
	return Result{
		FileName: base + "." + string(format),
		FileData: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Size:     math.Round(float64(buf.Len())/1024*100) / 100,
	}, nil
}

func parseDimension(s string) (uint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}

// parseQuality maps the 0-100 form value onto the encoder's 1-100 range
func parseQuality(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return jpeg.DefaultQuality, nil
	}
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return min(max(q, 1), 100), nil
}
