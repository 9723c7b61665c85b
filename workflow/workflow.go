package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/lepinkainen/imgconvert/converter"
	"github.com/lepinkainen/imgconvert/picker"
)

var (
	ErrNoFiles         = errors.New("no files selected")
	ErrSubmitInFlight  = errors.New("a conversion is already in progress")
	ErrIndexOutOfRange = errors.New("file index out of range")
	ErrNoResult        = errors.New("file has not been converted")
	ErrZipUnavailable  = errors.New("zip download needs more than one converted file")
	ErrUnknownField    = errors.New("unknown option field")
)

// FileKind selects which list RemoveFile operates on
type FileKind int

const (
	Accepted FileKind = iota
	Rejected
)

// Option field names as submitted to the service
const (
	FieldHeight  = "height"
	FieldWidth   = "width"
	FieldQuality = "quality"
	FieldFormat  = "format"
)

// Entry pairs an accepted file with its converted result, if any
type Entry struct {
	File   picker.PendingFile
	Result *converter.Result
}

// Ticket identifies one in-flight submit
type Ticket struct {
	generation uint64
	files      int
}

// Workflow owns the upload/convert/download state. All mutation goes through
// its methods; renderers read a Snapshot.
type Workflow struct {
	mu sync.Mutex

	entries  []Entry
	rejected []picker.RejectedFile
	options  converter.Options

	dataLoaded bool
	errMessage string

	submitting bool
	// generation changes whenever the accepted list changes, so results from a
	// submit that started before the change are never attached
	generation uint64

	logger *slog.Logger
}

// New creates an idle workflow with the given starting options
func New(options converter.Options, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Workflow{
		options:    options,
		dataLoaded: true,
		logger:     logger,
	}
}

// FilesDropped replaces both file lists and clears every converted result
func (w *Workflow) FilesDropped(accepted []picker.PendingFile, rejected []picker.RejectedFile) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries = make([]Entry, len(accepted))
	for i, f := range accepted {
		w.entries[i] = Entry{File: f}
	}
	w.rejected = append([]picker.RejectedFile(nil), rejected...)
	w.generation++

	w.logger.Debug("files dropped", "accepted", len(accepted), "rejected", len(rejected))
}

// SetOption merges one form field into the conversion options. Values are not
// validated beyond the format enumeration.
func (w *Workflow) SetOption(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch field {
	case FieldHeight:
		w.options.Height = value
	case FieldWidth:
		w.options.Width = value
	case FieldQuality:
		w.options.Quality = value
	case FieldFormat:
		format, err := converter.ParseFormat(value)
		if err != nil {
			return err
		}
		w.options.Format = format
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// BeginSubmit moves the workflow into the submitting state and returns the
// request to send. CompleteSubmit must be called with the returned ticket.
func (w *Workflow) BeginSubmit() (Ticket, converter.Request, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return Ticket{}, converter.Request{}, ErrSubmitInFlight
	}
	if len(w.entries) == 0 {
		return Ticket{}, converter.Request{}, ErrNoFiles
	}

	req := converter.Request{
		Options: w.options,
		Files:   make([]converter.Upload, len(w.entries)),
	}
	for i, e := range w.entries {
		req.Files[i] = converter.Upload{Name: e.File.Name, Path: e.File.Path, Type: e.File.Type}
	}

	w.submitting = true
	w.dataLoaded = false

	w.logger.Info("submitting files", "count", len(req.Files), "format", req.Options.Format)
	return Ticket{generation: w.generation, files: len(w.entries)}, req, nil
}

// CompleteSubmit records the outcome of the submit identified by ticket and
// returns the error that was stored, if any. DataLoaded is restored on every path.
func (w *Workflow) CompleteSubmit(ticket Ticket, results []converter.Result, err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.submitting = false
	w.dataLoaded = true

	stale := ticket.generation != w.generation

	if stale && err == nil {
		w.logger.Debug("discarding results for a replaced file list")
		return nil
	}

	if err == nil && len(results) != ticket.files {
		err = &converter.TransportError{Err: fmt.Errorf(
			"malformed response: expected %d results, got %d", ticket.files, len(results))}
	}

	if err != nil {
		w.errMessage = err.Error()
		if !stale {
			w.clearResults()
		}
		if converter.IsServiceError(err) {
			w.logger.Warn("conversion rejected", "message", w.errMessage)
		} else {
			w.logger.Error("conversion failed", "error", err)
		}
		return err
	}

	for i := range w.entries {
		res := results[i]
		w.entries[i].Result = &res
	}
	w.errMessage = ""
	w.logger.Info("conversion stored", "results", len(results))
	return nil
}

// Submit runs a full submit cycle against conv
func (w *Workflow) Submit(ctx context.Context, conv converter.Converter) error {
	ticket, req, err := w.BeginSubmit()
	if err != nil {
		return err
	}
	results, err := conv.Convert(ctx, req)
	return w.CompleteSubmit(ticket, results, err)
}

// RemoveFile deletes the row at index from the list selected by kind. For
// accepted files the converted result goes with it.
func (w *Workflow) RemoveFile(index int, kind FileKind) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch kind {
	case Accepted:
		if index < 0 || index >= len(w.entries) {
			return ErrIndexOutOfRange
		}
		w.entries = append(w.entries[:index:index], w.entries[index+1:]...)
		w.generation++
	case Rejected:
		if index < 0 || index >= len(w.rejected) {
			return ErrIndexOutOfRange
		}
		w.rejected = append(w.rejected[:index:index], w.rejected[index+1:]...)
	default:
		return fmt.Errorf("unknown file kind %d", kind)
	}
	return nil
}

func (w *Workflow) clearResults() {
	for i := range w.entries {
		w.entries[i].Result = nil
	}
}
