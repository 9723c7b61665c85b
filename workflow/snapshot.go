package workflow

import (
	"github.com/lepinkainen/imgconvert/converter"
	"github.com/lepinkainen/imgconvert/picker"
)

// Snapshot is a read-only copy of the workflow state for renderers
type Snapshot struct {
	Entries    []Entry
	Rejected   []picker.RejectedFile
	Options    converter.Options
	DataLoaded bool
	Error      string
	Submitting bool
}

// Snapshot copies the current state
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries := make([]Entry, len(w.entries))
	for i, e := range w.entries {
		entries[i] = Entry{File: e.File}
		if e.Result != nil {
			res := *e.Result
			entries[i].Result = &res
		}
	}

	rejected := make([]picker.RejectedFile, len(w.rejected))
	for i, r := range w.rejected {
		rejected[i] = picker.RejectedFile{
			File:   r.File,
			Errors: append([]picker.FileError(nil), r.Errors...),
		}
	}

	return Snapshot{
		Entries:    entries,
		Rejected:   rejected,
		Options:    w.options,
		DataLoaded: w.dataLoaded,
		Error:      w.errMessage,
		Submitting: w.submitting,
	}
}

// Files returns the accepted files in order
func (s Snapshot) Files() []picker.PendingFile {
	files := make([]picker.PendingFile, len(s.Entries))
	for i, e := range s.Entries {
		files[i] = e.File
	}
	return files
}

// ConvertedData returns the results in file order. It is empty unless every
// accepted file has a result.
func (s Snapshot) ConvertedData() []converter.Result {
	results := make([]converter.Result, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Result == nil {
			return nil
		}
		results = append(results, *e.Result)
	}
	return results
}

// HasResults reports whether any converted result is held
func (s Snapshot) HasResults() bool {
	for _, e := range s.Entries {
		if e.Result != nil {
			return true
		}
	}
	return false
}

// CanSubmit reports whether the submit action is available
func (s Snapshot) CanSubmit() bool {
	return len(s.Entries) > 0 && !s.Submitting
}

// CanDownloadZip reports whether the download-all action is available
func (s Snapshot) CanDownloadZip() bool {
	return s.resultCount() > 1
}

func (s Snapshot) resultCount() int {
	n := 0
	for _, e := range s.Entries {
		if e.Result != nil {
			n++
		}
	}
	return n
}
