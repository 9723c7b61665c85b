package ui

import (
	"github.com/lepinkainen/imgconvert/converter"
	"github.com/lepinkainen/imgconvert/picker"
	"github.com/lepinkainen/imgconvert/workflow"
)

// TUI Message Types for the upload workflow

// DropPathsMsg asks the model to classify freshly dropped paths
type DropPathsMsg struct {
	Paths []string
}

// FilesDroppedMsg carries the picker's verdict for a drop
type FilesDroppedMsg struct {
	Accepted []picker.PendingFile
	Rejected []picker.RejectedFile
	Err      error
}

// SubmitResultMsg is the outcome of one conversion request
type SubmitResultMsg struct {
	Ticket  workflow.Ticket
	Results []converter.Result
	Err     error
}

// DownloadedMsg reports a finished save
type DownloadedMsg struct {
	Download workflow.Download
	Archive  bool
	Err      error
}
