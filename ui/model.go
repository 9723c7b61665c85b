package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/imgconvert/converter"
	"github.com/lepinkainen/imgconvert/picker"
	"github.com/lepinkainen/imgconvert/workflow"
)

type focusArea int

const (
	focusDrop focusArea = iota
	focusFormat
	focusQuality
	focusWidth
	focusHeight
	focusTable
	focusCount
)

// ModelOptions configures an UploadModel
type ModelOptions struct {
	Version      string
	OutputDir    string
	Limits       picker.Limits
	InitialPaths []string
}

// UploadModel is the interactive view over a workflow. It never mutates
// state directly: key presses become workflow events and the view is
// rendered from a fresh snapshot.
type UploadModel struct {
	wf   *workflow.Workflow
	conv converter.Converter
	opts ModelOptions

	ctx    context.Context
	cancel context.CancelFunc

	// UI components
	dropInput    textinput.Model
	qualityInput textinput.Model
	widthInput   textinput.Model
	heightInput  textinput.Model
	table        table.Model
	spinner      spinner.Model
	savings      progress.Model

	focus  focusArea
	status string

	// Layout
	width  int
	height int

	quitting bool
}

// NewUploadModel creates a view bound to wf that submits through conv
func NewUploadModel(wf *workflow.Workflow, conv converter.Converter, opts ModelOptions) UploadModel {
	ctx, cancel := context.WithCancel(context.Background())
	snap := wf.Snapshot()

	drop := textinput.New()
	drop.Placeholder = "Drag 'n' drop some files here, or type paths and press enter"
	drop.Prompt = "⤓ "
	drop.Width = 60
	drop.Focus()

	quality := newOptionInput(snap.Options.Quality, 3)
	width := newOptionInput(snap.Options.Width, 6)
	height := newOptionInput(snap.Options.Height, 6)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "S. No.", Width: 6},
			{Title: "File name", Width: 28},
			{Title: "Original file size", Width: 18},
			{Title: "Converted (approx.)", Width: 19},
			{Title: "Remarks", Width: 40},
		}),
		table.WithHeight(8),
	)

	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ProcessingStyle))

	if opts.Limits.MaxFiles == 0 {
		opts.Limits = picker.DefaultLimits()
	}

	m := UploadModel{
		wf:           wf,
		conv:         conv,
		opts:         opts,
		ctx:          ctx,
		cancel:       cancel,
		dropInput:    drop,
		qualityInput: quality,
		widthInput:   width,
		heightInput:  height,
		table:        t,
		spinner:      spin,
		savings:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
	m.refreshRows()
	return m
}

func newOptionInput(value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = limit
	in.Width = limit + 1
	in.SetValue(value)
	return in
}

// Init implements tea.Model
func (m UploadModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if len(m.opts.InitialPaths) > 0 {
		paths := m.opts.InitialPaths
		cmds = append(cmds, func() tea.Msg { return DropPathsMsg{Paths: paths} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height/3, 4))

	case spinner.TickMsg:
		if m.wf.Snapshot().DataLoaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case DropPathsMsg:
		m.status = fmt.Sprintf("Checking %d file(s)...", len(msg.Paths))
		return m, m.classifyCmd(msg.Paths)

	case FilesDroppedMsg:
		if msg.Err != nil {
			m.status = ErrorStyle.Render(msg.Err.Error())
			return m, nil
		}
		m.wf.FilesDropped(msg.Accepted, msg.Rejected)
		m.status = fmt.Sprintf("%d accepted, %d rejected", len(msg.Accepted), len(msg.Rejected))
		m.refreshRows()

	case SubmitResultMsg:
		m.status = ""
		if err := m.wf.CompleteSubmit(msg.Ticket, msg.Results, msg.Err); err == nil && m.wf.Snapshot().HasResults() {
			m.status = SuccessStyle.Render(fmt.Sprintf("✅ Converted %d file(s)", len(msg.Results)))
		}
		m.refreshRows()

	case DownloadedMsg:
		if msg.Err != nil {
			m.status = ErrorStyle.Render("❌ " + msg.Err.Error())
		} else {
			m.status = SuccessStyle.Render("✅ Saved " + msg.Download.Path)
		}
	}

	return m, nil
}

func (m UploadModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancel()
		m.quitting = true
		return m, tea.Quit
	}

	// The loader blocks all interaction while a request is in flight
	if !m.wf.Snapshot().DataLoaded {
		return m, nil
	}

	switch msg.String() {
	case "tab":
		return m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "ctrl+s":
		return m.submit()
	}

	switch m.focus {
	case focusDrop:
		return m.handleDropKey(msg)
	case focusFormat:
		return m.handleFormatKey(msg)
	case focusQuality:
		return m.handleOptionKey(msg, workflow.FieldQuality)
	case focusWidth:
		return m.handleOptionKey(msg, workflow.FieldWidth)
	case focusHeight:
		return m.handleOptionKey(msg, workflow.FieldHeight)
	case focusTable:
		return m.handleTableKey(msg)
	}
	return m, nil
}

func (m UploadModel) setFocus(f focusArea) (tea.Model, tea.Cmd) {
	m.focus = f
	m.dropInput.Blur()
	m.qualityInput.Blur()
	m.widthInput.Blur()
	m.heightInput.Blur()
	m.table.Blur()

	var cmd tea.Cmd
	switch f {
	case focusDrop:
		cmd = m.dropInput.Focus()
	case focusQuality:
		cmd = m.qualityInput.Focus()
	case focusWidth:
		cmd = m.widthInput.Focus()
	case focusHeight:
		cmd = m.heightInput.Focus()
	case focusTable:
		m.table.Focus()
	}
	return m, cmd
}

func (m UploadModel) handleDropKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		paths := picker.SplitDropped(m.dropInput.Value())
		m.dropInput.SetValue("")
		if len(paths) == 0 {
			return m, nil
		}
		return m, func() tea.Msg { return DropPathsMsg{Paths: paths} }
	}

	var cmd tea.Cmd
	m.dropInput, cmd = m.dropInput.Update(msg)
	return m, cmd
}

func (m UploadModel) handleFormatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := 0
	switch msg.String() {
	case "right", "l", " ":
		step = 1
	case "left", "h":
		step = len(converter.Formats) - 1
	case "q":
		return m.quit()
	default:
		return m, nil
	}

	current := m.wf.Snapshot().Options.Format
	idx := 0
	for i, f := range converter.Formats {
		if f == current {
			idx = i
		}
	}
	next := converter.Formats[(idx+step)%len(converter.Formats)]
	if err := m.wf.SetOption(workflow.FieldFormat, string(next)); err != nil {
		m.status = ErrorStyle.Render(err.Error())
	}
	return m, nil
}

func (m UploadModel) handleOptionKey(msg tea.KeyMsg, field string) (tea.Model, tea.Cmd) {
	input := m.optionInput(field)

	var cmd tea.Cmd
	*input, cmd = input.Update(msg)

	value := input.Value()
	if field == workflow.FieldQuality {
		value = clampQuality(value)
	} else {
		value = digitsOnly(value)
	}
	if value != input.Value() {
		input.SetValue(value)
	}

	if err := m.wf.SetOption(field, value); err != nil {
		m.status = ErrorStyle.Render(err.Error())
	}
	return m, cmd
}

func (m *UploadModel) optionInput(field string) *textinput.Model {
	switch field {
	case workflow.FieldWidth:
		return &m.widthInput
	case workflow.FieldHeight:
		return &m.heightInput
	default:
		return &m.qualityInput
	}
}

func (m UploadModel) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.wf.Snapshot()
	row := m.table.Cursor()

	switch msg.String() {
	case "q":
		return m.quit()

	case "d":
		if row < 0 || row >= len(snap.Entries) || !snap.HasResults() {
			return m, nil
		}
		return m, m.downloadCmd(row)

	case "z":
		if !snap.CanDownloadZip() {
			return m, nil
		}
		return m, m.downloadZipCmd()

	case "x", "delete", "backspace":
		kind, index := workflow.Accepted, row
		if row >= len(snap.Entries) {
			kind, index = workflow.Rejected, row-len(snap.Entries)
		}
		if err := m.wf.RemoveFile(index, kind); err != nil {
			m.status = ErrorStyle.Render(err.Error())
			return m, nil
		}
		m.refreshRows()
		if total := len(m.table.Rows()); m.table.Cursor() >= total && total > 0 {
			m.table.SetCursor(total - 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m UploadModel) submit() (tea.Model, tea.Cmd) {
	if !m.wf.Snapshot().CanSubmit() {
		return m, nil
	}

	ticket, req, err := m.wf.BeginSubmit()
	if err != nil {
		m.status = ErrorStyle.Render(err.Error())
		return m, nil
	}
	m.status = ""

	conv, ctx := m.conv, m.ctx
	convert := func() tea.Msg {
		results, err := conv.Convert(ctx, req)
		return SubmitResultMsg{Ticket: ticket, Results: results, Err: err}
	}
	return m, tea.Batch(m.spinner.Tick, convert)
}

func (m UploadModel) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.quitting = true
	return m, tea.Quit
}

func (m UploadModel) classifyCmd(paths []string) tea.Cmd {
	ctx, limits := m.ctx, m.opts.Limits
	return func() tea.Msg {
		expanded, err := picker.ExpandPaths(paths)
		if err != nil {
			return FilesDroppedMsg{Err: err}
		}
		accepted, rejected := picker.Classify(ctx, expanded, limits)
		return FilesDroppedMsg{Accepted: accepted, Rejected: rejected}
	}
}

func (m UploadModel) downloadCmd(index int) tea.Cmd {
	wf, dir := m.wf, m.opts.OutputDir
	return func() tea.Msg {
		dl, err := wf.DownloadOne(index, dir)
		return DownloadedMsg{Download: dl, Err: err}
	}
}

func (m UploadModel) downloadZipCmd() tea.Cmd {
	wf, dir := m.wf, m.opts.OutputDir
	return func() tea.Msg {
		dl, err := wf.DownloadAllAsZip(dir)
		return DownloadedMsg{Download: dl, Archive: true, Err: err}
	}
}

// View implements tea.Model
func (m UploadModel) View() string {
	if m.quitting {
		return ""
	}

	snap := m.wf.Snapshot()
	var b strings.Builder

	header := "Convert Images 2 " + snap.Options.Format.Label()
	if m.opts.Version != "" {
		header += " " + DimStyle.Render(m.opts.Version)
	}
	b.WriteString(HeaderStyle.Render(header) + "\n")

	zone := DropZoneStyle
	if m.focus == focusDrop {
		zone = FocusedDropZoneStyle
	}
	b.WriteString(zone.Render(m.dropInput.View()+"\n"+DimStyle.Render("(Only images will be accepted)")) + "\n\n")

	b.WriteString(m.optionsLine(snap.Options) + "\n")

	if snap.Error != "" {
		b.WriteString(ErrorStyle.Render(snap.Error) + "\n")
	}

	if len(snap.Entries)+len(snap.Rejected) > 0 {
		b.WriteString("\n" + m.table.View() + "\n")
	}

	if ratio, ok := savingsRatio(snap); ok {
		b.WriteString(InfoStyle.Render("Size after conversion ") + m.savings.ViewAs(ratio) + "\n")
	}

	if !snap.DataLoaded {
		b.WriteString("\n" + m.spinner.View() + ProcessingStyle.Render(" Converting...") + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	b.WriteString("\n" + DimStyle.Render(m.helpLine(snap)))
	return b.String()
}

func (m UploadModel) optionsLine(opts converter.Options) string {
	label := func(f focusArea, text string) string {
		if m.focus == f {
			return FocusedLabelStyle.Render(text)
		}
		return text
	}

	formats := make([]string, len(converter.Formats))
	for i, f := range converter.Formats {
		name := f.Label()
		if f == opts.Format {
			name = "[" + name + "]"
		}
		formats[i] = name
	}

	return strings.Join([]string{
		label(focusFormat, "Format:") + " " + strings.Join(formats, " "),
		label(focusQuality, "Quality:") + " " + m.qualityInput.View(),
		label(focusWidth, "Width:") + " " + m.widthInput.View(),
		label(focusHeight, "Height:") + " " + m.heightInput.View(),
	}, "  ")
}

func (m UploadModel) helpLine(snap workflow.Snapshot) string {
	hints := []string{"tab: next field"}
	if snap.CanSubmit() {
		hints = append(hints, "ctrl+s: submit")
	}
	if m.focus == focusTable {
		hints = append(hints, "x: remove")
		if snap.HasResults() {
			hints = append(hints, "d: download")
		}
		if snap.CanDownloadZip() {
			hints = append(hints, "z: download all as zip")
		}
	}
	hints = append(hints, "ctrl+c: quit")
	return strings.Join(hints, " • ")
}

// savingsRatio compares converted kb against original kb for the current results
func savingsRatio(snap workflow.Snapshot) (float64, bool) {
	data := snap.ConvertedData()
	if data == nil {
		return 0, false
	}
	var before, after float64
	for i, e := range snap.Entries {
		before += float64(e.File.Size) / 1024
		after += data[i].Size
	}
	if before <= 0 {
		return 0, false
	}
	return min(after/before, 1), true
}

// refreshRows rebuilds the table from the workflow snapshot
func (m *UploadModel) refreshRows() {
	m.table.SetRows(buildRows(m.wf.Snapshot()))
}

func buildRows(snap workflow.Snapshot) []table.Row {
	rows := make([]table.Row, 0, len(snap.Entries)+len(snap.Rejected))
	for i, e := range snap.Entries {
		converted := "N/A"
		if e.Result != nil {
			converted = FormatConvertedSize(e.Result.Size)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			e.File.Name,
			FormatSize(e.File.Size),
			converted,
			e.File.Remarks,
		})
	}
	for j, r := range snap.Rejected {
		messages := make([]string, len(r.Errors))
		for k, e := range r.Errors {
			messages[k] = e.Message
		}
		rows = append(rows, table.Row{
			strconv.Itoa(len(snap.Entries) + j + 1),
			r.File.Name,
			FormatSize(r.File.Size),
			"N/A",
			"✗ " + strings.Join(messages, "; "),
		})
	}
	return rows
}

// FormatSize renders a byte count the way the file table shows it
func FormatSize(bytes int64) string {
	return fmt.Sprintf("%.2f kb", float64(bytes)/1024)
}

// FormatConvertedSize renders the service's approximate kb figure
func FormatConvertedSize(kb float64) string {
	return strconv.FormatFloat(kb, 'f', -1, 64) + " kb"
}

func clampQuality(value string) string {
	value = digitsOnly(value)
	if value == "" {
		return ""
	}
	n, err := strconv.Atoi(value)
	if err != nil || n > 100 {
		return "100"
	}
	return strconv.Itoa(n)
}

func digitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}
