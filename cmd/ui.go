package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/imgconvert/types"
	"github.com/lepinkainen/imgconvert/ui"
	"github.com/lepinkainen/imgconvert/workflow"
)

type UICmd struct {
	Paths []string `arg:"" optional:"" name:"paths" help:"Image files or directories to load on start" type:"path"`
}

func (cmd *UICmd) Run(appCtx *types.AppContext) error {
	version, cfg, logger := resolve(appCtx)

	// Without a terminal there is nothing to draw on
	if !isTerminal(os.Stdout) {
		if len(cmd.Paths) == 0 {
			return fmt.Errorf("stdout is not a terminal and no paths were given")
		}
		logger.Info("stdout is not a terminal, running one-shot conversion")
		convert := &ConvertCmd{Paths: cmd.Paths}
		return convert.Run(appCtx)
	}

	conv, err := newConverter(cfg, logger, false)
	if err != nil {
		return err
	}

	wf := workflow.New(cfg.Options(), logger)
	model := ui.NewUploadModel(wf, conv, ui.ModelOptions{
		Version:      version,
		OutputDir:    cfg.OutputDir,
		Limits:       cfg.Limits(),
		InitialPaths: cmd.Paths,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
