package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/lepinkainen/imgconvert/converter"
	"github.com/lepinkainen/imgconvert/picker"
	"github.com/lepinkainen/imgconvert/types"
	"github.com/lepinkainen/imgconvert/ui"
	"github.com/lepinkainen/imgconvert/utils"
	"github.com/lepinkainen/imgconvert/workflow"
)

type ConvertCmd struct {
	Paths   []string `arg:"" name:"paths" help:"Image files or directories to convert" type:"path"`
	Format  string   `help:"Output format (png, webp, jpg); defaults to the config value" short:"f"`
	Quality string   `help:"Quality 0-100; defaults to the config value" short:"q"`
	Width   string   `help:"Resize width in pixels"`
	Height  string   `help:"Resize height in pixels"`
	Out     string   `help:"Directory to save converted files in; defaults to output_dir" short:"o" type:"path"`
	Zip     bool     `help:"Save all converted files as one convertedImages archive"`
}

func (cmd *ConvertCmd) Run(appCtx *types.AppContext) error {
	version, cfg, logger := resolve(appCtx)

	options, err := cmd.options(cfg.Options())
	if err != nil {
		return err
	}

	outDir := cmd.Out
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	if err := utils.ValidateOutputDir(outDir); err != nil {
		return err
	}

	conv, err := newConverter(cfg, logger, isTerminal(os.Stderr))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("Convert Images 2 %s %s", options.Format.Label(), version)))

	// Expand directories to image files
	paths, err := picker.ExpandPaths(cmd.Paths)
	if err != nil {
		return fmt.Errorf("failed to expand paths: %w", err)
	}

	accepted, rejected := picker.Classify(ctx, paths, cfg.Limits())
	for _, r := range rejected {
		fmt.Println(ui.ErrorStyle.Render(fmt.Sprintf("❌ %s: %s", r.File.Name, rejectionText(r))))
	}
	if len(accepted) == 0 {
		return workflow.ErrNoFiles
	}

	wf := workflow.New(options, logger)
	wf.FilesDropped(accepted, rejected)

	fmt.Println(ui.ProcessingStyle.Render(fmt.Sprintf("🖼️  Converting %d file(s) to %s:", len(accepted), options.Format.Label())))
	fmt.Printf("⚙️  Settings: quality=%s width=%s height=%s\n",
		orDefault(options.Quality), orDefault(options.Width), orDefault(options.Height))

	if err := wf.Submit(ctx, conv); err != nil {
		if converter.IsServiceError(err) {
			return fmt.Errorf("conversion rejected: %w", err)
		}
		return fmt.Errorf("conversion failed: %w", err)
	}

	snap := wf.Snapshot()
	for i, e := range snap.Entries {
		fmt.Printf("%2d. %s  %s → %s\n", i+1, e.File.Name, ui.FormatSize(e.File.Size), ui.FormatConvertedSize(e.Result.Size))
	}

	return cmd.save(wf, outDir)
}

// save writes every result individually, or as one archive with --zip
func (cmd *ConvertCmd) save(wf *workflow.Workflow, outDir string) error {
	snap := wf.Snapshot()

	if cmd.Zip {
		if snap.CanDownloadZip() {
			dl, err := wf.DownloadAllAsZip(outDir)
			if err != nil {
				return fmt.Errorf("failed to save archive: %w", err)
			}
			fmt.Printf("\n%s\n", ui.SuccessStyle.Render(fmt.Sprintf("🎉 Saved %s (%d bytes)", dl.Path, dl.Size)))
			return nil
		}
		fmt.Println(ui.InfoStyle.Render("ℹ️  Only one converted file, saving it directly"))
	}

	var failed int
	for i := range snap.Entries {
		dl, err := wf.DownloadOne(i, outDir)
		if err != nil {
			fmt.Println(ui.ErrorStyle.Render(fmt.Sprintf("❌ %v", err)))
			failed++
			continue
		}
		fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("✅ Saved %s", dl.Path)))
	}

	if failed > 0 {
		return fmt.Errorf("failed to save %d of %d files", failed, len(snap.Entries))
	}
	fmt.Printf("\n%s\n", ui.SuccessStyle.Render("🎉 Conversion complete!"))
	return nil
}

// options applies flag overrides on top of the configured defaults
func (cmd *ConvertCmd) options(base converter.Options) (converter.Options, error) {
	opts := base
	if cmd.Format != "" {
		format, err := converter.ParseFormat(cmd.Format)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}
	if cmd.Quality != "" {
		opts.Quality = cmd.Quality
	}
	if cmd.Width != "" {
		opts.Width = cmd.Width
	}
	if cmd.Height != "" {
		opts.Height = cmd.Height
	}
	return opts, nil
}

func rejectionText(r picker.RejectedFile) string {
	messages := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		messages[i] = e.Message
	}
	return strings.Join(messages, "; ")
}

func orDefault(value string) string {
	if value == "" {
		return "auto"
	}
	return value
}
