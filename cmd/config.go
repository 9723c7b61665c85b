package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lepinkainen/imgconvert/config"
	"github.com/lepinkainen/imgconvert/types"
	"github.com/lepinkainen/imgconvert/ui"
)

type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a sample config file"`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration"`
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing config file"`
}

func (cmd *ConfigInitCmd) Run(appCtx *types.AppContext) error {
	path, err := configPath(appCtx)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !cmd.Force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check config %s: %w", path, err)
	}

	if err := config.CreateSample(path); err != nil {
		return err
	}
	fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("✅ Wrote sample config to %s", path)))
	return nil
}

type ConfigShowCmd struct{}

func (cmd *ConfigShowCmd) Run(appCtx *types.AppContext) error {
	_, cfg, _ := resolve(appCtx)

	if appCtx != nil && appCtx.ConfigPath != "" {
		fmt.Println(ui.InfoStyle.Render("# " + appCtx.ConfigPath))
	}
	encoded, err := cfg.Encode()
	if err != nil {
		return err
	}
	fmt.Print(encoded)
	return nil
}

func configPath(appCtx *types.AppContext) (string, error) {
	if appCtx != nil && appCtx.ConfigPath != "" {
		return appCtx.ConfigPath, nil
	}
	return config.DefaultConfigPath()
}
