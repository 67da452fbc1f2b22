package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/docura/pkg/commands/options"
	"tableflip.dev/docura/pkg/runner/edit"
	"tableflip.dev/docura/pkg/store"
)

var (
	oo = &options.OutputOptions{}
)

func New() *cobra.Command {
	eo := &options.EditOptions{}

	cmd := &cobra.Command{
		Use:   "docura [folder]",
		Short: base.Wrap80("Markdown editing in the terminal."),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}
			cfg = applyOverrides(cfg, eo)
			p, err := store.Load(cfg)
			if err != nil {
				return err
			}
			e := edit.Edit{
				Folder:      strings.Join(args, " "),
				Persistence: p,
				Config:      cfg,
			}
			return e.Do(context.Background())
		},
	}
	options.AddEditArgs(cmd, eo)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addRecent(topLevel)
	addSnapshots(topLevel)
	addVersion(topLevel)
}

func applyOverrides(cfg store.Config, eo *options.EditOptions) store.Config {
	theme := cfg.Theme()
	if eo.Theme != "" {
		theme = eo.Theme
	}
	autosave := cfg.AutoSave()
	if eo.NoAutoSave {
		autosave = false
	}
	return store.StaticConfig(cfg.DataPath(), theme, autosave)
}
