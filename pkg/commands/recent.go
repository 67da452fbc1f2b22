package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/docura/pkg/commands/options"
	"tableflip.dev/docura/pkg/runner/recent"
	"tableflip.dev/docura/pkg/store"
)

func addRecent(topLevel *cobra.Command) {
	clear := false
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened files and folders.",
		Example: `
docura recent
docura recent --json
docura recent --clear
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := store.Load(nil)
			if err != nil {
				return err
			}
			r := recent.Recent{
				Clear:       clear,
				Persistence: p,
			}
			if oo.JSON {
				r.Output = "json"
			}
			return oo.HandleError(r.Do(context.Background()))
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the recent list.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
