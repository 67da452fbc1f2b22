package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/docura/pkg/commands/options"
	"tableflip.dev/docura/pkg/runner/snapshots"
	"tableflip.dev/docura/pkg/store"
)

func addSnapshots(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	clear := false
	del := ""
	prune := ""

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List or prune crash-recovery snapshots.",
		Example: `
docura snapshots
docura snapshots --json
docura snapshots --id
docura snapshots --delete 1724862273125000000
docura snapshots --prune 1w
docura snapshots --clear
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := store.Load(nil)
			if err != nil {
				return err
			}
			s := snapshots.Snapshots{
				ShowID:      io.ShowID,
				Clear:       clear,
				Delete:      del,
				Prune:       prune,
				Persistence: p,
			}
			if oo.JSON {
				s.Output = "json"
			}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete every snapshot.")
	cmd.Flags().StringVar(&del, "delete", "", "Delete the snapshot with this id.")
	cmd.Flags().StringVar(&prune, "prune", "", "Delete snapshots older than a window like '1w' or '3d'.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
