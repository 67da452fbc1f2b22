package options

import (
	"github.com/spf13/cobra"
)

// IDOptions
type IDOptions struct {
	ShowID bool
}

func AddShowIDArgs(cmd *cobra.Command, io *IDOptions) {
	cmd.Flags().BoolVar(&io.ShowID, "id", false,
		"Show snapshot ids.")
}
