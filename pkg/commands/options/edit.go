package options

import (
	"github.com/spf13/cobra"
)

// EditOptions carries per-invocation overrides for the editor.
type EditOptions struct {
	Theme      string
	NoAutoSave bool
}

func AddEditArgs(cmd *cobra.Command, eo *EditOptions) {
	cmd.Flags().StringVar(&eo.Theme, "theme", "",
		"Override the configured theme ('dark' or 'light').")
	cmd.Flags().BoolVar(&eo.NoAutoSave, "no-autosave", false,
		"Disable debounced autosave for this session.")
}
