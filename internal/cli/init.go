package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/catalog/internal/config"
	"github.com/mesh-intelligence/catalog/internal/render"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize catalog configuration and storage",
		Long:  "Create the configuration directory and config.yaml, then create the store tables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.store()
			if err := s.Init(cmd.Context()); err != nil {
				return a.report(err)
			}
			a.log.Info().
				Str("config", config.Path(a.configDir)).
				Str("data_dir", a.dataDir).
				Msg("catalog initialized")
			return a.out.Status(render.KindOK, "Catalog initialized.")
		},
	}
}
