package cli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

// Version of the binary, set at build time.
var Version string

func New(cfg *Config) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "quicksearch <command> [flags]",
		Short:         "Quick search over record collections",
		Long:          "Free-text quick search over files, postgres tables and elasticsearch indices.",
		SilenceErrors: true,
		SilenceUsage:  false,
		Example: heredoc.Doc(`
		$ quicksearch search missions.json --query "nasa apollo"
		$ quicksearch search --source postgres --table assets --query nasa
		$ quicksearch explain "nasa apollo" --target sql
		$ quicksearch config list
		`),
		Annotations: map[string]string{
			"group": "core",
			"help:learn": heredoc.Doc(`
				Use 'quicksearch <command> --help' for info about a command.
			`),
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString(configFlag)
			if cfgFile == "" {
				return nil
			}
			return LoadConfigFromFlag(cfgFile, cfg)
		},
	}

	rootCmd.AddCommand(
		searchCommand(cfg),
		explainCommand(cfg),
		configCommand(cfg),
		versionCmd(),
	)

	rootCmd.PersistentFlags().StringP(configFlag, "c", "", "Override config file")

	return rootCmd
}
