package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zeusync/psyche/internal/config"
)

// NewRootCmd builds the psyche command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "psyche",
		Short:         "Run the psychological state engine of a simulated character",
		Long:          "psyche drives a memory store, a virtue ledger, value inference and a happiness aggregator for one character session.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// a .env file is optional; real environment variables still win
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringP("config", "c", "", "path to a YAML config file (default "+config.DefaultPath+" if present)")
	root.PersistentFlags().String("log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newDefaultsCmd())
	root.AddCommand(versionCmd)
	return root
}

// loadConfig applies the --config and --log-level flags on top of the
// defaults and environment. A file named by --config must exist.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		path, _ := cmd.Flags().GetString("config")
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOptional(config.DefaultPath)
	}
	if err != nil {
		return config.Config{}, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func Execute() error {
	return NewRootCmd().Execute()
}
