// Package cmd implements the shift-handover command line.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/shift-handover/config"
	"github.com/linesmerrill/shift-handover/databases"
)

// version is set at build time
var version = "dev"

// cli holds what the subcommands share
type cli struct {
	configPath string
	conf       *config.Config
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:   "shift-handover",
		Short: "Surgical department shift handover reports",
		Long: `shift-handover keeps the daily handover report of a surgical department on
this machine and turns it into a slide deck for the morning briefing.

Reports are stored per date in a local database in the user profile. Nothing
is sent anywhere else.`,
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.New(c.configPath)
			if err != nil {
				return err
			}
			c.conf = conf
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(
		c.serveCmd(),
		c.showCmd(),
		c.listCmd(),
		c.exportCmd(),
		c.backupCmd(),
	)
	return rootCmd
}

// openReports opens the local store for one-shot commands. The caller closes it.
func (c *cli) openReports() (*databases.LocalStore, databases.ReportDatabase, error) {
	store, err := databases.NewLocalStore(c.conf.Storage)
	if err != nil {
		return nil, nil, err
	}
	return store, databases.NewReportDatabase(store), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
