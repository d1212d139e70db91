package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/shift-handover/api/scheduler"
)

func (c *cli) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the report store to the backup folder now",
		Long: `Copy the report store to backup.dir and prune copies beyond backup.keep.
This is the job serve runs on backup.schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := c.openReports()
			if err != nil {
				return err
			}
			defer store.Close()

			dst, err := scheduler.NewScheduler(store, c.conf.Backup).Backup(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dst)
			return nil
		},
	}
}
