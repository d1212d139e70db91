package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/shift-handover/export"
)

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <date>",
		Short: "Print the report of a date as JSON",
		Long: `Print the stored report of a date (YYYY-MM-DD) as JSON. A date without a
saved report prints the empty report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, reports, err := c.openReports()
			if err != nil {
				return err
			}
			defer store.Close()

			r := reports.Load(commandContext(cmd), args[0])
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the dates that have a saved report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, reports, err := c.openReports()
			if err != nil {
				return err
			}
			defer store.Close()

			dates, err := reports.Dates(commandContext(cmd))
			if err != nil {
				return err
			}
			for _, d := range dates {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		outDir string
		prompt bool
	)
	cmd := &cobra.Command{
		Use:   "export <date>",
		Short: "Export the report of a date as a .pptx slide deck",
		Long: `Export the stored report of a date as a slide deck named DD-MM-YYYY.pptx.

Examples:
  # Write to the default download folder
  shift-handover export 2024-06-01

  # Choose where to save; q cancels
  shift-handover export 2024-06-01 --prompt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = c.conf.Export.Dir
			}
			store, reports, err := c.openReports()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := commandContext(cmd)
			var dest export.Destination = export.DirectoryDestination{Dir: outDir}
			if prompt {
				dest = export.FallbackDestination{
					Primary:  export.PromptDestination{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Dir: outDir},
					Fallback: dest,
				}
			}

			res, err := export.NewExporter(c.conf.Export).Export(ctx, reports.Load(ctx, args[0]), dest)
			if err != nil {
				return err
			}
			if res.Cancelled {
				fmt.Fprintln(cmd.OutOrStdout(), "export cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d slides, %d bytes)\n", res.Location, res.Slides, res.Bytes)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "folder to write the deck to (default export.dir)")
	cmd.Flags().BoolVar(&prompt, "prompt", false, "ask where to save the deck")
	return cmd
}
