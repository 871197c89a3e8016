package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviepicker/internal/logging"
	"moviepicker/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var contains string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the moviepicker log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return logs.Stream(cmd.Context(), logging.FilePath(cfg), logs.TailOptions{
				Lines:    lines,
				Follow:   follow,
				Contains: contains,
			}, func(line string) error {
				_, err := fmt.Fprintln(out, line)
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&contains, "grep", "", "Only lines containing this text (e.g. a reel shortcode or request id)")
	return cmd
}
