package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moviepicker/internal/deps"
	"moviepicker/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools, directories and API credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := deps.CheckReel(cfg)
			toolRows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				detail := s.Detail
				if !s.Available {
					state = "missing"
					if s.Optional {
						state = "optional"
					}
				}
				toolRows = append(toolRows, []string{s.Name, s.Command, state, detail})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Tool", "Command", "Status", "Detail"}, toolRows, nil))

			results := preflight.RunAll(cmd.Context(), cfg)
			checkRows := make([][]string, 0, len(results)+2)
			failed := 0
			for _, r := range results {
				state := "ok"
				if !r.Passed {
					state = "failed"
					failed++
				}
				checkRows = append(checkRows, []string{r.Name, state, r.Detail})
			}
			checkRows = append(checkRows,
				[]string{"OMDb API key", credentialState(cfg.OMDb.APIKey), "omdb.api_key / OMDB_API_KEY"},
				[]string{"OpenAI API key", credentialState(cfg.OpenAI.APIKey), "openai.api_key / OPENAI_API_KEY"},
			)
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, checkRows, nil))

			if err := deps.MissingError(statuses); err != nil {
				return err
			}
			if failed > 0 {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func credentialState(value string) string {
	if strings.TrimSpace(value) == "" {
		return "not set"
	}
	return "set"
}
