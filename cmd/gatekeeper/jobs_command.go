package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gatekeeper/internal/config"
	"gatekeeper/internal/ledger"
)

func newJobsCommand(configFlag *string) *cobra.Command {
	var limit int
	var refidFlag string
	var plain bool

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recorded validation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var runs []ledger.Run
			if refidFlag != "" {
				runs, err = store.ForRefid(cmd.Context(), refidFlag)
			} else {
				runs, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No recorded runs")
				return nil
			}

			headers := []string{"FINISHED", "REFID", "FORMAT", "OUTCOME", "ERROR"}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.FinishedAt.Local().Format(time.DateTime),
					run.Refid,
					run.Format,
					run.Outcome,
					run.ErrorKind,
				})
			}

			if plain || !stdoutIsTerminal() {
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
				return nil
			}
			fmt.Fprintln(out, renderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&refidFlag, "refid", "", "List every run for one refid")
	cmd.Flags().BoolVar(&plain, "plain", false, "Tab-separated output without table framing")
	return cmd
}
