package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gatekeeper/internal/config"
	"gatekeeper/internal/ledger"
	"gatekeeper/internal/logging"
	"gatekeeper/internal/structure"
	"gatekeeper/internal/validator"
)

func newValidateCommand(configFlag *string) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "validate <source-filename>",
		Short: "Validate one package and relocate it for QC",
		Long: `Validate downloads the named package archive from the source bucket,
verifies its packaging, structure, and file formats, and relocates the
payload to the QC destination. The outcome is published as a notification
and recorded in the run ledger either way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			format, err := structure.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := validator.New(cfg, validator.Job{
				Format:         format,
				SourceFilename: args[0],
			}, logger, validator.WithLedger(store))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result := v.Run(ctx)
			if result.Err != nil {
				return fmt.Errorf("package %s failed validation: %w", result.Refid, result.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Package %s validated in %s\n",
				result.Refid, result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Package format: audio or video")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}
