package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gatekeeper/internal/config"
	"gatekeeper/internal/notify"
)

func newTestNotifyCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to the configured endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(cfg.Notifications.Endpoint) == "" {
				fmt.Fprintln(out, "No notification endpoint configured; nothing sent")
				return nil
			}

			service := notify.NewService(cfg)
			testRefid := strings.Repeat("0", 32)
			if err := service.NotifySuccess(cmd.Context(), "audio", testRefid, testRefid+".tar"); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
