// cmd/artifacts.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/observability"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/screenshot"
)

func newCleanupCmd() *cobra.Command {
	var days int

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Deletes screenshots older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			capt := screenshot.New(cfg.Report().Dir, cfg.Screenshots().Dir, observability.GetLogger())
			if !cmd.Flags().Changed("days") {
				days = cfg.Screenshots().RetentionDays
				// Same reading as the run hook: no retention window keeps everything.
				if days <= 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Screenshot retention is disabled, nothing removed from %s (use --days to prune)\n", capt.Root())
					return nil
				}
			}
			n, err := capt.CleanupOld(days)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d screenshot(s) older than %d day(s) from %s\n", n, days, capt.Root())
			return nil
		},
	}
	cleanupCmd.Flags().IntVar(&days, "days", 0, "days to keep (default is screenshots.retention_days)")
	return cleanupCmd
}

func newCompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compress",
		Short: "Re-encodes stored screenshots at maximum PNG compression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			logger := observability.GetLogger()
			capt := screenshot.New(cfg.Report().Dir, cfg.Screenshots().Dir, logger)
			res, err := capt.Compress()
			if err != nil {
				return fmt.Errorf("compress failed: %w", err)
			}
			if res.Failed > 0 {
				logger.Warn("Some screenshots could not be compressed.", zap.Int("failed", res.Failed))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d, rewrote %d, failed %d, saved %d bytes\n",
				res.Scanned, res.Rewritten, res.Failed, res.BytesSaved)
			return nil
		},
	}
}
