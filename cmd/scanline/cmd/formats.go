package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/scanline/internal/detect"
	"github.com/MeKo-Tech/scanline/internal/symbology"
)

// formatsCmd lists the symbologies the configured decoder backend supports.
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported barcode symbologies",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		machine, _ := cmd.Flags().GetBool("machine")

		det, err := detect.New(cfg.DetectConfig())
		if err != nil {
			return err
		}
		ids, err := det.Formats(cmd.Context())
		if err != nil {
			return fmt.Errorf("query supported formats: %w", err)
		}

		if machine {
			for _, id := range ids {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), symbology.FormatList(ids))
		return nil
	},
}

func init() {
	formatsCmd.Flags().Bool("machine", false, "print one machine identifier per line")
	rootCmd.AddCommand(formatsCmd)
}
