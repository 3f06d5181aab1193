package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fixflow/fixflow/internal/types"
)

// Settings flag names
const (
	flagFrequency   = "frequency"
	flagThreshold   = "threshold"
	flagCurrency    = "currency"
	flagAutoProcess = "auto-process"
)

// GetSettingsCmd returns the settings command tree
func GetSettingsCmd() *cobra.Command {
	return settingsCmd
}

func init() {
	settingsCmd.AddCommand(getSettingsCmd)
	settingsCmd.AddCommand(setSettingsCmd)

	// Add flags for set
	setSettingsCmd.Flags().String(flagFrequency, "", "Payout frequency (weekly, biweekly, monthly)")
	setSettingsCmd.Flags().Int64(flagThreshold, 0, "Minimum payout threshold in cents")
	setSettingsCmd.Flags().String(flagCurrency, "", "Settlement currency (3-letter code)")
	setSettingsCmd.Flags().Bool(flagAutoProcess, false, "Automatically settle eligible records")
	_ = setSettingsCmd.MarkFlagRequired(flagFrequency)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage platform payout settings",
}

var getSettingsCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current payout settings",
	RunE: func(_ *cobra.Command, _ []string) error {
		settings, err := apiClient.GetPayoutSettings(context.Background())
		if err != nil {
			return fmt.Errorf("error getting payout settings: %w", err)
		}
		return printJSON(settings)
	},
}

var setSettingsCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the platform payout settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		frequency, _ := cmd.Flags().GetString(flagFrequency)
		threshold, _ := cmd.Flags().GetInt64(flagThreshold)
		currency, _ := cmd.Flags().GetString(flagCurrency)
		autoProcess, _ := cmd.Flags().GetBool(flagAutoProcess)

		settings, err := apiClient.UpdatePayoutSettings(context.Background(), types.UpdateSettingsRequest{
			PayoutFrequency:  frequency,
			MinimumThreshold: threshold,
			Currency:         currency,
			AutoProcess:      autoProcess,
		})
		if err != nil {
			return fmt.Errorf("error updating payout settings: %w", err)
		}
		return printJSON(settings)
	},
}
