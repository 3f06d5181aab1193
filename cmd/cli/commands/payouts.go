package commands

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fixflow/fixflow/internal/types"
)

// Payout flag names
const (
	flagPayoutID     = "id"
	flagPayoutStatus = "status"
	flagPayoutPage   = "page"
	flagGross        = "gross"
	flagPaymentRef   = "payment-reference"
	flagReference    = "reference"
	flagMethod       = "method"
	flagReason       = "reason"
	flagPayoutIDs    = "ids"
)

// GetPayoutsCmd returns the payouts command tree
func GetPayoutsCmd() *cobra.Command {
	return payoutsCmd
}

func init() {
	payoutsCmd.AddCommand(materializePayoutCmd)
	payoutsCmd.AddCommand(getPayoutCmd)
	payoutsCmd.AddCommand(listPayoutsCmd)
	payoutsCmd.AddCommand(listEligibleCmd)
	payoutsCmd.AddCommand(payoutSummaryCmd)
	payoutsCmd.AddCommand(disputePayoutCmd)
	payoutsCmd.AddCommand(resolveDisputeCmd)
	payoutsCmd.AddCommand(processPayoutCmd)
	payoutsCmd.AddCommand(runBatchCmd)
	payoutsCmd.AddCommand(resetPayoutCmd)

	// Add flags for materialize
	materializePayoutCmd.Flags().Uint(flagJobID, 0, "Repair job ID")
	materializePayoutCmd.Flags().Int64(flagGross, 0, "Gross amount in cents")
	materializePayoutCmd.Flags().String(flagPaymentRef, "", "Customer payment reference")
	_ = materializePayoutCmd.MarkFlagRequired(flagJobID)
	_ = materializePayoutCmd.MarkFlagRequired(flagGross)
	_ = materializePayoutCmd.MarkFlagRequired(flagPaymentRef)

	// Add flags for get
	getPayoutCmd.Flags().UintP(flagPayoutID, "i", 0, "Payout record ID")
	_ = getPayoutCmd.MarkFlagRequired(flagPayoutID)

	// Add flags for list
	listPayoutsCmd.Flags().String(flagPayoutStatus, "", "Filter by payout status")
	listPayoutsCmd.Flags().Uint(flagCenterID, 0, "Filter by repair center")
	listPayoutsCmd.Flags().Int(flagPayoutPage, 1, "Page number for pagination")

	// Add flags for dispute
	disputePayoutCmd.Flags().UintP(flagPayoutID, "i", 0, "Payout record ID")
	disputePayoutCmd.Flags().String(flagReason, "", "Dispute reason")
	disputePayoutCmd.Flags().String(flagNotes, "", "Dispute notes")
	_ = disputePayoutCmd.MarkFlagRequired(flagPayoutID)
	_ = disputePayoutCmd.MarkFlagRequired(flagReason)

	// Add flags for resolve
	resolveDisputeCmd.Flags().UintP(flagPayoutID, "i", 0, "Payout record ID")
	resolveDisputeCmd.Flags().String(flagNotes, "", "Resolution notes")
	_ = resolveDisputeCmd.MarkFlagRequired(flagPayoutID)

	// Add flags for process
	processPayoutCmd.Flags().UintP(flagPayoutID, "i", 0, "Payout record ID")
	processPayoutCmd.Flags().String(flagReference, "", "Settlement reference")
	processPayoutCmd.Flags().String(flagMethod, "", "Disbursement method (bank_transfer, manual)")
	processPayoutCmd.Flags().String(flagNotes, "", "Settlement notes")
	_ = processPayoutCmd.MarkFlagRequired(flagPayoutID)
	_ = processPayoutCmd.MarkFlagRequired(flagReference)

	// Add flags for run
	runBatchCmd.Flags().UintSlice(flagPayoutIDs, nil, "Payout record IDs (defaults to all eligible pending records)")
	runBatchCmd.Flags().String(flagReference, "", "Settlement reference for the batch (generated when omitted)")
	runBatchCmd.Flags().String(flagMethod, "", "Disbursement method (bank_transfer, manual)")
	runBatchCmd.Flags().String(flagNotes, "", "Settlement notes")

	// Add flags for reset
	resetPayoutCmd.Flags().UintP(flagPayoutID, "i", 0, "Payout record ID")
	_ = resetPayoutCmd.MarkFlagRequired(flagPayoutID)
}

var payoutsCmd = &cobra.Command{
	Use:   "payouts",
	Short: "Manage the payout ledger and batch settlement",
}

var materializePayoutCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Derive the payout record for a paid repair job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagJobID)
		gross, _ := cmd.Flags().GetInt64(flagGross)
		paymentRef, _ := cmd.Flags().GetString(flagPaymentRef)

		record, err := apiClient.MaterializePayout(context.Background(), types.MaterializePayoutRequest{
			JobID:            jobID,
			GrossCents:       gross,
			PaymentReference: paymentRef,
		})
		if err != nil {
			return fmt.Errorf("error materializing payout: %w", err)
		}
		return printJSON(record)
	},
}

var getPayoutCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a specific payout record by its ID",
	RunE: func(cmd *cobra.Command, _ []string) error {
		payoutID, _ := cmd.Flags().GetUint(flagPayoutID)
		if payoutID == 0 {
			return fmt.Errorf("payout ID must be a positive number")
		}

		record, err := apiClient.GetPayout(context.Background(), payoutID)
		if err != nil {
			return fmt.Errorf("error getting payout: %w", err)
		}
		return printJSON(record)
	},
}

var listPayoutsCmd = &cobra.Command{
	Use:   "list",
	Short: "List payout records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, _ := cmd.Flags().GetString(flagPayoutStatus)
		centerID, _ := cmd.Flags().GetUint(flagCenterID)
		page, _ := cmd.Flags().GetInt(flagPayoutPage)

		query := url.Values{}
		if status != "" {
			query.Set("status", status)
		}
		if centerID > 0 {
			query.Set("center_id", strconv.FormatUint(uint64(centerID), 10))
		}
		if page > 1 {
			query.Set("page", strconv.Itoa(page))
		}

		records, err := apiClient.ListPayouts(context.Background(), query)
		if err != nil {
			return fmt.Errorf("error listing payouts: %w", err)
		}
		return printJSON(records)
	},
}

var listEligibleCmd = &cobra.Command{
	Use:   "eligible",
	Short: "List pending records that currently qualify for settlement",
	RunE: func(_ *cobra.Command, _ []string) error {
		records, err := apiClient.ListEligiblePayouts(context.Background())
		if err != nil {
			return fmt.Errorf("error listing eligible payouts: %w", err)
		}
		return printJSON(records)
	},
}

var payoutSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the aggregate pending payout position per repair center",
	RunE: func(_ *cobra.Command, _ []string) error {
		summaries, err := apiClient.PayoutSummary(context.Background())
		if err != nil {
			return fmt.Errorf("error getting payout summary: %w", err)
		}
		return printJSON(summaries)
	},
}

var disputePayoutCmd = &cobra.Command{
	Use:   "dispute",
	Short: "Flag a payout record as disputed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		payoutID, _ := cmd.Flags().GetUint(flagPayoutID)
		reason, _ := cmd.Flags().GetString(flagReason)
		notes, _ := cmd.Flags().GetString(flagNotes)

		record, err := apiClient.RaiseDispute(context.Background(), payoutID, types.DisputeRequest{
			Reason: reason,
			Notes:  notes,
		})
		if err != nil {
			return fmt.Errorf("error raising dispute: %w", err)
		}
		return printJSON(record)
	},
}

var resolveDisputeCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a dispute after review",
	RunE: func(cmd *cobra.Command, _ []string) error {
		payoutID, _ := cmd.Flags().GetUint(flagPayoutID)
		notes, _ := cmd.Flags().GetString(flagNotes)

		record, err := apiClient.ResolveDispute(context.Background(), payoutID, types.ResolveDisputeRequest{
			Notes: notes,
		})
		if err != nil {
			return fmt.Errorf("error resolving dispute: %w", err)
		}
		return printJSON(record)
	},
}

var processPayoutCmd = &cobra.Command{
	Use:   "process",
	Short: "Settle a single payout record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		payoutID, _ := cmd.Flags().GetUint(flagPayoutID)
		reference, _ := cmd.Flags().GetString(flagReference)
		method, _ := cmd.Flags().GetString(flagMethod)
		notes, _ := cmd.Flags().GetString(flagNotes)

		record, err := apiClient.ProcessPayout(context.Background(), payoutID, types.ProcessPayoutRequest{
			Reference: reference,
			Method:    method,
			Notes:     notes,
		})
		if err != nil {
			return fmt.Errorf("error processing payout: %w", err)
		}
		return printJSON(record)
	},
}

var runBatchCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a settlement batch over pending payout records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ids, _ := cmd.Flags().GetUintSlice(flagPayoutIDs)
		reference, _ := cmd.Flags().GetString(flagReference)
		method, _ := cmd.Flags().GetString(flagMethod)
		notes, _ := cmd.Flags().GetString(flagNotes)

		ctx := context.Background()

		// Without explicit IDs the run sweeps every pending record that
		// currently qualifies, gated on the auto-process setting
		if len(ids) == 0 {
			settings, err := apiClient.GetPayoutSettings(ctx)
			if err != nil {
				return fmt.Errorf("error getting payout settings: %w", err)
			}
			if !settings.AutoProcess {
				fmt.Println("Auto-process is disabled; pass --ids to settle specific records")
				return nil
			}

			records, err := apiClient.ListEligiblePayouts(ctx)
			if err != nil {
				return fmt.Errorf("error listing eligible payouts: %w", err)
			}
			for _, record := range records {
				ids = append(ids, record.ID)
			}
		}
		if len(ids) == 0 {
			fmt.Println("No pending payout records to settle")
			return nil
		}

		result, err := apiClient.ProcessBatch(ctx, types.ProcessBatchRequest{
			PayoutIDs: ids,
			Reference: reference,
			Method:    method,
			Notes:     notes,
		})
		if err != nil {
			return fmt.Errorf("error processing batch: %w", err)
		}
		return printJSON(result)
	},
}

var resetPayoutCmd = &cobra.Command{
	Use:   "reset",
	Short: "Move a failed payout record back to pending",
	RunE: func(cmd *cobra.Command, _ []string) error {
		payoutID, _ := cmd.Flags().GetUint(flagPayoutID)

		record, err := apiClient.ResetPayout(context.Background(), payoutID)
		if err != nil {
			return fmt.Errorf("error resetting payout: %w", err)
		}
		return printJSON(record)
	},
}
