package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fixflow/fixflow/internal/types"
)

// Job flag names
const (
	flagJobID         = "id"
	flagCustomerID    = "customer-id"
	flagCenterID      = "center-id"
	flagDevice        = "device"
	flagIssueNotes    = "issue-notes"
	flagEstimatedCost = "estimated-cost"
	flagWithQuote     = "with-quote"
	flagJobStatus     = "status"
	flagJobPage       = "page"
	flagAmount        = "amount"
	flagNotes         = "notes"
	flagRating        = "rating"
	flagFeedback      = "feedback"
)

// jobOutput represents the filtered output for a repair job
type jobOutput struct {
	ID         uint   `json:"id"`
	Status     string `json:"status"`
	Device     string `json:"device,omitempty"`
	QuotedCost int64  `json:"quoted_cost,omitempty"`
	FinalCost  int64  `json:"final_cost,omitempty"`
	Commission int64  `json:"app_commission,omitempty"`
	Currency   string `json:"currency"`
	Created    string `json:"created_at"`
}

func printJSON(v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	fmt.Println(string(prettyJSON))
	return nil
}

// GetJobsCmd returns the jobs command tree
func GetJobsCmd() *cobra.Command {
	return jobsCmd
}

func init() {
	jobsCmd.AddCommand(createJobCmd)
	jobsCmd.AddCommand(getJobCmd)
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(transitionJobCmd)
	jobsCmd.AddCommand(confirmJobCmd)
	jobsCmd.AddCommand(quoteCmd)

	// Add flags for create
	createJobCmd.Flags().Uint(flagCustomerID, 0, "Customer ID")
	createJobCmd.Flags().Uint(flagCenterID, 0, "Repair center ID")
	createJobCmd.Flags().String(flagDevice, "", "Device description")
	createJobCmd.Flags().String(flagIssueNotes, "", "Issue description")
	createJobCmd.Flags().Int64(flagEstimatedCost, 0, "Estimated cost in cents")
	createJobCmd.Flags().Bool(flagWithQuote, false, "Start in the quote negotiation phase")
	_ = createJobCmd.MarkFlagRequired(flagCustomerID)
	_ = createJobCmd.MarkFlagRequired(flagCenterID)

	// Add flags for get
	getJobCmd.Flags().UintP(flagJobID, "i", 0, "Job ID")
	_ = getJobCmd.MarkFlagRequired(flagJobID)

	// Add flags for list
	listJobsCmd.Flags().String(flagJobStatus, "", "Filter by job status")
	listJobsCmd.Flags().Uint(flagCenterID, 0, "Filter by repair center")
	listJobsCmd.Flags().Int(flagJobPage, 1, "Page number for pagination")

	// Add flags for transition
	transitionJobCmd.Flags().UintP(flagJobID, "i", 0, "Job ID")
	transitionJobCmd.Flags().String(flagJobStatus, "", "Target job status")
	_ = transitionJobCmd.MarkFlagRequired(flagJobID)
	_ = transitionJobCmd.MarkFlagRequired(flagJobStatus)

	// Add flags for confirm
	confirmJobCmd.Flags().UintP(flagJobID, "i", 0, "Job ID")
	confirmJobCmd.Flags().Int(flagRating, 0, "Satisfaction rating (0-5)")
	confirmJobCmd.Flags().String(flagFeedback, "", "Satisfaction feedback")
	_ = confirmJobCmd.MarkFlagRequired(flagJobID)

	// Quote subcommands
	quoteCmd.AddCommand(issueQuoteCmd)
	quoteCmd.AddCommand(acceptQuoteCmd)
	quoteCmd.AddCommand(negotiateQuoteCmd)
	quoteCmd.AddCommand(rejectQuoteCmd)

	issueQuoteCmd.Flags().UintP(flagJobID, "i", 0, "Job ID")
	issueQuoteCmd.Flags().Int64(flagAmount, 0, "Quote amount in cents")
	issueQuoteCmd.Flags().String(flagNotes, "", "Quote notes")
	_ = issueQuoteCmd.MarkFlagRequired(flagJobID)
	_ = issueQuoteCmd.MarkFlagRequired(flagAmount)

	for _, cmd := range []*cobra.Command{acceptQuoteCmd, negotiateQuoteCmd, rejectQuoteCmd} {
		cmd.Flags().UintP(flagJobID, "i", 0, "Job ID")
		_ = cmd.MarkFlagRequired(flagJobID)
	}
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage repair jobs",
}

var createJobCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new repair job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		customerID, _ := cmd.Flags().GetUint(flagCustomerID)
		centerID, _ := cmd.Flags().GetUint(flagCenterID)
		device, _ := cmd.Flags().GetString(flagDevice)
		issueNotes, _ := cmd.Flags().GetString(flagIssueNotes)
		estimatedCost, _ := cmd.Flags().GetInt64(flagEstimatedCost)
		withQuote, _ := cmd.Flags().GetBool(flagWithQuote)

		job, err := apiClient.CreateJob(context.Background(), types.CreateJobRequest{
			CustomerID:    customerID,
			CenterID:      centerID,
			Device:        device,
			IssueNotes:    issueNotes,
			EstimatedCost: estimatedCost,
			WithQuote:     withQuote,
		})
		if err != nil {
			return fmt.Errorf("error creating job: %w", err)
		}
		return printJSON(job)
	},
}

var getJobCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a specific repair job by its ID",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, err := cmd.Flags().GetUint(flagJobID)
		if err != nil {
			return fmt.Errorf("error getting job ID flag: %w", err)
		}
		if jobID == 0 {
			return fmt.Errorf("job ID must be a positive number")
		}

		job, err := apiClient.GetJob(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error getting job: %w", err)
		}

		output := jobOutput{
			ID:         job.ID,
			Status:     job.Status.String(),
			Device:     job.Device,
			QuotedCost: job.QuotedCost,
			FinalCost:  job.FinalCost,
			Commission: job.AppCommission,
			Currency:   job.Currency,
			Created:    job.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		return printJSON(output)
	},
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List repair jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, _ := cmd.Flags().GetString(flagJobStatus)
		centerID, _ := cmd.Flags().GetUint(flagCenterID)
		page, _ := cmd.Flags().GetInt(flagJobPage)

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

		jobs, err := apiClient.ListJobs(context.Background(), query)
		if err != nil {
			return fmt.Errorf("error listing jobs: %w", err)
		}

		outputs := make([]jobOutput, 0, len(jobs))
		for _, job := range jobs {
			outputs = append(outputs, jobOutput{
				ID:         job.ID,
				Status:     job.Status.String(),
				Device:     job.Device,
				QuotedCost: job.QuotedCost,
				FinalCost:  job.FinalCost,
				Commission: job.AppCommission,
				Currency:   job.Currency,
				Created:    job.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return printJSON(outputs)
	},
}

var transitionJobCmd = &cobra.Command{
	Use:   "transition",
	Short: "Apply a status transition to a repair job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagJobID)
		status, _ := cmd.Flags().GetString(flagJobStatus)

		job, err := apiClient.TransitionJob(context.Background(), jobID, status)
		if err != nil {
			return fmt.Errorf("error transitioning job: %w", err)
		}
		return printJSON(job)
	},
}

var confirmJobCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Confirm device return and repair satisfaction for a returned job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagJobID)
		rating, _ := cmd.Flags().GetInt(flagRating)
		feedback, _ := cmd.Flags().GetString(flagFeedback)

		job, err := apiClient.ConfirmCompletion(context.Background(), jobID, types.ConfirmCompletionRequest{
			DeviceReturned:       true,
			RepairSatisfaction:   true,
			SatisfactionRating:   rating,
			SatisfactionFeedback: feedback,
		})
		if err != nil {
			return fmt.Errorf("error confirming completion: %w", err)
		}
		return printJSON(job)
	},
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Manage the quote negotiation phase",
}

var issueQuoteCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a quote for a repair job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagJobID)
		amount, _ := cmd.Flags().GetInt64(flagAmount)
		notes, _ := cmd.Flags().GetString(flagNotes)

		job, err := apiClient.IssueQuote(context.Background(), jobID, types.IssueQuoteRequest{
			AmountCents: amount,
			Notes:       notes,
		})
		if err != nil {
			return fmt.Errorf("error issuing quote: %w", err)
		}
		return printJSON(job)
	},
}

var acceptQuoteCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept a pending quote",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagJobID)

		job, err := apiClient.AcceptQuote(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error accepting quote: %w", err)
		}
		return printJSON(job)
	},
}

var negotiateQuoteCmd = &cobra.Command{
	Use:   "negotiate",
	Short: "Ask the repair center for a revised quote",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagJobID)

		job, err := apiClient.NegotiateQuote(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error negotiating quote: %w", err)
		}
		return printJSON(job)
	},
}

var rejectQuoteCmd = &cobra.Command{
	Use:   "reject",
	Short: "Reject a pending quote",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagJobID)

		job, err := apiClient.RejectQuote(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error rejecting quote: %w", err)
		}
		return printJSON(job)
	},
}
