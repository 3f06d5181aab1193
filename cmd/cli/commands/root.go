package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fixflow/fixflow/internal/api/v1/routes"
	"github.com/fixflow/fixflow/internal/constants"
	"github.com/fixflow/fixflow/pkg/api/v1/client"
)

// flag names
const (
	flagServerAddress = "server-address"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
)

// initClient initializes the API client
func initClient() error {
	var err error
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress

	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	// Set a basic default for the flag. PersistentPreRunE will handle env var override.
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL,
		fmt.Sprintf("Address of the FixFlow API server (env: %s)", constants.EnvServerAddress))

	RootCmd.AddCommand(GetJobsCmd())
	RootCmd.AddCommand(GetPayoutsCmd())
	RootCmd.AddCommand(GetSettingsCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "fixflow",
	Short: "FixFlow CLI - A command line interface for the FixFlow API",
	Long:  `FixFlow CLI is a command line tool for managing repair jobs and payout settlement through the FixFlow API.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Check if the server address flag was explicitly set by the user.
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(constants.EnvServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}

		// Now serverAddress has the correct precedence: Flag > Env Var > Default
		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return initClient()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
