package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type SubscriptionRow struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	EndpointURL     string `json:"endpoint_url"`
	Process         string `json:"process"`
	Status          string `json:"status"`
	Active          bool   `json:"active"`
	TestMode        bool   `json:"test_mode"`
	LastTriggeredAt string `json:"last_triggered_at"`
	CreatedAt       string `json:"created_at"`
}

type SubscriptionListResponse struct {
	Subscriptions []SubscriptionRow `json:"subscriptions"`
}

type StatsRow struct {
	SubscriptionID string `json:"subscription_id"`
	Dispatches     int    `json:"dispatches"`
	Successes      int    `json:"successes"`
	SuccessRate    string `json:"success_rate"`
}

var (
	subProcess  string
	subStatus   string
	subTestMode bool
)

var subscriptionCmd = &cobra.Command{
	Use:     "subscription",
	Aliases: []string{"sub"},
	Short:   "Webhook subscription management commands",
}

var subCreateCmd = &cobra.Command{
	Use:   "create <name> <endpoint-url>",
	Short: "Create a new subscription",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var sub SubscriptionRow
		req := map[string]interface{}{
			"name":         args[0],
			"endpoint_url": args[1],
			"process":      subProcess,
			"status":       subStatus,
			"test_mode":    subTestMode,
		}
		if err := client.Post("/v1/subscriptions", req, &sub); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Subscription created.\n")
		fmt.Printf("ID: %s\n", sub.ID)
	},
}

var subListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscriptions",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp SubscriptionListResponse
		if err := client.Get("/v1/subscriptions", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Subscriptions)
	},
}

var subGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get subscription details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var sub SubscriptionRow
		if err := client.Get("/v1/subscriptions/"+args[0], &sub); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(sub)
	},
}

var subDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate a subscription",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var sub SubscriptionRow
		if err := client.Delete("/v1/subscriptions/"+args[0], &sub); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Subscription %s deactivated.\n", sub.ID)
	},
}

var subActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Activate a subscription (including after a breaker trip)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var sub SubscriptionRow
		if err := client.Post("/v1/subscriptions/"+args[0]+":activate", nil, &sub); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Subscription %s activated.\n", sub.ID)
	},
}

var subStatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Dispatch totals and success rate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var stats StatsRow
		if err := client.Get("/v1/subscriptions/"+args[0]+"/stats", &stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(stats)
	},
}

var subDeliveriesCmd = &cobra.Command{
	Use:   "deliveries <id>",
	Short: "Recent dispatch outcomes",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			Deliveries []DeliveryRow `json:"deliveries"`
		}
		if err := client.Get("/v1/subscriptions/"+args[0]+"/deliveries", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Deliveries)
	},
}

type DeliveryRow struct {
	RecordsCount int    `json:"records_count"`
	Success      bool   `json:"success"`
	ResponseCode int    `json:"response_code"`
	ErrorMessage string `json:"error_message"`
	TriggeredAt  string `json:"triggered_at"`
}

func init() {
	subCreateCmd.Flags().StringVar(&subProcess, "process", "", "trigger process (exact match)")
	subCreateCmd.Flags().StringVar(&subStatus, "status", "", "trigger status (exact match)")
	subCreateCmd.Flags().BoolVar(&subTestMode, "test-mode", false, "log payloads instead of sending")
	subCreateCmd.MarkFlagRequired("process")
	subCreateCmd.MarkFlagRequired("status")

	subscriptionCmd.AddCommand(subCreateCmd, subListCmd, subGetCmd,
		subDeactivateCmd, subActivateCmd, subStatsCmd, subDeliveriesCmd)
	rootCmd.AddCommand(subscriptionCmd)
}
