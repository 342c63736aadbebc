package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type PhaseRow struct {
	Phase   string `json:"phase"`
	Jobs    int    `json:"jobs"`
	Issues  int    `json:"issues"`
	Percent string `json:"percent"`
}

type JobRow struct {
	JobID   int64  `json:"job_id"`
	Jobsite string `json:"jobsite"`
	Phase   string `json:"phase"`
	Latest  struct {
		Process     string `json:"process"`
		Status      string `json:"status"`
		DateCreated string `json:"date_created"`
	} `json:"latest_event"`
}

type IssueRow struct {
	Phase      string `json:"phase"`
	JobID      int64  `json:"job_id"`
	Jobsite    string `json:"jobsite"`
	Process    string `json:"process"`
	OpenedAt   string `json:"opened_at"`
	DaysOpen   int    `json:"days_open"`
	LastStatus string `json:"last_status"`
}

type IssueReportResponse struct {
	Summary []PhaseRow `json:"summary"`
	Detail  []IssueRow `json:"detail"`
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Dashboard overview commands",
}

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Active jobs per phase",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			Phases []PhaseRow `json:"phases"`
		}
		if err := client.Get("/v1/overview/phases", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Phases)
	},
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "List active jobs with latest activity",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			Jobs []JobRow `json:"jobs"`
		}
		if err := client.Get("/v1/overview/active", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Jobs)
	},
}

func issueCommand(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			client := NewClient(apiURL)

			var resp IssueReportResponse
			if err := client.Get(path, &resp); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			printResult(resp)
		},
	}
}

var finalizedCmd = &cobra.Command{
	Use:   "finalized",
	Short: "Jobs that reached the terminal marker",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			Jobs []FinalizedRow `json:"jobs"`
		}
		if err := client.Get("/v1/overview/finalized", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Jobs)
	},
}

type FinalizedRow struct {
	JobID       int64  `json:"job_id"`
	Jobsite     string `json:"jobsite"`
	FinalizedAt string `json:"finalized_at"`
}

var historyCmd = &cobra.Command{
	Use:   "history <job-id>",
	Short: "Recent events for one job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			JobID  int64      `json:"job_id"`
			Events []EventRow `json:"events"`
		}
		if err := client.Get("/v1/jobs/"+args[0]+"/history", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Events)
	},
}

type EventRow struct {
	Process     string `json:"process"`
	Status      string `json:"status"`
	Phase       string `json:"phase"`
	Jobsite     string `json:"jobsite"`
	DateCreated string `json:"date_created"`
}

func init() {
	overviewCmd.AddCommand(
		phasesCmd,
		activeCmd,
		issueCommand("failed-inspections", "Failed inspections report", "/v1/overview/failed-inspections"),
		issueCommand("pending-reports", "Pending reports report", "/v1/overview/pending-reports"),
		issueCommand("open-scheduled", "Open scheduled items report", "/v1/overview/open-scheduled"),
		finalizedCmd,
		historyCmd,
	)
	rootCmd.AddCommand(overviewCmd)
}
