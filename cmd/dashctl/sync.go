package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type SyncAuditRow struct {
	TableName     string `json:"table_name"`
	RecordsSynced int    `json:"records_synced"`
	RecordsAdded  int    `json:"records_added"`
	SyncedAt      string `json:"synced_at"`
	DurationMs    int64  `json:"duration_ms"`
	ErrorMessage  string `json:"error_message"`
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replication status commands",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Latest replication outcome per table",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp map[string]*SyncAuditRow
		if err := client.Get("/v1/sync/status", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		var rows []SyncAuditRow
		for table, audit := range resp {
			if audit == nil {
				rows = append(rows, SyncAuditRow{TableName: table, ErrorMessage: "never synced"})
				continue
			}
			rows = append(rows, *audit)
		}
		printResult(rows)
	},
}

var syncAuditTable string

var syncAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Recent replication attempts",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			Audits []SyncAuditRow `json:"audits"`
		}
		if err := client.Get("/v1/sync/audit?table="+syncAuditTable, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Audits)
	},
}

func init() {
	syncAuditCmd.Flags().StringVar(&syncAuditTable, "table", "events", "audited table (events, rule_annotations)")
	syncCmd.AddCommand(syncStatusCmd, syncAuditCmd)
	rootCmd.AddCommand(syncCmd)
}
