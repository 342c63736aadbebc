package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
)

func printResult(v interface{}) {
	if output == "json" {
		json.NewEncoder(os.Stdout).Encode(v)
		return
	}
	printTable(v)
}

func printTable(v interface{}) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	switch data := v.(type) {
	case []PhaseRow:
		if len(data) == 0 {
			fmt.Println("No active jobs.")
			return
		}
		fmt.Fprintln(w, "PHASE\tJOBS\tISSUES\tPERCENT")
		for _, p := range data {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", p.Phase, p.Jobs, p.Issues, p.Percent)
		}
	case []JobRow:
		if len(data) == 0 {
			fmt.Println("No active jobs.")
			return
		}
		fmt.Fprintln(w, "JOB\tJOBSITE\tPHASE\tLAST PROCESS\tLAST STATUS\tLAST ACTIVITY")
		for _, j := range data {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				j.JobID, j.Jobsite, j.Phase, j.Latest.Process, j.Latest.Status, j.Latest.DateCreated)
		}
	case IssueReportResponse:
		if len(data.Detail) == 0 {
			fmt.Println("No open issues.")
			return
		}
		fmt.Fprintln(w, "PHASE\tJOB\tJOBSITE\tPROCESS\tOPENED\tDAYS OPEN\tLAST STATUS")
		for _, d := range data.Detail {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\t%s\n",
				d.Phase, d.JobID, d.Jobsite, d.Process, d.OpenedAt, d.DaysOpen, d.LastStatus)
		}
	case []FinalizedRow:
		if len(data) == 0 {
			fmt.Println("No finalized jobs.")
			return
		}
		fmt.Fprintln(w, "JOB\tJOBSITE\tFINALIZED")
		for _, f := range data {
			fmt.Fprintf(w, "%d\t%s\t%s\n", f.JobID, f.Jobsite, f.FinalizedAt)
		}
	case []EventRow:
		if len(data) == 0 {
			fmt.Println("No events found.")
			return
		}
		fmt.Fprintln(w, "DATE\tPROCESS\tSTATUS\tPHASE\tJOBSITE")
		for _, e := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.DateCreated, e.Process, e.Status, e.Phase, e.Jobsite)
		}
	case []SubscriptionRow:
		if len(data) == 0 {
			fmt.Println("No subscriptions found.")
			return
		}
		fmt.Fprintln(w, "ID\tNAME\tPROCESS\tSTATUS\tACTIVE\tLAST TRIGGERED")
		for _, s := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
				s.ID[:8], s.Name, s.Process, s.Status, s.Active, s.LastTriggeredAt)
		}
	case SubscriptionRow:
		fmt.Fprintf(w, "ID:\t%s\n", data.ID)
		fmt.Fprintf(w, "Name:\t%s\n", data.Name)
		fmt.Fprintf(w, "Endpoint:\t%s\n", data.EndpointURL)
		fmt.Fprintf(w, "Trigger:\t%s / %s\n", data.Process, data.Status)
		fmt.Fprintf(w, "Active:\t%t\n", data.Active)
		fmt.Fprintf(w, "Test mode:\t%t\n", data.TestMode)
		fmt.Fprintf(w, "Last triggered:\t%s\n", data.LastTriggeredAt)
	case StatsRow:
		fmt.Fprintf(w, "Subscription:\t%s\n", data.SubscriptionID)
		fmt.Fprintf(w, "Dispatches:\t%d\n", data.Dispatches)
		fmt.Fprintf(w, "Successes:\t%d\n", data.Successes)
		fmt.Fprintf(w, "Success rate:\t%s\n", data.SuccessRate)
	case []DeliveryRow:
		if len(data) == 0 {
			fmt.Println("No deliveries found.")
			return
		}
		fmt.Fprintln(w, "TRIGGERED\tRECORDS\tSUCCESS\tCODE\tERROR")
		for _, d := range data {
			fmt.Fprintf(w, "%s\t%d\t%t\t%d\t%s\n",
				d.TriggeredAt, d.RecordsCount, d.Success, d.ResponseCode, truncate(d.ErrorMessage, 40))
		}
	case []SyncAuditRow:
		if len(data) == 0 {
			fmt.Println("No sync runs recorded.")
			return
		}
		fmt.Fprintln(w, "TABLE\tSYNCED\tADDED\tDURATION MS\tAT\tERROR")
		for _, a := range data {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
				a.TableName, a.RecordsSynced, a.RecordsAdded, a.DurationMs, a.SyncedAt, truncate(a.ErrorMessage, 40))
		}
	default:
		json.NewEncoder(os.Stdout).Encode(v)
	}
	w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
