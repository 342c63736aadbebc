package notify

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

const (
	maxListedItems = 5
	maxSiteRows    = 10
)

type message struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks"`
}

type block struct {
	Type     string    `json:"type"`
	Text     *textObj  `json:"text,omitempty"`
	Fields   []textObj `json:"fields,omitempty"`
	Elements []textObj `json:"elements,omitempty"`
}

type textObj struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func plain(s string) *textObj    { return &textObj{Type: "plain_text", Text: s} }
func markdown(s string) *textObj { return &textObj{Type: "mrkdwn", Text: s} }

// BuildMessage renders the notification body for one dispatch: a header
// with the subscription name, a summary of the trigger, truncated job
// and site listings and a per-site record breakdown.
func BuildMessage(sub core.Subscription, records []core.Event, now time.Time) ([]byte, error) {
	jobs := uniqueOrdered(records, func(e core.Event) string {
		if e.JobID == 0 {
			return ""
		}
		return strconv.FormatInt(e.JobID, 10)
	})
	sites := uniqueOrdered(records, func(e core.Event) string { return e.Jobsite })
	bySite := make(map[string]int)
	for _, e := range records {
		if e.Jobsite != "" {
			bySite[e.Jobsite]++
		}
	}

	summary := fmt.Sprintf("%d new record(s) matched *%s* / *%s*",
		len(records), sub.Process, sub.Status)

	blocks := []block{
		{Type: "header", Text: plain(sub.Name)},
		{Type: "section", Text: markdown(summary)},
		{Type: "divider"},
		{Type: "section", Fields: []textObj{
			{Type: "mrkdwn", Text: "*Jobs:*\n" + bulleted(jobs, maxListedItems)},
			{Type: "mrkdwn", Text: "*Sites:*\n" + bulleted(sites, maxListedItems)},
		}},
	}

	if breakdown := siteBreakdown(bySite); breakdown != "" {
		blocks = append(blocks, block{Type: "section", Text: markdown(breakdown)})
	}

	blocks = append(blocks, block{
		Type: "context",
		Elements: []textObj{
			{Type: "mrkdwn", Text: "Triggered at " + now.UTC().Format("2006-01-02 15:04 MST")},
		},
	})

	return json.Marshal(message{
		Text:   fmt.Sprintf("%s: %d new record(s)", sub.Name, len(records)),
		Blocks: blocks,
	})
}

// uniqueOrdered collects distinct non-empty values in first-seen order.
func uniqueOrdered(records []core.Event, field func(core.Event) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range records {
		v := field(e)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func bulleted(items []string, limit int) string {
	if len(items) == 0 {
		return "_none_"
	}
	var b strings.Builder
	for i, item := range items {
		if i == limit {
			fmt.Fprintf(&b, "• … and %d more\n", len(items)-limit)
			break
		}
		b.WriteString("• " + item + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func siteBreakdown(bySite map[string]int) string {
	if len(bySite) == 0 {
		return ""
	}
	sites := make([]string, 0, len(bySite))
	for s := range bySite {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool {
		if bySite[sites[i]] != bySite[sites[j]] {
			return bySite[sites[i]] > bySite[sites[j]]
		}
		return sites[i] < sites[j]
	})

	var b strings.Builder
	b.WriteString("*Records per site:*")
	for i, s := range sites {
		if i == maxSiteRows {
			fmt.Fprintf(&b, "\n… and %d more sites", len(sites)-maxSiteRows)
			break
		}
		fmt.Fprintf(&b, "\n%s: %d", s, bySite[s])
	}
	return b.String()
}
