package notify

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

func TestBuildMessageShape(t *testing.T) {
	sub := core.Subscription{Name: "framing reports", Process: "framing", Status: "report"}
	records := []core.Event{
		{JobID: 101, Jobsite: "north yard"},
		{JobID: 102, Jobsite: "north yard"},
		{JobID: 101, Jobsite: "south yard"},
	}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	raw, err := BuildMessage(sub, records, now)
	require.NoError(t, err)

	var msg message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "framing reports: 3 new record(s)", msg.Text)
	require.NotEmpty(t, msg.Blocks)
	assert.Equal(t, "header", msg.Blocks[0].Type)
	assert.Equal(t, "framing reports", msg.Blocks[0].Text.Text)
	assert.Contains(t, msg.Blocks[1].Text.Text, "*framing* / *report*")
	assert.Equal(t, "context", msg.Blocks[len(msg.Blocks)-1].Type)
	assert.Contains(t, msg.Blocks[len(msg.Blocks)-1].Elements[0].Text, "2026-06-01 12:00")
}

func TestBuildMessageTruncatesListings(t *testing.T) {
	sub := core.Subscription{Name: "busy", Process: "framing", Status: "report"}
	var records []core.Event
	for i := 0; i < 8; i++ {
		records = append(records, core.Event{
			JobID:   int64(100 + i),
			Jobsite: fmt.Sprintf("site %d", i),
		})
	}

	raw, err := BuildMessage(sub, records, time.Now())
	require.NoError(t, err)

	var msg message
	require.NoError(t, json.Unmarshal(raw, &msg))

	var fields []textObj
	for _, b := range msg.Blocks {
		if len(b.Fields) > 0 {
			fields = b.Fields
		}
	}
	require.Len(t, fields, 2)
	assert.Contains(t, fields[0].Text, "… and 3 more")
	assert.Contains(t, fields[1].Text, "… and 3 more")
}

func TestBuildMessageSiteBreakdownSorted(t *testing.T) {
	got := siteBreakdown(map[string]int{"b": 1, "a": 3, "c": 3})
	assert.Equal(t, "*Records per site:*\na: 3\nc: 3\nb: 1", got)
}

func TestBuildMessageNoSites(t *testing.T) {
	sub := core.Subscription{Name: "n", Process: "p", Status: "s"}
	raw, err := BuildMessage(sub, []core.Event{{JobID: 101}}, time.Now())
	require.NoError(t, err)

	var msg message
	require.NoError(t, json.Unmarshal(raw, &msg))
	for _, b := range msg.Blocks {
		for _, f := range b.Fields {
			if f.Text == "*Sites:*\n_none_" {
				return
			}
		}
	}
	t.Fatal("expected empty-sites placeholder")
}
