package core

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fingerprint computes the dedup hash identifying an event across sync
// cycles. The local table is replaced wholesale, so row IDs are not
// stable; new-record detection diffs these fingerprints instead. Every
// replicated field participates so that an upstream edit shows up as a
// new record.
func Fingerprint(e Event) string {
	h := sha256.New()
	parts := []string{
		strconv.FormatInt(e.JobID, 10),
		strconv.FormatInt(e.SiteNumber, 10),
		e.LogTitle,
		e.Notes,
		e.Process,
		e.Status,
		e.Phase,
		e.Jobsite,
		e.County,
		e.Sector,
		e.Site,
		e.Permit,
		e.Parcel,
		e.ModelCode,
		e.AddedBy,
		e.ServiceDate,
		e.DateCreated.UTC().Format(time.RFC3339Nano),
	}
	h.Write([]byte(strings.Join(parts, "\x1f")))
	return fmt.Sprintf("%x", h.Sum(nil))
}
