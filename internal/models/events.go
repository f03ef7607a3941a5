package models

import (
	"fmt"
	"time"
)

// EventKind identifies which of the three event streams a record belongs to.
type EventKind string

const (
	KindImpression EventKind = "impression"
	KindClick      EventKind = "click"
	KindConversion EventKind = "conversion"
)

// Common platform values. The platform field is open-ended: sources may
// report values outside this list and they are bucketed as-is.
const (
	PlatformWeb    = "web"
	PlatformMobile = "mobile"
	PlatformOther  = "other"
)

// EventRecord is a single timestamped campaign event as delivered by an
// event source. Records are validated input; the reporting pipeline never
// mutates them.
type EventRecord struct {
	CampaignID string    `json:"campaign_id"`
	UserID     string    `json:"user_id"`
	Platform   string    `json:"platform"`
	Date       time.Time `json:"date"`
	Kind       EventKind `json:"kind"`
}

// DateKey returns the record's calendar date normalized to YYYY-MM-DD.
// Any time-of-day component is discarded.
func (e EventRecord) DateKey() string {
	return e.Date.Format("2006-01-02")
}

// Validate checks that required fields are present. A record failing
// validation rejects the whole aggregation call rather than producing a
// partial report.
func (e EventRecord) Validate() error {
	if e.CampaignID == "" {
		return fmt.Errorf("event record missing campaign_id")
	}
	if e.UserID == "" {
		return fmt.Errorf("event record missing user_id")
	}
	if e.Platform == "" {
		return fmt.Errorf("event record missing platform")
	}
	if e.Date.IsZero() {
		return fmt.Errorf("event record missing date")
	}
	return nil
}

// UserProfile holds the user attributes needed for geographic attribution.
// Country may be empty for profiles created before country capture; the
// resolver can backfill it from LastSeenIP when GeoIP is enabled.
type UserProfile struct {
	UserID     string `json:"user_id"`
	Country    string `json:"country"`
	LastSeenIP string `json:"last_seen_ip,omitempty"`
}
