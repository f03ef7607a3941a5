package report

import "errors"

var (
	// ErrInvalidRange marks a request whose dates are unparseable or whose
	// start date falls after its end date. Checked before any collaborator
	// call is made.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrCampaignNotFound marks a request for a campaign that does not exist.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrSourceUnavailable wraps event source and profile store failures.
	// Failures are propagated to the caller without retries and without
	// partial aggregation.
	ErrSourceUnavailable = errors.New("source unavailable")
)
