package schema

import "time"

// Credential is one portal login supplied for a run.
type Credential struct {
	Identifier string
	Secret     string
}

// Masked returns the display form of the credential's identifier.
func (c Credential) Masked() string {
	return MaskIdentifier(c.Identifier)
}

// AccountResult is the per-account record produced by the orchestrator.
type AccountResult struct {
	// Account is the masked identifier; the raw value never leaves the run.
	Account string
	Outcome Outcome
	// Balance is a best-effort snapshot of the portal balance.
	Balance string
}

// RunSummary aggregates one batch run.
type RunSummary struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Total     int
	Succeeded int
	Results   []AccountResult
}

// Add appends a result and updates the aggregate counters.
func (s *RunSummary) Add(result AccountResult) {
	s.Results = append(s.Results, result)
	s.Total = len(s.Results)
	if result.Outcome.Succeeded() {
		s.Succeeded++
	}
}

// BalancePlaceholder is reported when the balance could not be read at all.
const BalancePlaceholder = "0"
