package dispatch

import "github.com/zapflow/zapflow/internal/models"

// GateResult reports whether an automated update was applied or skipped.
type GateResult struct {
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

// ApplyGated runs fn unless the client's conversation is under manual
// override, in which case it no-ops and reports skipped: a human has taken
// over and automation must stay out of the way.
func ApplyGated(client *models.Client, fn func() error) (GateResult, error) {
	if client.ManualOverride {
		return GateResult{Skipped: true, Reason: "manual override active"}, nil
	}
	if err := fn(); err != nil {
		return GateResult{}, err
	}
	return GateResult{}, nil
}
