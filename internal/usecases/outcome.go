package usecases

// Outcome is how far a delivery got through the pipeline
type Outcome string

const (
	OutcomeMalformed         Outcome = "malformed"
	OutcomeIgnored           Outcome = "ignored"
	OutcomeUnknownTenant     Outcome = "unknown_tenant"
	OutcomeDuplicate         Outcome = "duplicate"
	OutcomeStored            Outcome = "stored" // persisted, no reply sent
	OutcomeReplied           Outcome = "replied"
	OutcomeDownstreamFailure Outcome = "downstream_failure"
	OutcomeStoreFailure      Outcome = "store_failure"
	OutcomeInternalFailure   Outcome = "internal_failure"
)

// Result is returned for every delivery; Err carries the cause for failures
type Result struct {
	Outcome Outcome
	Err     error
}

// Body is the webhook response text. Providers retry on anything but 200, so
// the status code never changes and only the body tells outcomes apart.
func (r Result) Body() string {
	switch r.Outcome {
	case OutcomeIgnored, OutcomeUnknownTenant:
		return "ignored"
	case OutcomeDuplicate, OutcomeStored, OutcomeReplied, OutcomeDownstreamFailure:
		return "ok"
	default:
		return "error"
	}
}
