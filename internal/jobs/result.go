package jobs

// DetailResult is the tagged outcome of extracting one detail page: either
// a Job or an explicit skip with the reason. Skips are expected operating
// noise (markup drift, validation misses), not errors.
type DetailResult struct {
	Job     Job
	Skipped bool
	Reason  string
}

// Found wraps a successfully extracted Job.
func Found(job Job) DetailResult {
	return DetailResult{Job: job}
}

// Skip records why a detail page produced no Job.
func Skip(reason string) DetailResult {
	return DetailResult{Skipped: true, Reason: reason}
}
