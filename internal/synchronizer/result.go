package synchronizer

import "fmt"

// Result tracks counts and errors from one sync step
type Result struct {
	Kind     string
	Fetched  int
	Upserted int
	Skipped  int
	Failed   int
	Errors   []string
}

// Add merges another Result into this one
func (r *Result) Add(other Result) {
	r.Fetched += other.Fetched
	r.Upserted += other.Upserted
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a failed item
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"%s: fetched=%d upserted=%d skipped=%d failed=%d",
		r.Kind, r.Fetched, r.Upserted, r.Skipped, r.Failed,
	)
}
