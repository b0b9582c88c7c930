package core

import (
	"time"
)

type ItemError struct {
	ID    string
	Error string
}

// StageReport summarizes one stage run.
type StageReport struct {
	Stage      string
	Kind       string
	Target     string
	Candidates int
	Completed  int
	Remaining  int
	Succeeded  int
	Failed     int
	Skipped    int

	RowsInserted int64
	RowsRejected int

	Errors    []ItemError
	Cancelled bool
	Started   time.Time
	Duration  time.Duration
}

func newReport(s Stage) *StageReport {
	return &StageReport{
		Stage:   s.Name(),
		Kind:    s.Kind(),
		Target:  s.Target(),
		Started: time.Now(),
	}
}

func (r *StageReport) fail(id string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, ItemError{ID: id, Error: err.Error()})
}

func (r *StageReport) skip(id string, err error) {
	r.Skipped++
	if err != nil {
		r.Errors = append(r.Errors, ItemError{ID: id, Error: err.Error()})
	}
}

func (r *StageReport) finish() {
	r.Duration = time.Since(r.Started)
}

// Processed counts the items the stage attempted.
func (r *StageReport) Processed() int {
	return r.Succeeded + r.Failed + r.Skipped
}
