package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/ytget/yt-batch/internal/model"
)

// ResultList accumulates one outcome per dequeued URL
type ResultList struct {
	mu       sync.Mutex
	outcomes []model.Outcome
}

// AddSuccess records a finished job
func (r *ResultList) AddSuccess(d model.DownloadedData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, model.Outcome{Success: &d})
}

// AddFailure records a failed job
func (r *ResultList) AddFailure(url, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, model.Outcome{Failure: &model.DownloadFailure{URL: url, Error: message}})
}

// Outcomes returns a copy of the recorded outcomes in arrival order
func (r *ResultList) Outcomes() []model.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Outcome(nil), r.outcomes...)
}

// Counts returns the number of successes and failures
func (r *ResultList) Counts() (succeeded, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.outcomes {
		if o.Success != nil {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// LastOutput returns the output path of the most recent success, or ""
func (r *ResultList) LastOutput() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.outcomes) - 1; i >= 0; i-- {
		if s := r.outcomes[i].Success; s != nil {
			return s.OutputPath
		}
	}
	return ""
}

// WriteSummary prints the totals followed by every failed URL
func (r *ResultList) WriteSummary(w io.Writer, loc *Localization) {
	succeeded, failed := r.Counts()
	fmt.Fprintf(w, loc.GetText(KeySummary)+"\n", succeeded, failed)
	if failed == 0 {
		return
	}

	fmt.Fprintln(w, loc.GetText(KeyFailedItems))
	for _, o := range r.Outcomes() {
		if o.Failure != nil {
			fmt.Fprintf(w, "  %s %s%s%s\n", IconError, o.URL(), MiddleDotSeparator, o.Failure.Error)
		}
	}
}
