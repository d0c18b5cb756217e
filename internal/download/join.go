package download

import (
	"context"
	"errors"
	"sync"

	"github.com/ytget/yt-batch/internal/model"
)

// pairJoin is a two-slot barrier for the audio and video transfers of a job
type pairJoin struct {
	mu      sync.Mutex
	arrived map[model.Track]bool
	first   error
	done    chan struct{}
}

func newPairJoin() *pairJoin {
	return &pairJoin{
		arrived: make(map[model.Track]bool, 2),
		done:    make(chan struct{}),
	}
}

// Arrive records the result of track. It returns true for exactly one call:
// the one that fills the second slot. Repeated arrivals are ignored.
func (j *pairJoin) Arrive(track model.Track, err error) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.arrived[track] || len(j.arrived) == 2 {
		return false
	}
	j.arrived[track] = true
	if err != nil && (j.first == nil || cancelled(j.first) && !cancelled(err)) {
		j.first = err
	}
	if len(j.arrived) == 2 {
		close(j.done)
		return true
	}
	return false
}

// Wait blocks until both tracks arrived and returns the first error. A
// cancellation caused by the other track never hides that track's error.
func (j *pairJoin) Wait() error {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.first
}

func cancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
