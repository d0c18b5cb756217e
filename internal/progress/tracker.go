// Package progress turns raw byte counts from one or two concurrent
// transfers into throttled progress snapshots.
package progress

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ytget/yt-batch/internal/model"
)

// DefaultInterval is the minimum spacing between two emitted snapshots
const DefaultInterval = 200 * time.Millisecond

// Clock returns the current time
type Clock func() time.Time

// Info identifies the job a tracker reports for
type Info struct {
	JobID string
	Title string
	URL   string
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces time.Now
func WithClock(c Clock) Option {
	return func(t *Tracker) {
		t.now = c
	}
}

// WithInterval changes the throttle interval
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		t.interval = d
	}
}

type trackState struct {
	downloaded int64
	total      int64
	prevBytes  int64 // downloaded at the previous snapshot
	speedMB    float64
	elapsed    time.Duration
	finished   bool
}

// Tracker composes per-track progress into snapshots. It is safe for
// concurrent use by the transfers of one job.
type Tracker struct {
	mu       sync.Mutex
	now      Clock
	interval time.Duration
	limiter  *rate.Limiter
	info     Info
	started  time.Time
	lastEmit time.Time
	building bool
	tracks   map[model.Track]*trackState
	emit     func(model.DownloadingData)
}

// New returns a tracker for the given tracks. emit may be nil.
func New(info Info, tracks []model.Track, emit func(model.DownloadingData), opts ...Option) *Tracker {
	t := &Tracker{
		now:      time.Now,
		interval: DefaultInterval,
		info:     info,
		tracks:   make(map[model.Track]*trackState, len(tracks)),
		emit:     emit,
	}
	for _, opt := range opts {
		opt(t)
	}
	for _, track := range tracks {
		t.tracks[track] = &trackState{}
	}

	t.started = t.now()
	t.lastEmit = t.started
	t.limiter = rate.NewLimiter(rate.Every(t.interval), 1)
	// The first window starts at job start.
	t.limiter.AllowN(t.started, 1)
	return t
}

// Started returns the job start time
func (t *Tracker) Started() time.Time {
	return t.started
}

// OnBytes records a transfer update and emits a snapshot when the throttle allows
func (t *Tracker) OnBytes(track model.Track, downloaded, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.tracks[track]
	if !ok {
		return
	}

	now := t.now()
	if downloaded > st.downloaded {
		st.downloaded = downloaded
	}
	if total > 0 {
		st.total = total
	}
	if !st.finished {
		st.elapsed = now.Sub(t.started)
	}

	if !t.limiter.AllowN(now, 1) {
		return
	}
	t.emitLocked(now)
}

// Finish marks a track as complete and freezes its elapsed time
func (t *Tracker) Finish(track model.Track) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.tracks[track]
	if !ok || st.finished {
		return
	}
	st.finished = true
	st.elapsed = t.now().Sub(t.started)
	if st.total <= 0 {
		st.total = st.downloaded
	}
}

// SetBuilding raises the building flag and emits a snapshot immediately
func (t *Tracker) SetBuilding() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.building = true
	t.emitLocked(t.now())
}

// Snapshot returns the current state without emitting it
func (t *Tracker) Snapshot() model.DownloadingData {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Totals returns the per-track totals for a success record. A track that is
// not part of the job is nil.
func (t *Tracker) Totals() (audio, video *model.TrackTotals) {
	t.mu.Lock()
	defer t.mu.Unlock()

	totals := func(track model.Track) *model.TrackTotals {
		st, ok := t.tracks[track]
		if !ok {
			return nil
		}
		size := st.total
		if size <= 0 {
			size = st.downloaded
		}
		return &model.TrackTotals{
			TotalMB: model.BytesToMB(size),
			Elapsed: model.FormatElapsed(st.elapsed),
		}
	}
	return totals(model.TrackAudio), totals(model.TrackVideo)
}

func (t *Tracker) emitLocked(now time.Time) {
	dt := now.Sub(t.lastEmit).Seconds()
	for _, st := range t.tracks {
		if dt > 0 {
			st.speedMB = model.RoundMB(float64(st.downloaded-st.prevBytes) / 1024 / 1024 / dt)
		}
		st.prevBytes = st.downloaded
	}
	t.lastEmit = now

	if t.emit != nil {
		t.emit(t.snapshotLocked())
	}
}

func (t *Tracker) snapshotLocked() model.DownloadingData {
	data := model.DownloadingData{
		JobID:    t.info.JobID,
		Started:  t.started,
		Building: t.building,
		Title:    t.info.Title,
		URL:      t.info.URL,
	}
	if st, ok := t.tracks[model.TrackAudio]; ok {
		data.Audio = st.progress()
	}
	if st, ok := t.tracks[model.TrackVideo]; ok {
		data.Video = st.progress()
	}
	return data
}

func (st *trackState) progress() *model.TrackProgress {
	return &model.TrackProgress{
		Downloaded:   st.downloaded,
		Total:        st.total,
		DownloadedMB: model.BytesToMB(st.downloaded),
		TotalMB:      model.BytesToMB(st.total),
		SpeedMB:      st.speedMB,
		Elapsed:      model.FormatElapsed(st.elapsed),
		Finished:     st.finished,
	}
}
