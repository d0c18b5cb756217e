package download

import (
	"errors"
	"io"
	"sync"

	"github.com/ytget/yt-batch/internal/model"
)

// ByteReporter receives cumulative byte counts for a track
type ByteReporter interface {
	OnBytes(track model.Track, downloaded, total int64)
}

// progressReader counts bytes read from a source stream and remembers the
// first read error, so transfer failures can be told apart from ffmpeg ones.
type progressReader struct {
	r        io.Reader
	track    model.Track
	total    int64
	reporter ByteReporter

	mu  sync.Mutex
	n   int64
	err error
}

func newProgressReader(r io.Reader, track model.Track, total int64, reporter ByteReporter) *progressReader {
	return &progressReader{r: r, track: track, total: total, reporter: reporter}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)

	p.mu.Lock()
	p.n += int64(n)
	downloaded := p.n
	if err != nil && !errors.Is(err, io.EOF) && p.err == nil {
		p.err = err
	}
	p.mu.Unlock()

	if n > 0 && p.reporter != nil {
		p.reporter.OnBytes(p.track, downloaded, p.total)
	}
	return n, err
}

// Err returns the first non-EOF read error
func (p *progressReader) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Count returns the bytes read so far
func (p *progressReader) Count() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}
