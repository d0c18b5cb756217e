package download

import (
	"context"
	"io"

	"github.com/ytget/yt-batch/internal/config"
	"github.com/ytget/yt-batch/internal/model"
	"github.com/ytget/yt-batch/internal/transcode"
)

// Resolver turns a URL into a stream catalog and opens catalog entries
type Resolver interface {
	Resolve(ctx context.Context, url, cookie string) (*model.Item, error)
	OpenStream(ctx context.Context, item *model.Item, format model.StreamFormat, cookie string) (io.ReadCloser, int64, error)
}

// Transcoder runs one ffmpeg recipe to a single terminal result
type Transcoder interface {
	Run(ctx context.Context, r transcode.Recipe) error
}

// ArtFetcher downloads a cover image to dst
type ArtFetcher interface {
	FetchThumbnail(ctx context.Context, url, dst string) error
}

// Logger is the logging surface used by the runner
type Logger interface {
	Printf(format string, v ...any)
}

// Runner defines the interface for the queue runner.
type Runner interface {
	Configure(opts config.Options) error
	Enqueue(urls ...string)
	Start(ctx context.Context, cb Callbacks) error
	Stop()
	Wait()
	SetUpdateCallback(func(*model.Job))
	GetJob(id string) (*model.Job, bool)
	GetAllJobs() []*model.Job
}

// Callbacks is the presenter contract. Any field may be nil.
type Callbacks struct {
	// OnProgress receives throttled snapshots of the active job
	OnProgress func(model.DownloadingData)

	// OnItemEnd fires once per successful job
	OnItemEnd func(model.DownloadedData)

	// OnError fires once per failed job
	OnError func(url, message string)

	// OnComplete fires once when the queue drains or the run is stopped
	OnComplete func()

	// OnWarning reports non-fatal notices
	OnWarning func(message string)
}

func (c Callbacks) progress(d model.DownloadingData) {
	if c.OnProgress != nil {
		c.OnProgress(d)
	}
}

func (c Callbacks) itemEnd(d model.DownloadedData) {
	if c.OnItemEnd != nil {
		c.OnItemEnd(d)
	}
}

func (c Callbacks) fail(url, message string) {
	if c.OnError != nil {
		c.OnError(url, message)
	}
}

func (c Callbacks) complete() {
	if c.OnComplete != nil {
		c.OnComplete()
	}
}

func (c Callbacks) warning(message string) {
	if c.OnWarning != nil {
		c.OnWarning(message)
	}
}

var _ Runner = (*Service)(nil)
