package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ytget/yt-batch/internal/config"
	"github.com/ytget/yt-batch/internal/model"
	"github.com/ytget/yt-batch/internal/platform"
	"github.com/ytget/yt-batch/internal/transcode"
)

// Catalog itags used by the fakes
const (
	itagAudio128 = 1
	itagAudio192 = 2
	itagAudio256 = 3
	itagAudio320 = 4
	itagVideo360 = 10
	itagVideo720 = 11
	itagWebm1080 = 12
)

func audioFormats() []model.StreamFormat {
	return []model.StreamFormat{
		{Itag: itagAudio128, Kind: model.StreamAudioOnly, Container: "mp4", BitrateKbps: 128},
		{Itag: itagAudio192, Kind: model.StreamAudioOnly, Container: "webm", BitrateKbps: 192},
		{Itag: itagAudio256, Kind: model.StreamAudioOnly, Container: "mp4", BitrateKbps: 256},
		{Itag: itagAudio320, Kind: model.StreamAudioOnly, Container: "webm", BitrateKbps: 320},
	}
}

func newItem(url, title string) *model.Item {
	formats := audioFormats()
	formats = append(formats,
		model.StreamFormat{Itag: itagVideo360, Kind: model.StreamVideoOnly, Container: "mp4", QualityLabel: "360p", ContentLength: 300},
		model.StreamFormat{Itag: itagVideo720, Kind: model.StreamVideoOnly, Container: "mp4", QualityLabel: "720p", ContentLength: 700},
		model.StreamFormat{Itag: itagWebm1080, Kind: model.StreamVideoOnly, Container: "webm", QualityLabel: "1080p", ContentLength: 1000},
	)
	return &model.Item{
		ID:           title,
		URL:          url,
		Title:        title,
		Author:       "Band",
		ThumbnailURL: "https://img.example/" + title + ".jpg",
		Formats:      formats,
	}
}

type errReader struct {
	err error
}

func (r errReader) Read([]byte) (int, error) {
	return 0, r.err
}

type fakeResolver struct {
	mu      sync.Mutex
	items   map[string]*model.Item
	errs    map[string]error
	readErr map[int]error
	openErr map[int]error
	opened  []int
}

func newFakeResolver(items ...*model.Item) *fakeResolver {
	f := &fakeResolver{
		items:   make(map[string]*model.Item),
		errs:    make(map[string]error),
		readErr: make(map[int]error),
		openErr: make(map[int]error),
	}
	for _, item := range items {
		f.items[item.URL] = item
	}
	return f
}

func (f *fakeResolver) Resolve(ctx context.Context, url, cookie string) (*model.Item, error) {
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	item, ok := f.items[url]
	if !ok {
		return nil, errors.New("video unavailable")
	}
	return item, nil
}

func (f *fakeResolver) OpenStream(ctx context.Context, item *model.Item, format model.StreamFormat, cookie string) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	f.opened = append(f.opened, format.Itag)
	readErr := f.readErr[format.Itag]
	openErr := f.openErr[format.Itag]
	f.mu.Unlock()

	if openErr != nil {
		return nil, 0, openErr
	}

	payload := fmt.Sprintf("stream-%d", format.Itag)
	var r io.Reader = strings.NewReader(payload)
	if readErr != nil {
		r = io.MultiReader(r, errReader{err: readErr})
	}
	return io.NopCloser(r), int64(len(payload)), nil
}

func (f *fakeResolver) Opened() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	opened := append([]int(nil), f.opened...)
	sort.Ints(opened)
	return opened
}

// fakeTranscoder drains piped inputs, checks file inputs and writes the output
type fakeTranscoder struct {
	mu      sync.Mutex
	recipes []transcode.Recipe
	fail    map[string]error // output base name -> error

	// started, when set, makes Run block until ctx is done
	started   chan struct{}
	startOnce sync.Once

	// blockSuffix makes runs writing a matching output block until ctx is done
	blockSuffix string
}

func newFakeTranscoder() *fakeTranscoder {
	return &fakeTranscoder{fail: make(map[string]error)}
}

func (f *fakeTranscoder) Run(ctx context.Context, r transcode.Recipe) error {
	f.mu.Lock()
	f.recipes = append(f.recipes, r)
	f.mu.Unlock()

	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
		<-ctx.Done()
		return ctx.Err()
	}
	if f.blockSuffix != "" && strings.HasSuffix(r.OutputPath, f.blockSuffix) {
		<-ctx.Done()
		return ctx.Err()
	}

	for _, in := range r.Inputs {
		if in.Reader != nil {
			if _, err := io.ReadAll(in.Reader); err != nil {
				return err
			}
			continue
		}
		if !platform.FileExists(in.Path) {
			return fmt.Errorf("missing input %s", in.Path)
		}
	}
	if err, ok := f.fail[filepath.Base(r.OutputPath)]; ok {
		return err
	}
	return os.WriteFile(r.OutputPath, []byte("media"), 0644)
}

func (f *fakeTranscoder) Recipes() []transcode.Recipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transcode.Recipe(nil), f.recipes...)
}

type fakeArt struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeArt) FetchThumbnail(ctx context.Context, url, dst string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dst, []byte("jpeg"), 0644)
}

// recorder collects presenter callbacks
type recorder struct {
	mu          sync.Mutex
	events      []string
	items       []model.DownloadedData
	failures    []model.DownloadFailure
	warnings    []string
	progress    []model.DownloadingData
	completions int
	onItem      func(model.DownloadedData)
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnProgress: func(d model.DownloadingData) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.progress = append(r.progress, d)
		},
		OnItemEnd: func(d model.DownloadedData) {
			r.mu.Lock()
			r.items = append(r.items, d)
			r.events = append(r.events, "item:"+d.URL)
			hook := r.onItem
			r.mu.Unlock()
			if hook != nil {
				hook(d)
			}
		},
		OnError: func(url, message string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.failures = append(r.failures, model.DownloadFailure{URL: url, Error: message})
			r.events = append(r.events, "error:"+url)
		},
		OnComplete: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.completions++
			r.events = append(r.events, "complete")
		},
		OnWarning: func(message string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.warnings = append(r.warnings, message)
		},
	}
}

func newTestService(res Resolver, tr Transcoder, art ArtFetcher) *Service {
	return NewService(res, tr, art, WithLogger(log.New(io.Discard, "", 0)))
}

func testOptions(t *testing.T, format model.OutputFormat) config.Options {
	t.Helper()
	opts := config.DefaultOptions()
	opts.Format = format
	opts.DownloadPath = t.TempDir()
	return opts
}

// runQueue configures s, enqueues urls and blocks until the run completes
func runQueue(t *testing.T, s *Service, opts config.Options, urls ...string) *recorder {
	t.Helper()
	if err := s.Configure(opts); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	s.Enqueue(urls...)

	rec := &recorder{}
	if err := s.Start(context.Background(), rec.callbacks()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Wait()
	return rec
}

// leftovers lists hidden temporaries in dir
func leftovers(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names
}
