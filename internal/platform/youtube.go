package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/juju/ratelimit"
	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-batch/internal/model"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// HTTP constants
const (
	CookieHeader = "Cookie"
	BytesPerKiB  = 1024
)

var ErrForeignFormat = errors.New("stream format was not produced by this resolver")

// nominalAudioKbps maps YouTube audio itags to their advertised bitrate.
// The reported bitrate of adaptive streams is a peak value and overstates
// the quality tier.
var nominalAudioKbps = map[int]int{
	139: 48,  // m4a
	140: 128, // m4a
	141: 256, // m4a
	171: 128, // webm vorbis
	172: 192, // webm vorbis
	249: 50,  // webm opus
	250: 70,  // webm opus
	251: 160, // webm opus
}

// Logger is the logging surface used by platform services
type Logger interface {
	Printf(format string, v ...any)
}

// YouTubeResolver resolves YouTube URLs into catalogs and opens their streams
type YouTubeResolver struct {
	httpClient  *http.Client
	maxRateKBps int
	logger      Logger
}

// ResolverOption configures a YouTubeResolver
type ResolverOption func(*YouTubeResolver)

// WithHTTPClient sets the HTTP client used for every request
func WithHTTPClient(c *http.Client) ResolverOption {
	return func(r *YouTubeResolver) {
		r.httpClient = c
	}
}

// WithMaxRate caps each opened stream at kbps KiB/s; 0 disables the cap
func WithMaxRate(kbps int) ResolverOption {
	return func(r *YouTubeResolver) {
		r.maxRateKBps = kbps
	}
}

// WithLogger sets the logger
func WithLogger(l Logger) ResolverOption {
	return func(r *YouTubeResolver) {
		r.logger = l
	}
}

// NewYouTubeResolver creates a resolver
func NewYouTubeResolver(opts ...ResolverOption) *YouTubeResolver {
	r := &YouTubeResolver{
		httpClient: http.DefaultClient,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// client returns a library client sending cookie with every request
func (r *YouTubeResolver) client(cookie string) *youtube.Client {
	hc := *r.httpClient
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = &cookieTransport{cookie: cookie, base: base}
	return &youtube.Client{HTTPClient: &hc}
}

// Resolve fetches the metadata and stream catalog of url
func (r *YouTubeResolver) Resolve(ctx context.Context, url, cookie string) (*model.Item, error) {
	video, err := r.client(cookie).GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", url, err)
	}
	return itemFromVideo(url, video), nil
}

// OpenStream opens the byte stream of one catalog entry
func (r *YouTubeResolver) OpenStream(ctx context.Context, item *model.Item, f model.StreamFormat, cookie string) (io.ReadCloser, int64, error) {
	video, ok := item.Source.(*youtube.Video)
	if !ok {
		return nil, 0, ErrForeignFormat
	}
	format, ok := f.Source.(*youtube.Format)
	if !ok {
		return nil, 0, ErrForeignFormat
	}

	rc, size, err := r.client(cookie).GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, 0, fmt.Errorf("open stream itag %d: %w", f.Itag, err)
	}
	if size <= 0 {
		size = f.ContentLength
	}
	return limitReader(rc, r.maxRateKBps), size, nil
}

// limitReader wraps rc in a token bucket of kbps KiB/s
func limitReader(rc io.ReadCloser, kbps int) io.ReadCloser {
	if kbps <= 0 {
		return rc
	}
	rate := float64(kbps * BytesPerKiB)
	bucket := ratelimit.NewBucketWithRate(rate, int64(kbps*BytesPerKiB))
	return &readCloser{Reader: ratelimit.Reader(rc, bucket), Closer: rc}
}

type readCloser struct {
	io.Reader
	io.Closer
}

func itemFromVideo(url string, video *youtube.Video) *model.Item {
	item := &model.Item{
		ID:           video.ID,
		URL:          url,
		Title:        video.Title,
		Author:       video.Author,
		ThumbnailURL: bestThumbnail(video.Thumbnails),
		Source:       video,
	}
	for i := range video.Formats {
		item.Formats = append(item.Formats, convertFormat(&video.Formats[i]))
	}
	return item
}

// convertFormat maps a library format onto a catalog entry
func convertFormat(f *youtube.Format) model.StreamFormat {
	mime := strings.ToLower(f.MimeType)
	hasVideo := strings.HasPrefix(mime, "video/")
	hasAudio := strings.HasPrefix(mime, "audio/") || f.AudioChannels > 0

	kind := model.StreamAudioOnly
	switch {
	case hasVideo && hasAudio:
		kind = model.StreamMuxed
	case hasVideo:
		kind = model.StreamVideoOnly
	}

	entry := model.StreamFormat{
		Itag:          f.ItagNo,
		Kind:          kind,
		Container:     model.ContainerFromMime(mime),
		MimeType:      f.MimeType,
		ContentLength: f.ContentLength,
		Source:        f,
	}
	if hasVideo {
		entry.QualityLabel = f.QualityLabel
	}
	if hasAudio {
		entry.BitrateKbps = audioKbps(f)
	}
	return entry
}

func audioKbps(f *youtube.Format) int {
	if kbps, ok := nominalAudioKbps[f.ItagNo]; ok {
		return kbps
	}
	bps := f.AverageBitrate
	if bps <= 0 {
		bps = f.Bitrate
	}
	return int(math.Round(float64(bps) / 1000))
}

// bestThumbnail returns the largest thumbnail, preferring later entries on ties
func bestThumbnail(thumbs youtube.Thumbnails) string {
	best := ""
	var bestArea uint
	for _, t := range thumbs {
		if area := t.Width * t.Height; best == "" || area >= bestArea {
			best = t.URL
			bestArea = area
		}
	}
	return best
}

// cookieTransport adds the auth cookie to every outgoing request
type cookieTransport struct {
	cookie string
	base   http.RoundTripper
}

func (t *cookieTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.cookie != "" {
		req = req.Clone(req.Context())
		req.Header.Set(CookieHeader, t.cookie)
	}
	return t.base.RoundTrip(req)
}
