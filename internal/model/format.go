package model

import "strings"

// OutputFormat is the container a job produces
type OutputFormat string

const (
	// FormatMP3 produces a re-encoded, tagged audio file
	FormatMP3 OutputFormat = "mp3"

	// FormatMP4 produces a video muxed with a separately fetched audio track
	FormatMP4 OutputFormat = "mp4"
)

// String returns the string representation of OutputFormat
func (f OutputFormat) String() string {
	return string(f)
}

// Ext returns the file extension including the leading dot
func (f OutputFormat) Ext() string {
	return "." + string(f)
}

// IsValid reports whether f is a supported output format
func (f OutputFormat) IsValid() bool {
	return f == FormatMP3 || f == FormatMP4
}

// VideoQualities lists the quality labels in ascending rank order.
var VideoQualities = []string{"144p", "240p", "360p", "480p", "720p", "720p60", "1080p", "1080p60"}

// BitrateOptions lists the audio bitrates (kbps) offered to users.
var BitrateOptions = []int{48, 64, 96, 128, 160, 192, 256, 320}

// Audio bitrate bounds in kbps
const (
	MinAudioBitrate = 32
	MaxAudioBitrate = 320
)

// QualityRank returns the rank of a quality label, or -1 when unknown
func QualityRank(label string) int {
	for i, q := range VideoQualities {
		if q == label {
			return i
		}
	}
	return -1
}

// StreamKind tells which tracks a catalog entry carries
type StreamKind string

const (
	StreamAudioOnly StreamKind = "audio"
	StreamVideoOnly StreamKind = "video"
	StreamMuxed     StreamKind = "muxed"
)

// StreamFormat is one available encoding of a resolved item
type StreamFormat struct {
	Itag          int
	Kind          StreamKind
	Container     string // e.g. "mp4", "webm"
	MimeType      string
	QualityLabel  string // video only, e.g. "720p60"
	BitrateKbps   int    // nominal audio bitrate, 0 if unknown
	ContentLength int64  // bytes, 0 if unknown
	Source        any    // resolver specific handle
}

// HasAudio reports whether the entry carries an audio track
func (f StreamFormat) HasAudio() bool {
	return f.Kind == StreamAudioOnly || f.Kind == StreamMuxed
}

// HasVideo reports whether the entry carries a video track
func (f StreamFormat) HasVideo() bool {
	return f.Kind == StreamVideoOnly || f.Kind == StreamMuxed
}

// ContainerFromMime extracts the container from a mime type such as
// `audio/mp4; codecs="mp4a.40.2"`.
func ContainerFromMime(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	if i := strings.Index(mime, "/"); i >= 0 {
		mime = mime[i+1:]
	}
	return strings.TrimSpace(mime)
}

// Item is a resolved source URL with its catalog
type Item struct {
	ID           string
	URL          string
	Title        string
	Author       string
	ThumbnailURL string // highest resolution available
	Formats      []StreamFormat
	Source       any // resolver specific handle
}
