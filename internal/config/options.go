package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ytget/yt-batch/internal/model"
)

var (
	ErrInvalidFormat      = errors.New("invalid output format")
	ErrInvalidBitrate     = errors.New("invalid audio bitrate")
	ErrInvalidQuality     = errors.New("invalid video quality")
	ErrOutputDirRequired  = errors.New("output directory is required")
	ErrOutputDirNotAbs    = errors.New("output directory must be absolute")
	ErrInvalidMaxRate     = errors.New("max rate must not be negative")
	ErrFFmpegPathRequired = errors.New("ffmpeg path is required")
)

// Options is the session configuration of one queue run. The queue runner
// copies it when a run starts, so later changes never affect an active run.
type Options struct {
	Format        model.OutputFormat `toml:"format"`
	AudioBitrate  int                `toml:"audio_bitrate"` // kbps
	VideoQuality  string             `toml:"video_quality"`
	EmbedAlbumArt bool               `toml:"embed_album_art"`
	SuffixQuality bool               `toml:"suffix_quality"`
	AddMetadata   bool               `toml:"add_metadata"`
	DownloadPath  string             `toml:"download_path"`
	Cookie        string             `toml:"cookie"`

	RestrictFilenames bool   `toml:"restrict_filenames"`
	MaxRateKBps       int    `toml:"max_rate_kbps"` // 0 means unlimited
	KeepTempFiles     bool   `toml:"keep_temp_files"`
	FFmpegPath        string `toml:"ffmpeg_path"`
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Format:        DefaultFormat,
		AudioBitrate:  DefaultAudioBitrate,
		VideoQuality:  DefaultVideoQuality,
		EmbedAlbumArt: DefaultEmbedAlbumArt,
		SuffixQuality: DefaultSuffixQuality,
		AddMetadata:   DefaultAddMetadata,
		FFmpegPath:    DefaultFFmpegPath,
	}
}

// Validate checks every field and returns the first violation
func (o Options) Validate() error {
	if !o.Format.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, o.Format)
	}
	if o.AudioBitrate < model.MinAudioBitrate || o.AudioBitrate > model.MaxAudioBitrate {
		return fmt.Errorf("%w: %d kbps (allowed %d-%d)", ErrInvalidBitrate,
			o.AudioBitrate, model.MinAudioBitrate, model.MaxAudioBitrate)
	}
	if model.QualityRank(o.VideoQuality) < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidQuality, o.VideoQuality)
	}
	if o.DownloadPath == "" {
		return ErrOutputDirRequired
	}
	if !filepath.IsAbs(o.DownloadPath) {
		return fmt.Errorf("%w: %s", ErrOutputDirNotAbs, o.DownloadPath)
	}
	if o.MaxRateKBps < 0 {
		return ErrInvalidMaxRate
	}
	if o.FFmpegPath == "" {
		return ErrFFmpegPathRequired
	}
	return nil
}
