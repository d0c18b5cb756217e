package config

import (
	"os"
	"path/filepath"

	"github.com/ytget/yt-batch/internal/model"
	"github.com/ytget/yt-batch/internal/platform"
)

// Settings keys in the preferences file
const (
	KeyDownloadDir        = "download_directory"
	KeyFormat             = "format"
	KeyAudioBitrate       = "audio_bitrate"
	KeyVideoQuality       = "video_quality"
	KeyEmbedAlbumArt      = "embed_album_art"
	KeySuffixQuality      = "suffix_quality"
	KeyAddMetadata        = "add_metadata"
	KeyCookie             = "cookie"
	KeyRememberSettings   = "remember_settings"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
	KeyRestrictFilenames  = "restrict_filenames"
	KeyMaxRateKBps        = "max_rate_kbps"
	KeyFFmpegPath         = "ffmpeg_path"
)

// Default values
const (
	DefaultFormat             = model.FormatMP3
	DefaultAudioBitrate       = 256
	DefaultVideoQuality       = "720p"
	DefaultEmbedAlbumArt      = true
	DefaultSuffixQuality      = true
	DefaultAddMetadata        = true
	DefaultRememberSettings   = true
	DefaultAutoRevealComplete = false
	DefaultFFmpegPath         = "ffmpeg"
	MaxRateLimitKBps          = 1024 * 1024
)

// Settings manages persisted application configuration
type Settings struct {
	store *Store
}

// NewSettings creates a new settings manager
func NewSettings(store *Store) *Settings {
	return &Settings{store: store}
}

// Save persists the current values
func (s *Settings) Save() error {
	return s.store.Save()
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.store.String(KeyDownloadDir)
	if dir == "" {
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = filepath.Join(os.TempDir(), "downloads")
		}
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	s.store.SetString(KeyDownloadDir, dir)
}

// GetFormat returns the configured output format
func (s *Settings) GetFormat() model.OutputFormat {
	f := model.OutputFormat(s.store.String(KeyFormat))
	if !f.IsValid() {
		return DefaultFormat
	}
	return f
}

// SetFormat sets the output format; invalid values reset to the default
func (s *Settings) SetFormat(f model.OutputFormat) {
	if !f.IsValid() {
		f = DefaultFormat
	}
	s.store.SetString(KeyFormat, string(f))
}

// GetAudioBitrate returns the audio bitrate in kbps
func (s *Settings) GetAudioBitrate() int {
	value := s.store.Int(KeyAudioBitrate)
	if value <= 0 {
		return DefaultAudioBitrate
	}
	return clampBitrate(value)
}

// SetAudioBitrate sets the audio bitrate in kbps
func (s *Settings) SetAudioBitrate(kbps int) {
	s.store.SetInt(KeyAudioBitrate, clampBitrate(kbps))
}

// GetVideoQuality returns the requested video quality label
func (s *Settings) GetVideoQuality() string {
	q := s.store.String(KeyVideoQuality)
	if model.QualityRank(q) < 0 {
		return DefaultVideoQuality
	}
	return q
}

// SetVideoQuality sets the video quality label; unknown labels reset to the default
func (s *Settings) SetVideoQuality(q string) {
	if model.QualityRank(q) < 0 {
		q = DefaultVideoQuality
	}
	s.store.SetString(KeyVideoQuality, q)
}

// GetEmbedAlbumArt returns whether cover art is embedded into audio files
func (s *Settings) GetEmbedAlbumArt() bool {
	return s.store.BoolWithFallback(KeyEmbedAlbumArt, DefaultEmbedAlbumArt)
}

// SetEmbedAlbumArt sets whether cover art is embedded into audio files
func (s *Settings) SetEmbedAlbumArt(v bool) {
	s.store.SetBool(KeyEmbedAlbumArt, v)
}

// GetSuffixQuality returns whether filenames get a bitrate or quality suffix
func (s *Settings) GetSuffixQuality() bool {
	return s.store.BoolWithFallback(KeySuffixQuality, DefaultSuffixQuality)
}

// SetSuffixQuality sets whether filenames get a bitrate or quality suffix
func (s *Settings) SetSuffixQuality(v bool) {
	s.store.SetBool(KeySuffixQuality, v)
}

// GetAddMetadata returns whether title and artist tags are written
func (s *Settings) GetAddMetadata() bool {
	return s.store.BoolWithFallback(KeyAddMetadata, DefaultAddMetadata)
}

// SetAddMetadata sets whether title and artist tags are written
func (s *Settings) SetAddMetadata(v bool) {
	s.store.SetBool(KeyAddMetadata, v)
}

// GetCookie returns the auth cookie header value
func (s *Settings) GetCookie() string {
	return s.store.String(KeyCookie)
}

// SetCookie sets the auth cookie header value
func (s *Settings) SetCookie(cookie string) {
	s.store.SetString(KeyCookie, cookie)
}

// GetRememberSettings returns whether options are written back at session start
func (s *Settings) GetRememberSettings() bool {
	return s.store.BoolWithFallback(KeyRememberSettings, DefaultRememberSettings)
}

// SetRememberSettings sets whether options are written back at session start
func (s *Settings) SetRememberSettings(v bool) {
	s.store.SetBool(KeyRememberSettings, v)
}

// GetAutoRevealOnComplete returns whether to reveal the last finished file
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.store.BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal the last finished file
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.store.SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetRestrictFilenames returns whether output names are ASCII only
func (s *Settings) GetRestrictFilenames() bool {
	return s.store.BoolWithFallback(KeyRestrictFilenames, false)
}

// SetRestrictFilenames sets whether output names are ASCII only
func (s *Settings) SetRestrictFilenames(v bool) {
	s.store.SetBool(KeyRestrictFilenames, v)
}

// GetMaxRateKBps returns the per-stream bandwidth cap, 0 for unlimited
func (s *Settings) GetMaxRateKBps() int {
	return clampRate(s.store.Int(KeyMaxRateKBps))
}

// SetMaxRateKBps sets the per-stream bandwidth cap
func (s *Settings) SetMaxRateKBps(kbps int) {
	s.store.SetInt(KeyMaxRateKBps, clampRate(kbps))
}

// GetFFmpegPath returns the ffmpeg executable
func (s *Settings) GetFFmpegPath() string {
	return s.store.StringWithFallback(KeyFFmpegPath, DefaultFFmpegPath)
}

// SetFFmpegPath sets the ffmpeg executable
func (s *Settings) SetFFmpegPath(path string) {
	if path == "" {
		path = DefaultFFmpegPath
	}
	s.store.SetString(KeyFFmpegPath, path)
}

// GetBitrateOptions returns the bitrates offered to users
func (s *Settings) GetBitrateOptions() []int {
	return model.BitrateOptions
}

// GetQualityOptions returns the video quality labels offered to users
func (s *Settings) GetQualityOptions() []string {
	return model.VideoQualities
}

// Options builds session options from the persisted values
func (s *Settings) Options() Options {
	return Options{
		Format:            s.GetFormat(),
		AudioBitrate:      s.GetAudioBitrate(),
		VideoQuality:      s.GetVideoQuality(),
		EmbedAlbumArt:     s.GetEmbedAlbumArt(),
		SuffixQuality:     s.GetSuffixQuality(),
		AddMetadata:       s.GetAddMetadata(),
		DownloadPath:      s.GetDownloadDirectory(),
		Cookie:            s.GetCookie(),
		RestrictFilenames: s.GetRestrictFilenames(),
		MaxRateKBps:       s.GetMaxRateKBps(),
		FFmpegPath:        s.GetFFmpegPath(),
	}
}

// Remember stores opts so the next session starts from them
func (s *Settings) Remember(opts Options) error {
	s.SetFormat(opts.Format)
	s.SetAudioBitrate(opts.AudioBitrate)
	s.SetVideoQuality(opts.VideoQuality)
	s.SetEmbedAlbumArt(opts.EmbedAlbumArt)
	s.SetSuffixQuality(opts.SuffixQuality)
	s.SetAddMetadata(opts.AddMetadata)
	s.SetDownloadDirectory(opts.DownloadPath)
	s.SetCookie(opts.Cookie)
	s.SetRestrictFilenames(opts.RestrictFilenames)
	s.SetMaxRateKBps(opts.MaxRateKBps)
	s.SetFFmpegPath(opts.FFmpegPath)
	return s.Save()
}

func clampBitrate(kbps int) int {
	if kbps < model.MinAudioBitrate {
		return model.MinAudioBitrate
	}
	if kbps > model.MaxAudioBitrate {
		return model.MaxAudioBitrate
	}
	return kbps
}

func clampRate(kbps int) int {
	if kbps < 0 {
		return 0
	}
	if kbps > MaxRateLimitKBps {
		return MaxRateLimitKBps
	}
	return kbps
}
