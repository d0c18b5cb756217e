// Package cli parses the command line of yt-batch.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/ytget/yt-batch/internal/config"
	"github.com/ytget/yt-batch/internal/model"
)

// Flag names
const (
	FlagFormat            = "format"
	FlagBitrate           = "bitrate"
	FlagQuality           = "quality"
	FlagDir               = "dir"
	FlagCookie            = "cookie"
	FlagNoArt             = "no-art"
	FlagNoSuffix          = "no-suffix"
	FlagNoMetadata        = "no-metadata"
	FlagRemember          = "remember"
	FlagReveal            = "reveal"
	FlagRestrictFilenames = "restrict-filenames"
	FlagMaxRate           = "max-rate"
	FlagKeepTemp          = "keep-temp"
	FlagFFmpeg            = "ffmpeg"
)

var ErrNoURLs = errors.New("no URLs given")

// Options holds all command-line options.
type Options struct {
	// Input
	URLs      []string
	BatchFile string   // -a, --batch-file
	EnvFiles  []string // --env-file

	// General
	Help       bool
	Version    bool
	Verbose    bool
	Headless   bool   // no progress bars
	Language   string // console language code
	NoPlaylist bool   // treat playlist URLs as single videos

	// Session
	Format            string
	Bitrate           int
	Quality           string
	Dir               string
	Cookie            string
	NoArt             bool
	NoSuffix          bool
	NoMetadata        bool
	RestrictFilenames bool
	MaxRate           int
	KeepTemp          bool
	FFmpeg            string

	// Settings
	Remember bool
	Reveal   bool

	changed map[string]bool
}

// Parse parses args (without the program name). Usage and parse errors are
// written to out.
func Parse(args []string, out io.Writer) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("yt-batch", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVarP(&opts.Format, FlagFormat, "f", string(config.DefaultFormat), "Output format: mp3 or mp4.")
	fs.IntVarP(&opts.Bitrate, FlagBitrate, "b", config.DefaultAudioBitrate, fmt.Sprintf("Target audio bitrate in kbps (%d-%d).", model.MinAudioBitrate, model.MaxAudioBitrate))
	fs.StringVarP(&opts.Quality, FlagQuality, "q", config.DefaultVideoQuality, "Video quality: "+strings.Join(model.VideoQualities, ", ")+".")
	fs.StringVarP(&opts.Dir, FlagDir, "o", "", "Output directory.")
	fs.StringVar(&opts.Cookie, FlagCookie, "", "Cookie header value sent to YouTube.")
	fs.BoolVar(&opts.NoArt, FlagNoArt, false, "Do not embed cover art into mp3 files.")
	fs.BoolVar(&opts.NoSuffix, FlagNoSuffix, false, "Do not add the bitrate or quality to file names.")
	fs.BoolVar(&opts.NoMetadata, FlagNoMetadata, false, "Do not write title and artist tags.")
	fs.BoolVar(&opts.RestrictFilenames, FlagRestrictFilenames, false, "Restrict file names to ASCII characters.")
	fs.IntVar(&opts.MaxRate, FlagMaxRate, 0, "Maximum download rate per stream in KiB/s (0 for unlimited).")
	fs.BoolVar(&opts.KeepTemp, FlagKeepTemp, false, "Keep temporary files of video jobs.")
	fs.StringVar(&opts.FFmpeg, FlagFFmpeg, config.DefaultFFmpegPath, "Path to the ffmpeg binary.")

	fs.BoolVar(&opts.Remember, FlagRemember, config.DefaultRememberSettings, "Save these options as defaults for the next run.")
	fs.BoolVar(&opts.Reveal, FlagReveal, config.DefaultAutoRevealComplete, "Show the last finished file in the file manager.")

	fs.StringVarP(&opts.BatchFile, "batch-file", "a", "", "File with one URL per line.")
	fs.StringSliceVar(&opts.EnvFiles, "env-file", []string{".env"}, "Dotenv files to load.")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "Print debugging information.")
	fs.BoolVar(&opts.Headless, "headless", false, "Do not display progress bars.")
	fs.StringVar(&opts.Language, "lang", "system", "Console language: en, ru, pt.")
	fs.BoolVar(&opts.NoPlaylist, "no-playlist", false, "Download only the video of a watch URL that also names a playlist.")
	fs.BoolVarP(&opts.Help, "help", "h", false, "Show this help.")
	fs.BoolVar(&opts.Version, "version", false, "Print the version and exit.")

	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s [OPTIONS] URL [URL...]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(out, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Help {
		fs.Usage()
	}

	opts.URLs = fs.Args()
	opts.changed = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		opts.changed[f.Name] = true
	})
	return opts, nil
}

// Changed reports whether the flag was set on the command line
func (o Options) Changed(name string) bool {
	return o.changed[name]
}

// Apply overlays the flags given on the command line onto base
func (o Options) Apply(base config.Options) (config.Options, error) {
	if o.Changed(FlagFormat) {
		base.Format = model.OutputFormat(strings.ToLower(o.Format))
	}
	if o.Changed(FlagBitrate) {
		base.AudioBitrate = o.Bitrate
	}
	if o.Changed(FlagQuality) {
		base.VideoQuality = o.Quality
	}
	if o.Changed(FlagDir) {
		dir, err := filepath.Abs(o.Dir)
		if err != nil {
			return base, fmt.Errorf("output directory: %w", err)
		}
		base.DownloadPath = dir
	}
	if o.Changed(FlagCookie) {
		base.Cookie = o.Cookie
	}
	if o.Changed(FlagNoArt) {
		base.EmbedAlbumArt = !o.NoArt
	}
	if o.Changed(FlagNoSuffix) {
		base.SuffixQuality = !o.NoSuffix
	}
	if o.Changed(FlagNoMetadata) {
		base.AddMetadata = !o.NoMetadata
	}
	if o.Changed(FlagRestrictFilenames) {
		base.RestrictFilenames = o.RestrictFilenames
	}
	if o.Changed(FlagMaxRate) {
		base.MaxRateKBps = o.MaxRate
	}
	if o.Changed(FlagKeepTemp) {
		base.KeepTempFiles = o.KeepTemp
	}
	if o.Changed(FlagFFmpeg) {
		base.FFmpegPath = o.FFmpeg
	}
	return base, nil
}

// AllURLs returns the positional URLs followed by those of the batch file
func (o Options) AllURLs() ([]string, error) {
	urls := append([]string(nil), o.URLs...)
	if o.BatchFile != "" {
		f, err := os.Open(o.BatchFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()

		batch, err := ReadBatch(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read batch file: %w", err)
		}
		urls = append(urls, batch...)
	}
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	return urls, nil
}

// ReadBatch reads one URL per line, skipping blank lines and # comments
func ReadBatch(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
