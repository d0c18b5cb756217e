package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/ytget/yt-batch/internal/cli"
	"github.com/ytget/yt-batch/internal/config"
	"github.com/ytget/yt-batch/internal/download"
	"github.com/ytget/yt-batch/internal/platform"
	"github.com/ytget/yt-batch/internal/transcode"
	"github.com/ytget/yt-batch/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppName = "yt-batch"

	ExitOK      = 0
	ExitFailed  = 1
	ExitUsage   = 2
	ExitAborted = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cliOpts, err := cli.Parse(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if err != nil {
		return ExitUsage
	}
	if cliOpts.Help {
		return ExitOK
	}
	if cliOpts.Version {
		fmt.Printf("%s v%s\n", AppName, version)
		return ExitOK
	}

	logger := log.New(io.Discard, "", log.LstdFlags)
	if cliOpts.Verbose {
		logger = log.New(os.Stderr, AppName+": ", log.LstdFlags)
	}
	logger.Printf("%s v%s starting...", AppName, version)

	loc := ui.NewLocalization()
	if _, ok := loc.GetAvailableLanguages()[cliOpts.Language]; !ok && cliOpts.Language != "system" {
		fmt.Fprintf(os.Stderr, "%s: unsupported language %q, using English\n", AppName, cliOpts.Language)
	}
	loc.SetLanguage(cliOpts.Language)
	logger.Printf("language: %s", loc.GetCurrentLanguage())

	if err := config.LoadEnv(cliOpts.EnvFiles...); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		return ExitUsage
	}

	settings, err := openSettings(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		return ExitFailed
	}

	opts := settings.Options()
	if err := config.ApplyEnv(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		return ExitUsage
	}
	opts, err = cliOpts.Apply(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		return ExitUsage
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		return ExitUsage
	}

	urls, err := cliOpts.AllURLs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		return ExitUsage
	}

	reveal := settings.GetAutoRevealOnComplete()
	if cliOpts.Changed(cli.FlagReveal) {
		reveal = cliOpts.Reveal
		settings.SetAutoRevealOnComplete(reveal)
	}
	remember := settings.GetRememberSettings()
	if cliOpts.Changed(cli.FlagRemember) {
		remember = cliOpts.Remember
		settings.SetRememberSettings(remember)
	}
	if remember {
		if err := settings.Remember(opts); err != nil {
			logger.Printf("failed to save settings: %v", err)
		} else {
			logger.Print(loc.GetText(ui.KeySettingsSaved))
		}
	} else if err := settings.Save(); err != nil {
		logger.Printf("failed to save settings: %v", err)
	}

	transcoder := transcode.NewService(opts.FFmpegPath, logger)
	if err := transcoder.Available(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		return ExitFailed
	}
	logger.Printf("using %s", transcoder.Command())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := ui.NewConsole(os.Stdout, loc, cliOpts.Headless || !ui.IsTerminal(os.Stdout))
	resolver := platform.NewYouTubeResolver(
		platform.WithMaxRate(opts.MaxRateKBps),
		platform.WithLogger(logger),
	)

	urls = collectURLs(ctx, resolver, urls, opts.Cookie, cliOpts.NoPlaylist, console, loc)

	runner := download.NewService(resolver, transcoder, platform.NewThumbnailFetcher(nil),
		download.WithLogger(logger),
	)
	if err := runner.Configure(opts); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		return ExitUsage
	}
	runner.Enqueue(urls...)
	console.Printf(loc.GetText(ui.KeyQueued), len(urls))

	if err := runner.Start(ctx, console.Callbacks()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		return ExitFailed
	}

	go func() {
		select {
		case <-ctx.Done():
			console.Printf("%s", loc.GetText(ui.KeyStopping))
			runner.Stop()
		case <-console.Done():
		}
	}()

	runner.Wait()
	console.Close()

	results := console.Results()
	results.WriteSummary(os.Stdout, loc)

	if reveal {
		if last := results.LastOutput(); last != "" {
			if err := platform.OpenFileInManager(last); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", loc.GetText(ui.KeyErrorOpeningFile), err)
			}
		}
	}

	if ctx.Err() != nil {
		return ExitAborted
	}
	if _, failed := results.Counts(); failed > 0 {
		return ExitFailed
	}
	return ExitOK
}

// openSettings opens the preferences file, falling back to an in-memory
// store when no config directory is available.
func openSettings(logger *log.Logger) (*config.Settings, error) {
	path, err := config.DefaultStorePath()
	if err != nil {
		logger.Printf("settings will not persist: %v", err)
		return config.NewSettings(config.NewMemoryStore()), nil
	}

	store, err := config.OpenStore(path)
	if err != nil {
		return nil, err
	}
	logger.Printf("settings: %s", store.Path())
	return config.NewSettings(store), nil
}

// collectURLs validates the queued input and replaces playlist URLs with
// the videos they contain. Invalid entries are reported as failures right
// away so every input still gets exactly one outcome.
func collectURLs(ctx context.Context, resolver *platform.YouTubeResolver, input []string,
	cookie string, noPlaylist bool, console *ui.Console, loc *ui.Localization) []string {
	urls := make([]string, 0, len(input))
	for _, raw := range input {
		u := strings.TrimSpace(raw)
		if err := ui.ValidateURL(u); err != nil {
			console.OnError(u, fmt.Sprintf("%s: %v", loc.GetText(ui.KeyInvalidURL), err))
			continue
		}

		if !platform.IsPlaylistURL(u) || (noPlaylist && strings.Contains(u, "v=")) {
			urls = append(urls, u)
			continue
		}

		console.Printf("%s: %s", loc.GetText(ui.KeyExpandingPlaylist), u)
		playlist, err := resolver.ExpandPlaylist(ctx, u, cookie)
		if err != nil {
			// Watch URLs carrying a list parameter still resolve as single videos.
			console.OnWarning(fmt.Sprintf("%s: %v", u, err))
			urls = append(urls, u)
			continue
		}
		console.Printf(loc.GetText(ui.KeyPlaylistExpanded), playlist.Title, playlist.TotalVideos)
		urls = append(urls, playlist.URLs()...)
	}
	return urls
}
