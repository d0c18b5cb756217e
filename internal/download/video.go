package download

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ytget/yt-batch/internal/config"
	"github.com/ytget/yt-batch/internal/model"
	"github.com/ytget/yt-batch/internal/platform"
	"github.com/ytget/yt-batch/internal/progress"
	"github.com/ytget/yt-batch/internal/selector"
	"github.com/ytget/yt-batch/internal/transcode"
)

// runVideoJob fetches video and audio concurrently into per-job temporaries
// and muxes them: Resolving, Downloading, Muxing.
func (s *Service) runVideoJob(ctx context.Context, job *model.Job, opts config.Options, cb Callbacks) (*model.DownloadedData, error) {
	s.setStatus(job, model.JobStatusResolving)
	item, err := s.resolver.Resolve(ctx, job.URL, opts.Cookie)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	sel, err := selector.SelectVideo(item.Formats, opts.VideoQuality, transcode.ContainerMP4)
	if err != nil {
		return nil, err
	}
	audioFormat, err := selector.SelectAudio(item.Formats, opts.AudioBitrate)
	if err != nil {
		return nil, err
	}
	for _, step := range sel.Downgrades {
		s.logger.Printf("Job %s: %s not available, stepping down to %s", job.ID, step.From, step.To)
	}
	if notice := sel.Notice(); notice != "" {
		s.warn(job, cb, notice)
	}

	title := platform.CleanerFor(opts.RestrictFilenames).Clean(item.Title)
	suffix := ""
	if opts.SuffixQuality {
		suffix = sel.Quality
	}
	outputPath := filepath.Join(opts.DownloadPath, outputFileName(title, suffix, model.FormatMP4))

	tmp := newScratch(opts.DownloadPath, job.ID, opts.KeepTempFiles)
	defer func() {
		if err := tmp.Cleanup(); err != nil {
			s.logger.Printf("Job %s: failed to remove temporary files: %v", job.ID, err)
		}
	}()
	videoTmp := tmp.Path(TempVideoName)
	audioTmp := tmp.Path(TempAudioName)

	s.update(job, func(j *model.Job) {
		j.Title = title
		j.Quality = sel.Quality
		j.TempPaths = tmp.Paths()
		j.Status = model.JobStatusDownloading
	})
	tracker := s.newTracker(job, item.Title, []model.Track{model.TrackAudio, model.TrackVideo}, cb)

	transferCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	join := newPairJoin()
	transfer := func(track model.Track, format model.StreamFormat, recipe func(transcode.Input) transcode.Recipe) {
		err := s.transfer(transferCtx, item, format, opts.Cookie, track, tracker, recipe)
		// Arrive first so the cause is recorded before the other track sees
		// the cancellation.
		if last := join.Arrive(track, err); err != nil && !last {
			cancel()
		}
	}

	go transfer(model.TrackVideo, sel.Format, func(in transcode.Input) transcode.Recipe {
		return transcode.CopyVideo(in, videoTmp)
	})
	go transfer(model.TrackAudio, audioFormat, func(in transcode.Input) transcode.Recipe {
		return transcode.EncodeAudio(in, audioTmp, opts.AudioBitrate, "", nil)
	})

	if err := join.Wait(); err != nil {
		snap := tracker.Snapshot()
		s.logger.Printf("Job %s: transfers stopped at video %.2f MB, audio %.2f MB",
			job.ID, snap.Video.DownloadedMB, snap.Audio.DownloadedMB)
		return nil, err
	}

	s.setStatus(job, model.JobStatusMuxing)
	tracker.SetBuilding()
	if err := s.transcoder.Run(ctx, transcode.Mux(videoTmp, audioTmp, outputPath)); err != nil {
		_ = platform.RemoveIfExists(outputPath)
		return nil, fmt.Errorf("mux: %w", err)
	}

	return success(job, item.Title, outputPath, tracker), nil
}

// transfer opens one stream and saves it through its recipe
func (s *Service) transfer(ctx context.Context, item *model.Item, format model.StreamFormat, cookie string, track model.Track, tracker *progress.Tracker, recipe func(transcode.Input) transcode.Recipe) error {
	stream, size, err := s.resolver.OpenStream(ctx, item, format, cookie)
	if err != nil {
		return &TransferError{Track: track, Err: err}
	}
	defer stream.Close()

	return s.pump(ctx, track, stream, size, tracker, recipe)
}
