package download

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ytget/yt-batch/internal/config"
	"github.com/ytget/yt-batch/internal/model"
	"github.com/ytget/yt-batch/internal/platform"
	"github.com/ytget/yt-batch/internal/progress"
	"github.com/ytget/yt-batch/internal/selector"
	"github.com/ytget/yt-batch/internal/transcode"
)

// Warning messages
const (
	WarnThumbnail = "Thumbnail did not download."
)

// Temporary file names, prefixed with the job ID on disk
const (
	TempArtName   = "cover.jpg"
	TempVideoName = "video.mp4"
	TempAudioName = "audio.mp3"
)

// runAudioJob downloads one audio stream and encodes it to mp3 while it
// arrives: Resolving, Downloading, FetchingArt, Transcoding.
func (s *Service) runAudioJob(ctx context.Context, job *model.Job, opts config.Options, cb Callbacks) (*model.DownloadedData, error) {
	s.setStatus(job, model.JobStatusResolving)
	item, err := s.resolver.Resolve(ctx, job.URL, opts.Cookie)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", selector.ErrNoAudio, err)
	}
	format, err := selector.SelectAudio(item.Formats, opts.AudioBitrate)
	if err != nil {
		return nil, err
	}

	title := platform.CleanerFor(opts.RestrictFilenames).Clean(item.Title)
	suffix := ""
	if opts.SuffixQuality {
		suffix = bitrateSuffix(opts.AudioBitrate)
	}
	outputPath := filepath.Join(opts.DownloadPath, outputFileName(title, suffix, model.FormatMP3))

	tmp := newScratch(opts.DownloadPath, job.ID, opts.KeepTempFiles)
	defer func() {
		if err := tmp.Cleanup(); err != nil {
			s.logger.Printf("Job %s: failed to remove temporary files: %v", job.ID, err)
		}
	}()

	s.update(job, func(j *model.Job) {
		j.Title = title
		j.Status = model.JobStatusDownloading
	})
	tracker := s.newTracker(job, item.Title, []model.Track{model.TrackAudio}, cb)

	stream, size, err := s.resolver.OpenStream(ctx, item, format, opts.Cookie)
	if err != nil {
		return nil, &TransferError{Track: model.TrackAudio, Err: err}
	}
	defer stream.Close()

	artPath := ""
	if opts.EmbedAlbumArt && s.art != nil {
		s.setStatus(job, model.JobStatusFetchingArt)
		artPath = s.fetchArt(ctx, job, item, tmp, cb)
	}

	var meta *transcode.Metadata
	if opts.AddMetadata {
		meta = &transcode.Metadata{Title: item.Title, Artist: item.Author}
	}

	s.update(job, func(j *model.Job) {
		j.Status = model.JobStatusTranscoding
		j.TempPaths = tmp.Paths()
	})
	err = s.pump(ctx, model.TrackAudio, stream, size, tracker, func(in transcode.Input) transcode.Recipe {
		return transcode.EncodeAudio(in, outputPath, opts.AudioBitrate, artPath, meta)
	})
	if err != nil {
		_ = platform.RemoveIfExists(outputPath)
		return nil, err
	}

	return success(job, item.Title, outputPath, tracker), nil
}

// fetchArt downloads the item thumbnail into the job scratch. Failures are
// reported as a warning and yield "".
func (s *Service) fetchArt(ctx context.Context, job *model.Job, item *model.Item, tmp *scratch, cb Callbacks) string {
	if item.ThumbnailURL == "" {
		s.warn(job, cb, WarnThumbnail)
		return ""
	}

	artPath := tmp.Path(TempArtName)
	if err := s.art.FetchThumbnail(ctx, item.ThumbnailURL, artPath); err != nil {
		s.logger.Printf("Job %s: thumbnail fetch failed: %v", job.ID, err)
		s.warn(job, cb, WarnThumbnail)
		return ""
	}
	return artPath
}

// pump streams one source through a transcode recipe, reporting bytes to the
// tracker. A failed source read wins over the ffmpeg error it causes.
func (s *Service) pump(ctx context.Context, track model.Track, stream io.Reader, size int64, tracker *progress.Tracker, recipe func(transcode.Input) transcode.Recipe) error {
	reader := newProgressReader(stream, track, size, tracker)

	err := s.transcoder.Run(ctx, recipe(transcode.PipeInput(reader)))
	if rerr := reader.Err(); rerr != nil {
		return &TransferError{Track: track, Err: rerr}
	}
	if err != nil {
		return fmt.Errorf("%s transcode: %w", track, err)
	}

	tracker.OnBytes(track, reader.Count(), size)
	tracker.Finish(track)
	return nil
}
