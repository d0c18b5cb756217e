package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-batch/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 30 * time.Second
)

// URL parameters
const (
	PlaylistURLParam       = "list="
	PlaylistParamSeparator = "&"
)

// Default values
const (
	DefaultPlaylistTitle = "Untitled Playlist"
	DefaultTitleSuffix   = " - Playlist"
	MaxTitleLength       = 50
	TitleTruncateSuffix  = "..."
	DefaultDuration      = "00:00"
)

var (
	ErrNotPlaylist   = errors.New("URL does not contain playlist parameter")
	ErrEmptyPlaylist = errors.New("empty playlist ID")
)

// IsPlaylistURL reports whether url carries a playlist parameter
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, PlaylistURLParam)
}

// ExpandPlaylist resolves a playlist URL into its videos
func (r *YouTubeResolver) ExpandPlaylist(ctx context.Context, url, cookie string) (*model.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultPlaylistParseTimeout)
	defer cancel()

	playlist := model.NewPlaylist(url)

	id, err := extractPlaylistID(url)
	if err != nil {
		playlist.Error = err.Error()
		playlist.UpdateStatus(model.PlaylistStatusError)
		return playlist, err
	}
	playlist.ID = id

	src, err := r.client(cookie).GetPlaylistContext(ctx, url)
	if err != nil {
		err = fmt.Errorf("expand playlist %s: %w", id, err)
		playlist.Error = err.Error()
		playlist.UpdateStatus(model.PlaylistStatusError)
		return playlist, err
	}

	fillPlaylist(playlist, src)
	return playlist, nil
}

// fillPlaylist copies the entries of src into p and marks it ready
func fillPlaylist(p *model.Playlist, src *youtube.Playlist) {
	for _, entry := range src.Videos {
		if entry == nil || entry.ID == "" {
			continue
		}
		p.AddVideo(&model.PlaylistVideo{
			ID:       entry.ID,
			Title:    entry.Title,
			Author:   entry.Author,
			Duration: formatDuration(entry.Duration),
			URL:      fmt.Sprintf(YouTubeVideoURLTemplate, entry.ID),
		})
	}

	switch {
	case src.Title != "":
		p.Title = src.Title
	case len(p.Videos) > 0:
		p.Title = extractPlaylistTitle(p.Videos)
	default:
		p.Title = fmt.Sprintf("Playlist %s", p.ID)
	}

	p.Author = src.Author
	p.UpdateStatus(model.PlaylistStatusReady)
}

// extractPlaylistID supports:
// - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&start_radio=1
// - https://www.youtube.com/playlist?list=PLAYLIST_ID
func extractPlaylistID(url string) (string, error) {
	if !IsPlaylistURL(url) {
		return "", ErrNotPlaylist
	}

	parts := strings.SplitN(url, PlaylistURLParam, 2)
	id := strings.Split(parts[1], PlaylistParamSeparator)[0]
	if id == "" {
		return "", ErrEmptyPlaylist
	}
	return id, nil
}

// extractPlaylistTitle derives a title from the first video
func extractPlaylistTitle(videos []*model.PlaylistVideo) string {
	if len(videos) == 0 {
		return DefaultPlaylistTitle
	}

	firstTitle := videos[0].Title
	if len(firstTitle) > MaxTitleLength {
		firstTitle = firstTitle[:MaxTitleLength] + TitleTruncateSuffix
	}
	return firstTitle + DefaultTitleSuffix
}

// formatDuration renders d as MM:SS, or HH:MM:SS past one hour
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return DefaultDuration
	}
	seconds := int(d.Seconds())
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
