// Package selector picks source streams from a resolved catalog.
package selector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ytget/yt-batch/internal/model"
)

var (
	ErrNoAudio = errors.New("no audio found")
	ErrNoVideo = errors.New("video not found at any quality")
)

// Downgrade is one step down the quality ranks
type Downgrade struct {
	From string
	To   string
}

// VideoSelection is the result of SelectVideo
type VideoSelection struct {
	Format     model.StreamFormat
	Quality    string // label actually selected
	Requested  string
	Downgrades []Downgrade
}

// Downgraded reports whether the selected label differs from the request
func (v VideoSelection) Downgraded() bool {
	return v.Quality != v.Requested
}

// Notice returns the user facing downgrade message, or "" when none
func (v VideoSelection) Notice() string {
	if !v.Downgraded() {
		return ""
	}
	return fmt.Sprintf("%s not found, trying %s...", v.Requested, v.Quality)
}

// SelectAudio returns the lowest-bitrate audio-only entry whose bitrate is at
// least minKbps. When none qualifies the lowest-bitrate entry is returned.
func SelectAudio(formats []model.StreamFormat, minKbps int) (model.StreamFormat, error) {
	var audios []model.StreamFormat
	for _, f := range formats {
		if f.HasAudio() && !f.HasVideo() {
			audios = append(audios, f)
		}
	}
	if len(audios) == 0 {
		return model.StreamFormat{}, ErrNoAudio
	}

	sort.SliceStable(audios, func(i, j int) bool {
		return audios[i].BitrateKbps < audios[j].BitrateKbps
	})

	for _, f := range audios {
		if f.BitrateKbps >= minKbps {
			return f, nil
		}
	}
	return audios[0], nil
}

// SelectVideo walks the quality ranks down from quality until a video-only
// entry in container is found.
func SelectVideo(formats []model.StreamFormat, quality, container string) (VideoSelection, error) {
	sel := VideoSelection{Requested: quality}

	rank := model.QualityRank(quality)
	if rank < 0 {
		return sel, fmt.Errorf("%w: unknown quality %q", ErrNoVideo, quality)
	}

	byLabel := make(map[string][]model.StreamFormat)
	for _, f := range formats {
		if !f.HasVideo() || f.HasAudio() || f.Container != container || f.QualityLabel == "" {
			continue
		}
		byLabel[f.QualityLabel] = append(byLabel[f.QualityLabel], f)
	}

	for ; rank >= 0; rank-- {
		label := model.VideoQualities[rank]
		if candidates := byLabel[label]; len(candidates) > 0 {
			sel.Format = pickBest(candidates)
			sel.Quality = label
			return sel, nil
		}
		if rank > 0 {
			sel.Downgrades = append(sel.Downgrades, Downgrade{From: label, To: model.VideoQualities[rank-1]})
		}
	}

	return sel, ErrNoVideo
}

// pickBest prefers the largest stream among entries sharing a label
func pickBest(candidates []model.StreamFormat) model.StreamFormat {
	best := candidates[0]
	for _, f := range candidates[1:] {
		if f.ContentLength > best.ContentLength {
			best = f
		}
	}
	return best
}
