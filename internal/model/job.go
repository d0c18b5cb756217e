package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Track identifies one of the two transfers a job can run
type Track string

const (
	TrackAudio Track = "audio"
	TrackVideo Track = "video"
)

// Job represents a single queued URL being downloaded and transcoded
type Job struct {
	ID         string
	URL        string
	Format     OutputFormat
	Status     JobStatus
	Title      string    // sanitized title, empty until resolved
	Quality    string    // resolved video quality label, empty for audio jobs
	LastError  string    // last error message if any
	OutputPath string    // path to the produced file
	TempPaths  []string  // temporaries owned by the job
	StartedAt  time.Time // when the job was dequeued
	FinishedAt time.Time // when the job reached a terminal state
}

// GetDisplayTitle returns the title, the output filename, or the URL in order of preference
func (j *Job) GetDisplayTitle() string {
	if j.Title != "" {
		return j.Title
	}

	if j.OutputPath != "" {
		parts := strings.FieldsFunc(j.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return j.URL
}

// TrackProgress is the live state of one transfer
type TrackProgress struct {
	Downloaded   int64   // bytes
	Total        int64   // bytes, 0 if unknown
	DownloadedMB float64 // two decimals
	TotalMB      float64 // two decimals
	SpeedMB      float64 // MB/s, two decimals
	Elapsed      string  // HH:MM:SS since job start
	Finished     bool
}

// Percent returns the completion ratio in [0, 100]
func (p *TrackProgress) Percent() float64 {
	if p == nil || p.Total <= 0 {
		return 0
	}
	pct := float64(p.Downloaded) / float64(p.Total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// DownloadingData is the progress snapshot sent to presenters
type DownloadingData struct {
	JobID    string
	Started  time.Time
	Building bool // muxing has started
	Title    string
	URL      string
	Audio    *TrackProgress // nil when the job has no audio transfer
	Video    *TrackProgress // nil when the job has no video transfer
}

// TrackTotals summarizes a finished transfer
type TrackTotals struct {
	TotalMB float64
	Elapsed string
}

// DownloadedData is the success record of a job
type DownloadedData struct {
	JobID      string
	Started    time.Time
	Ended      time.Time
	Title      string
	URL        string
	OutputPath string
	Audio      *TrackTotals
	Video      *TrackTotals
}

// DownloadFailure is the failure record of a job
type DownloadFailure struct {
	URL   string
	Error string
}

// Outcome holds exactly one of Success or Failure
type Outcome struct {
	Success *DownloadedData
	Failure *DownloadFailure
}

// URL returns the source URL of either record
func (o Outcome) URL() string {
	if o.Success != nil {
		return o.Success.URL
	}
	if o.Failure != nil {
		return o.Failure.URL
	}
	return ""
}

// FormatElapsed returns d formatted as HH:MM:SS
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// BytesToMB converts bytes to megabytes rounded to two decimals
func BytesToMB(n int64) float64 {
	return RoundMB(float64(n) / 1024 / 1024)
}

// RoundMB rounds v to two decimals
func RoundMB(v float64) float64 {
	return math.Round(v*100) / 100
}
