package ui

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ytget/yt-batch/internal/model"
)

func TestConsole_HeadlessLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, NewLocalization(), true)
	cb := c.Callbacks()

	cb.OnProgress(model.DownloadingData{JobID: "job-1", Title: "Clip", Audio: &model.TrackProgress{}, Video: &model.TrackProgress{}})
	cb.OnProgress(model.DownloadingData{JobID: "job-1", Title: "Clip", Building: true})
	cb.OnProgress(model.DownloadingData{JobID: "job-1", Title: "Clip", Building: true})
	cb.OnWarning("1080p not found, trying 720p...")
	cb.OnItemEnd(model.DownloadedData{
		URL:        "urlB",
		OutputPath: "/videos/Clip_720p.mp4",
		Video:      &model.TrackTotals{TotalMB: 12.5, Elapsed: "00:00:04"},
		Audio:      &model.TrackTotals{TotalMB: 3.25, Elapsed: "00:00:02"},
	})
	cb.OnError("urlC", "no audio found")
	cb.OnComplete()
	c.Close()

	out := buf.String()
	expected := []string{
		"Merging · Clip",
		"Warning · 1080p not found, trying 720p...",
		"Done · /videos/Clip_720p.mp4 · video 12.50 MB 00:00:04 · audio 3.25 MB 00:00:02",
		"Failed · urlC · no audio found",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "Merging"); n != 1 {
		t.Errorf("Expected one merging line, got %d", n)
	}

	select {
	case <-c.Done():
	default:
		t.Error("Expected Done to be closed after OnComplete")
	}

	succeeded, failed := c.Results().Counts()
	if succeeded != 1 || failed != 1 {
		t.Errorf("Expected 1 success and 1 failure, got %d and %d", succeeded, failed)
	}
}

func TestConsole_BarsShutDown(t *testing.T) {
	c := NewConsole(io.Discard, NewLocalization(), false)

	c.OnProgress(model.DownloadingData{
		JobID: "job-1",
		Title: "Song",
		Audio: &model.TrackProgress{Downloaded: 512, Total: 1024, SpeedMB: 0.5},
	})
	c.OnProgress(model.DownloadingData{
		JobID: "job-1",
		Title: "Song",
		Audio: &model.TrackProgress{Downloaded: 1024, Total: 1024, Finished: true},
	})
	c.OnItemEnd(model.DownloadedData{URL: "a", OutputPath: "/music/Song.mp3"})

	// a failed job leaves a half-filled bar behind
	c.OnProgress(model.DownloadingData{
		JobID: "job-2",
		Title: "Other",
		Audio: &model.TrackProgress{Downloaded: 10, Total: 1024},
	})
	c.OnComplete()

	closed := make(chan struct{})
	go func() {
		c.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
}

func TestConsole_HeadlessProgressSteps(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, NewLocalization(), true)

	for _, n := range []int64{0, 100, 300, 520, 600, 1024} {
		c.OnProgress(model.DownloadingData{
			JobID: "job-1",
			Title: "Song",
			Audio: &model.TrackProgress{Downloaded: n, Total: 1024},
		})
	}
	// a new job starts counting again
	c.OnProgress(model.DownloadingData{
		JobID: "job-2",
		Title: "Next",
		Audio: &model.TrackProgress{Downloaded: 300, Total: 1024},
	})

	out := buf.String()
	expected := []string{
		"audio · Song · 25% · 300 B / 1.0 KB",
		"audio · Song · 50% · 520 B / 1.0 KB",
		"audio · Song · 100% · 1.0 KB / 1.0 KB",
		"audio · Next · 25% · 300 B / 1.0 KB",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "· Song ·"); n != 3 {
		t.Errorf("Expected 3 progress lines for Song, got %d:\n%s", n, out)
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("Expected a buffer not to be a terminal")
	}
}

func TestConsole_ReportsAfterInterrupt(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, NewLocalization(), false)

	c.OnProgress(model.DownloadingData{
		JobID: "job-1",
		Title: "Song",
		Audio: &model.TrackProgress{Downloaded: 10, Total: 1024},
	})
	c.Printf("Stopping download...")
	// the video bar of a dual-track job appears only after the interrupt
	c.OnProgress(model.DownloadingData{
		JobID: "job-1",
		Title: "Song",
		Audio: &model.TrackProgress{Downloaded: 20, Total: 1024},
		Video: &model.TrackProgress{Downloaded: 5, Total: 4096},
	})
	c.OnError("urlA", "download cancelled")
	c.OnComplete()
	c.Close()

	// the container is gone; late lines still reach the terminal
	c.OnProgress(model.DownloadingData{
		JobID: "job-2",
		Title: "Late",
		Audio: &model.TrackProgress{Downloaded: 1, Total: 2},
	})
	c.OnWarning("late notice")

	if _, failed := c.Results().Counts(); failed != 1 {
		t.Errorf("Expected the cancelled job to be recorded, got %d failures", failed)
	}
	if out := buf.String(); !strings.Contains(out, "Warning · late notice") {
		t.Errorf("Expected late warning in output, got:\n%s", out)
	}
}
