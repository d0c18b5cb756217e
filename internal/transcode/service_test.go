package transcode

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const fakeFFmpeg = `#!/bin/sh
out=""
for a in "$@"; do out="$a"; done
if [ -n "$FAKE_FFMPEG_FAIL" ]; then
	printf 'Input #0, mp3\r' >&2
	echo "$FAKE_FFMPEG_FAIL" >&2
	printf partial > "$out"
	exit 1
fi
cat > "$out"
`

func writeFakeFFmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(fakeFFmpeg), 0o755); err != nil {
		t.Fatalf("Failed to write fake ffmpeg: %v", err)
	}
	return path
}

func discard() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

func TestBuildArgs_EncodeAudio(t *testing.T) {
	service := NewService("", discard())
	recipe := EncodeAudio(PipeInput(strings.NewReader("")), "/out/Song_256kbps.mp3", 256, "/tmp/art.jpg",
		&Metadata{Title: "Song", Artist: "Band"})

	args, err := service.BuildArgs(recipe)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expectedArgs := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-i", "/tmp/art.jpg",
		"-map", "0:0", "-map", "1:0",
		"-c:a", "libmp3lame",
		"-b:a", "256k",
		"-id3v2_version", "3",
		"-metadata", "title=Song",
		"-metadata", "artist=Band",
		"-f", "mp3",
		"/out/Song_256kbps.mp3",
	}
	if diff := cmp.Diff(expectedArgs, args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildArgs_EncodeAudioWithoutArtOrTags(t *testing.T) {
	service := NewService("", discard())
	recipe := EncodeAudio(FileInput("/in.webm"), "/out/a.mp3", 128, "", nil)

	args, err := service.BuildArgs(recipe)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expectedArgs := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", "/in.webm",
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", "128k",
		"-id3v2_version", "3",
		"-f", "mp3",
		"/out/a.mp3",
	}
	if diff := cmp.Diff(expectedArgs, args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildArgs_CopyVideoAndMux(t *testing.T) {
	service := NewService("", discard())

	args, err := service.BuildArgs(CopyVideo(PipeInput(strings.NewReader("")), "/out/.job.video.mp4"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", "pipe:0",
		"-c:v", "copy", "-an", "-f", "mp4", "/out/.job.video.mp4"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("CopyVideo args mismatch (-want +got):\n%s", diff)
	}

	args, err = service.BuildArgs(Mux("/v.mp4", "/a.mp3", "/out/Clip_720p.mp4"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want = []string{"-y", "-hide_banner", "-loglevel", "error",
		"-i", "/v.mp4", "-i", "/a.mp3",
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy", "-c:a", "aac", "-f", "mp4",
		"/out/Clip_720p.mp4"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("Mux args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildArgs_RejectsTwoPipes(t *testing.T) {
	service := NewService("", discard())
	recipe := Recipe{
		Inputs:     []Input{PipeInput(strings.NewReader("a")), PipeInput(strings.NewReader("b"))},
		OutputPath: "/out.mp4",
	}

	if _, err := service.BuildArgs(recipe); !errors.Is(err, ErrMultipleReaders) {
		t.Errorf("Expected ErrMultipleReaders, got %v", err)
	}
}

func TestRun_PipesStdinToOutput(t *testing.T) {
	service := NewService(writeFakeFFmpeg(t), discard())
	out := filepath.Join(t.TempDir(), "song.mp3")

	err := service.Run(context.Background(), EncodeAudio(PipeInput(strings.NewReader("audio-bytes")), out, 192, "", nil))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("Expected piped bytes in output, got %q", data)
	}
}

func TestRun_FailureRemovesOutput(t *testing.T) {
	service := NewService(writeFakeFFmpeg(t), discard())
	t.Setenv("FAKE_FFMPEG_FAIL", "pipe:0: Invalid data found when processing input")
	out := filepath.Join(t.TempDir(), "song.mp3")

	err := service.Run(context.Background(), EncodeAudio(FileInput("/dev/null"), out, 192, "", nil))

	var ffErr *Error
	if !errors.As(err, &ffErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if ffErr.LastLine != "pipe:0: Invalid data found when processing input" {
		t.Errorf("Unexpected last line %q", ffErr.LastLine)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("Expected last line in message, got %q", err.Error())
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("Expected partial output to be removed")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestRun_StdinReadErrorFails(t *testing.T) {
	service := NewService(writeFakeFFmpeg(t), discard())
	out := filepath.Join(t.TempDir(), "clip.mp4")

	src := io.MultiReader(strings.NewReader("head"), failingReader{})
	if err := service.Run(context.Background(), CopyVideo(PipeInput(src), out)); err == nil {
		t.Error("Expected read error to fail the run")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	service := NewService(writeFakeFFmpeg(t), discard())
	out := filepath.Join(t.TempDir(), "clip.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := service.Run(ctx, CopyVideo(FileInput("/dev/null"), out))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	missing := NewService(filepath.Join(t.TempDir(), "no-such-ffmpeg"), discard())
	if err := missing.Available(); err == nil {
		t.Error("Expected error for missing executable")
	}

	present := NewService(writeFakeFFmpeg(t), discard())
	if err := present.Available(); err != nil {
		t.Errorf("Expected fake ffmpeg to be found, got %v", err)
	}
}

func TestTailWriter_LastLine(t *testing.T) {
	w := &tailWriter{max: 16}
	io.WriteString(w, "first line\nsize=  10kB\rsize=  20kB\r\n\n")
	if got := w.LastLine(); got != "size=  20kB" {
		t.Errorf("Expected last progress line, got %q", got)
	}

	io.WriteString(w, strings.Repeat("x", 40)+"\nend")
	if got := w.LastLine(); got != "end" {
		t.Errorf("Expected 'end', got %q", got)
	}
	if len(w.buf) > 16 {
		t.Errorf("Expected buffer capped at 16 bytes, got %d", len(w.buf))
	}
}
