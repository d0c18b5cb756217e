package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// FFmpeg constants
const (
	FFmpegCommand = "ffmpeg"
	LogLevel      = "error"
	StdinTarget   = "pipe:0"

	// WaitDelay bounds how long Run waits for stdin copying after ffmpeg exits
	WaitDelay = 2 * time.Second

	// stderrTail is how much ffmpeg diagnostic output is kept for errors
	stderrTail = 4096
)

var ErrMultipleReaders = errors.New("only one input may be read from stdin")

// Error is returned when ffmpeg exits with a failure
type Error struct {
	Args     []string
	LastLine string // last diagnostic line printed by ffmpeg
	Err      error
}

func (e *Error) Error() string {
	if e.LastLine == "" {
		return fmt.Sprintf("ffmpeg failed: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg failed: %s: %v", e.LastLine, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Logger is the logging surface used by the service
type Logger interface {
	Printf(format string, v ...any)
}

// Service runs ffmpeg recipes
type Service struct {
	command string
	logger  Logger
}

// NewService creates a service running the given ffmpeg executable
func NewService(command string, logger Logger) *Service {
	if command == "" {
		command = FFmpegCommand
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{command: command, logger: logger}
}

// Command returns the ffmpeg executable used by the service
func (s *Service) Command() string {
	return s.command
}

// Available checks that the ffmpeg executable can be found
func (s *Service) Available() error {
	if _, err := exec.LookPath(s.command); err != nil {
		return fmt.Errorf("ffmpeg not found (%s): %w", s.command, err)
	}
	return nil
}

// BuildArgs builds the ffmpeg command arguments for a recipe
func (s *Service) BuildArgs(r Recipe) ([]string, error) {
	// Overwrite output, only report errors
	args := []string{"-y", "-hide_banner", "-loglevel", LogLevel}

	readers := 0
	for _, in := range r.Inputs {
		if in.Reader != nil {
			readers++
			args = append(args, "-i", StdinTarget)
			continue
		}
		args = append(args, "-i", in.Path)
	}
	if readers > 1 {
		return nil, ErrMultipleReaders
	}

	args = append(args, r.Args...)
	args = append(args, r.OutputPath)
	return args, nil
}

// Run executes a recipe and blocks until ffmpeg exits. The partial output
// file is removed on failure.
func (s *Service) Run(ctx context.Context, r Recipe) error {
	args, err := s.BuildArgs(r)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.WaitDelay = WaitDelay
	for _, in := range r.Inputs {
		if in.Reader != nil {
			cmd.Stdin = in.Reader
		}
	}
	tail := &tailWriter{max: stderrTail}
	cmd.Stderr = tail

	if err := cmd.Run(); err != nil {
		os.Remove(r.OutputPath)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Printf("ffmpeg failed for %s: %v", r.OutputPath, err)
		return &Error{Args: args, LastLine: tail.LastLine(), Err: err}
	}
	return nil
}

// tailWriter keeps the end of ffmpeg's stderr
type tailWriter struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	if len(w.buf) > w.max {
		w.buf = w.buf[len(w.buf)-w.max:]
	}
	return len(p), nil
}

// LastLine returns the last non-empty line, treating CR as a line break
func (w *tailWriter) LastLine() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	lines := bytes.FieldsFunc(w.buf, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(string(lines[i])); line != "" {
			return line
		}
	}
	return ""
}

var _ io.Writer = (*tailWriter)(nil)
