package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/cwriter"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/ytget/yt-batch/internal/download"
	"github.com/ytget/yt-batch/internal/model"
)

// trackBar is the progress bar of one transfer
type trackBar struct {
	bar *mpb.Bar

	mu    sync.Mutex
	speed string
}

func (t *trackBar) setSpeed(mb float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.speed = fmt.Sprintf(SpeedFormat, mb)
}

func (t *trackBar) speedText(decor.Statistics) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.speed == "" {
		return DashPlaceholder
	}
	return t.speed
}

// Console presents queue events on a terminal
type Console struct {
	out      io.Writer
	loc      *Localization
	progress *mpb.Progress // nil in headless mode
	results  *ResultList

	mu       sync.Mutex
	jobID    string
	bars     map[model.Track]*trackBar
	building bool
	quarters map[model.Track]int // headless progress steps already printed
	done     chan struct{}
	doneOnce sync.Once
}

// NewConsole creates a presenter writing to out. Headless consoles print
// plain lines and draw no bars. The bar container lives until Close, so a
// cancelled run can still report its last job.
func NewConsole(out io.Writer, loc *Localization, headless bool) *Console {
	c := &Console{
		out:      out,
		loc:      loc,
		results:  &ResultList{},
		bars:     make(map[model.Track]*trackBar),
		quarters: make(map[model.Track]int),
		done:     make(chan struct{}),
	}
	if !headless {
		c.progress = mpb.New(
			mpb.WithOutput(out),
			mpb.WithWidth(ContainerWidth),
			mpb.WithRefreshRate(RefreshRate),
		)
	}
	return c
}

// IsTerminal reports whether out can draw progress bars. Bars written to a
// pipe or file are never rendered, so callers use a headless console there.
func IsTerminal(out io.Writer) bool {
	return cwriter.New(out).IsTerminal()
}

// Callbacks returns the runner callbacks bound to this console
func (c *Console) Callbacks() download.Callbacks {
	return download.Callbacks{
		OnProgress: c.OnProgress,
		OnItemEnd:  c.OnItemEnd,
		OnError:    c.OnError,
		OnComplete: c.OnComplete,
		OnWarning:  c.OnWarning,
	}
}

// Results returns the outcomes collected so far
func (c *Console) Results() *ResultList {
	return c.results
}

// Done is closed once the queue has completed
func (c *Console) Done() <-chan struct{} {
	return c.done
}

// Printf writes a line above the bars
func (c *Console) Printf(format string, v ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printfLocked(format, v...)
}

// OnProgress updates the bars of the active job
func (c *Console) OnProgress(d model.DownloadingData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d.JobID != c.jobID {
		c.dropBarsLocked()
		c.jobID = d.JobID
		c.building = false
		clear(c.quarters)
	}

	if d.Building && !c.building {
		c.building = true
		c.printfLocked("%s %s%s%s", IconMerge, c.loc.GetText(KeyMerging), MiddleDotSeparator, d.Title)
	}

	if c.progress == nil {
		c.printStepLocked(model.TrackVideo, d.Title, d.Video)
		c.printStepLocked(model.TrackAudio, d.Title, d.Audio)
		return
	}
	c.updateBarLocked(model.TrackVideo, d.Title, d.Video)
	c.updateBarLocked(model.TrackAudio, d.Title, d.Audio)
}

// OnItemEnd records and prints a success
func (c *Console) OnItemEnd(d model.DownloadedData) {
	c.results.AddSuccess(d)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.completeBarsLocked()

	line := fmt.Sprintf("%s %s%s%s", IconDone, c.loc.GetText(KeyDone), MiddleDotSeparator, d.OutputPath)
	if d.Video != nil {
		line += fmt.Sprintf("%s%s %.2f MB %s", MiddleDotSeparator, c.loc.GetText(KeyTrackVideo), d.Video.TotalMB, d.Video.Elapsed)
	}
	if d.Audio != nil {
		line += fmt.Sprintf("%s%s %.2f MB %s", MiddleDotSeparator, c.loc.GetText(KeyTrackAudio), d.Audio.TotalMB, d.Audio.Elapsed)
	}
	c.printfLocked("%s", line)
}

// OnError records and prints a failure
func (c *Console) OnError(url, message string) {
	c.results.AddFailure(url, message)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropBarsLocked()
	c.printfLocked("%s %s%s%s%s%s", IconError, c.loc.GetText(KeyFailed), MiddleDotSeparator, url, MiddleDotSeparator, message)
}

// OnWarning prints a non-fatal notice
func (c *Console) OnWarning(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printfLocked("%s %s%s%s", IconWarning, c.loc.GetText(KeyWarning), MiddleDotSeparator, message)
}

// OnComplete releases the bars and signals Done
func (c *Console) OnComplete() {
	c.mu.Lock()
	c.dropBarsLocked()
	c.mu.Unlock()

	c.doneOnce.Do(func() { close(c.done) })
}

// Close waits for the bar container to flush. It must be called once the
// queue has completed.
func (c *Console) Close() {
	if c.progress != nil {
		c.progress.Wait()
	}
}

func (c *Console) writer() io.Writer {
	if c.progress != nil {
		return c.progress
	}
	return c.out
}

func (c *Console) printfLocked(format string, v ...any) {
	if _, err := fmt.Fprintf(c.writer(), format+"\n", v...); err != nil && c.progress != nil {
		// container already shut down
		fmt.Fprintf(c.out, format+"\n", v...)
	}
}

// printStepLocked prints a headless progress line each time a track
// crosses another quarter of its size
func (c *Console) printStepLocked(track model.Track, title string, p *model.TrackProgress) {
	if p == nil || p.Total <= 0 {
		return
	}
	step := int(p.Percent()) / ProgressStepPercent
	if step <= c.quarters[track] {
		return
	}
	c.quarters[track] = step
	c.printfLocked("%s%s%s%s%d%%%s%s / %s", c.trackLabel(track), MiddleDotSeparator, title, MiddleDotSeparator,
		step*ProgressStepPercent, MiddleDotSeparator, formatFileSize(p.Downloaded), formatFileSize(p.Total))
}

func (c *Console) trackLabel(track model.Track) string {
	if track == model.TrackVideo {
		return c.loc.GetText(KeyTrackVideo)
	}
	return c.loc.GetText(KeyTrackAudio)
}

func (c *Console) updateBarLocked(track model.Track, title string, p *model.TrackProgress) {
	if p == nil {
		return
	}

	tb, ok := c.bars[track]
	if !ok {
		tb = &trackBar{}
		bar, err := c.progress.Add(0, mpb.BarStyle().Build(),
			mpb.PrependDecorators(
				decor.Name(c.trackLabel(track), decor.WC{W: TrackLabelWidth, C: decor.DindentRight}),
				decor.Name(truncate(title, TitleWidth), decor.WC{W: TitleWidth + 1, C: decor.DindentRight}),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WC{W: 22}),
				decor.Any(tb.speedText, decor.WC{W: 14}),
				decor.Percentage(decor.WC{W: 6}),
			),
			mpb.BarRemoveOnComplete(),
		)
		if err != nil {
			return
		}
		tb.bar = bar
		c.bars[track] = tb
	}

	if p.Total > 0 {
		tb.bar.SetTotal(p.Total, false)
	}
	tb.bar.SetCurrent(p.Downloaded)
	tb.setSpeed(p.SpeedMB)
	if p.Finished {
		tb.bar.SetTotal(-1, true)
	}
}

// completeBarsLocked marks every bar complete, which removes it
func (c *Console) completeBarsLocked() {
	for track, tb := range c.bars {
		tb.bar.SetTotal(-1, true)
		delete(c.bars, track)
	}
}

// dropBarsLocked aborts and removes every bar
func (c *Console) dropBarsLocked() {
	for track, tb := range c.bars {
		tb.bar.Abort(true)
		delete(c.bars, track)
	}
}
