package ui

import "time"

// Console-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (symbols)
const (
	IconDone    = "✔"
	IconError   = "✖"
	IconWarning = "!"
	IconMerge   = "⧉"
)

// Text fragments
const (
	MiddleDotSeparator = " · "
	DashPlaceholder    = "—"
	SpeedFormat        = "%.2f MB/s"
)

// Layout sizing
const (
	ContainerWidth  = 64
	TrackLabelWidth = 7
	TitleWidth      = 32
	TitleEllipsis   = "…"
)

// Refresh behavior
const (
	RefreshRate = 150 * time.Millisecond

	// ProgressStepPercent spaces headless progress lines
	ProgressStepPercent = 25
)

// File size units
const (
	FileSizeUnit  = 1024
	FileSizeUnits = "KMGTPE"
)
