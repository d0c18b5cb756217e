package model

// Package model defines domain data structures shared by the download core
// and its presenters: jobs, stream catalog entries, progress snapshots,
// outcomes, playlists and status enums.
