// Package download runs a queue of URLs one job at a time. An mp3 job pipes
// a single audio stream through ffmpeg; an mp4 job fetches video and audio
// concurrently into per-job temporaries and muxes them. Progress, warnings
// and per-URL outcomes are reported through Callbacks.
package download
