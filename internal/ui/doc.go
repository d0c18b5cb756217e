package ui

// Package ui renders queue progress, warnings and the final results list on
// the terminal. Progress bars are drawn with github.com/vbauerster/mpb/v8;
// headless mode prints plain lines only.
