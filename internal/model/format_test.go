package model

import "testing"

func TestQualityRank(t *testing.T) {
	tests := []struct {
		label    string
		expected int
	}{
		{"144p", 0},
		{"720p", 4},
		{"720p60", 5},
		{"1080p60", 7},
		{"4320p", -1},
		{"", -1},
	}

	for _, test := range tests {
		if got := QualityRank(test.label); got != test.expected {
			t.Errorf("QualityRank(%q) = %d, expected %d", test.label, got, test.expected)
		}
	}
}

func TestContainerFromMime(t *testing.T) {
	tests := []struct {
		mime     string
		expected string
	}{
		{`audio/mp4; codecs="mp4a.40.2"`, "mp4"},
		{`video/webm; codecs="vp9"`, "webm"},
		{"video/mp4", "mp4"},
		{"", ""},
	}

	for _, test := range tests {
		if got := ContainerFromMime(test.mime); got != test.expected {
			t.Errorf("ContainerFromMime(%q) = %q, expected %q", test.mime, got, test.expected)
		}
	}
}

func TestOutputFormat(t *testing.T) {
	if !FormatMP3.IsValid() || !FormatMP4.IsValid() {
		t.Error("Expected mp3 and mp4 to be valid")
	}
	if OutputFormat("flac").IsValid() {
		t.Error("Expected flac to be invalid")
	}
	if FormatMP4.Ext() != ".mp4" {
		t.Errorf("Expected '.mp4', got '%s'", FormatMP4.Ext())
	}
}

func TestStreamFormat_Tracks(t *testing.T) {
	audio := StreamFormat{Kind: StreamAudioOnly}
	video := StreamFormat{Kind: StreamVideoOnly}
	muxed := StreamFormat{Kind: StreamMuxed}

	if !audio.HasAudio() || audio.HasVideo() {
		t.Error("audio-only entry reports wrong tracks")
	}
	if video.HasAudio() || !video.HasVideo() {
		t.Error("video-only entry reports wrong tracks")
	}
	if !muxed.HasAudio() || !muxed.HasVideo() {
		t.Error("muxed entry reports wrong tracks")
	}
}
