package ui

import "testing"

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, test := range tests {
		if got := formatFileSize(test.bytes); got != test.expected {
			t.Errorf("formatFileSize(%d) = '%s', expected '%s'", test.bytes, got, test.expected)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=abc", false},
		{"http://youtu.be/abc", false},
		{"ftp://example.com/file", true},
		{"youtube.com/watch?v=abc", true},
		{"https://", true},
	}

	for _, test := range tests {
		err := ValidateURL(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected 'short', got '%s'", got)
	}
	if got := truncate("Привет, мир", 7); got != "Привет…" {
		t.Errorf("Expected 'Привет…', got '%s'", got)
	}
}

func TestLocalization(t *testing.T) {
	l := NewLocalization()
	if l.GetText(KeyDone) != "Done" {
		t.Errorf("Expected 'Done', got '%s'", l.GetText(KeyDone))
	}

	l.SetLanguage("ru")
	if l.GetCurrentLanguage() != "ru" {
		t.Errorf("Expected 'ru', got '%s'", l.GetCurrentLanguage())
	}
	if l.GetText(KeyDone) != "Готово" {
		t.Errorf("Expected Russian text, got '%s'", l.GetText(KeyDone))
	}

	l.SetLanguage("xx")
	if l.GetCurrentLanguage() != "ru" {
		t.Error("Expected unknown language to be ignored")
	}
	if l.GetText("missing_key") != "missing_key" {
		t.Error("Expected missing key to fall back to itself")
	}

	for lang := range l.GetAvailableLanguages() {
		l.SetLanguage(lang)
		if l.GetText(KeySummary) == KeySummary {
			t.Errorf("Language %s lacks the summary text", lang)
		}
	}
}
