package download

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ytget/yt-batch/internal/model"
)

type byteLog struct {
	counts []int64
}

func (b *byteLog) OnBytes(track model.Track, downloaded, total int64) {
	b.counts = append(b.counts, downloaded)
}

func TestProgressReader_CountsBytes(t *testing.T) {
	log := &byteLog{}
	r := newProgressReader(strings.NewReader("hello world"), model.TrackAudio, 11, log)

	buf := make([]byte, 4)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if r.Count() != 11 {
		t.Errorf("Expected 11 bytes, got %d", r.Count())
	}
	if r.Err() != nil {
		t.Errorf("Expected EOF not to be recorded, got %v", r.Err())
	}
	for i := 1; i < len(log.counts); i++ {
		if log.counts[i] < log.counts[i-1] {
			t.Fatalf("Expected non-decreasing counts, got %v", log.counts)
		}
	}
	if last := log.counts[len(log.counts)-1]; last != 11 {
		t.Errorf("Expected last report of 11, got %d", last)
	}
}

func TestProgressReader_RecordsReadError(t *testing.T) {
	boom := errors.New("connection reset")
	src := io.MultiReader(strings.NewReader("abc"), errReader{err: boom})
	r := newProgressReader(src, model.TrackVideo, 0, nil)

	if _, err := io.ReadAll(r); !errors.Is(err, boom) {
		t.Fatalf("Expected read error, got %v", err)
	}
	if !errors.Is(r.Err(), boom) {
		t.Errorf("Expected recorded error, got %v", r.Err())
	}
	if r.Count() != 3 {
		t.Errorf("Expected 3 bytes, got %d", r.Count())
	}
}

func TestTransferError(t *testing.T) {
	boom := errors.New("reset")
	err := error(&TransferError{Track: model.TrackAudio, Err: boom})

	if err.Error() != "audio transfer failed: reset" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if !errors.Is(err, boom) {
		t.Error("Expected TransferError to unwrap")
	}
}
