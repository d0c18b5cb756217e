package download

import (
	"errors"
	"path/filepath"

	"github.com/ytget/yt-batch/internal/platform"
)

// scratch owns the temporary files of one job. Names are prefixed with the
// job ID so a stale file from another run never becomes an input.
type scratch struct {
	dir   string
	jobID string
	keep  bool
	paths []string
}

func newScratch(dir, jobID string, keep bool) *scratch {
	return &scratch{dir: dir, jobID: jobID, keep: keep}
}

// Path registers and returns the temporary path for name
func (s *scratch) Path(name string) string {
	p := filepath.Join(s.dir, "."+s.jobID+"."+name)
	s.paths = append(s.paths, p)
	return p
}

// Paths returns every registered path
func (s *scratch) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Cleanup removes every registered file unless the job keeps its temporaries
func (s *scratch) Cleanup() error {
	if s.keep {
		return nil
	}
	var errs []error
	for _, p := range s.paths {
		if err := platform.RemoveIfExists(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
