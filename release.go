package scoped

import (
	"context"

	"go.uber.org/multierr"
)

type releaseFunc func(ctx context.Context) error

type releaseEntry struct {
	owner string
	fn    releaseFunc
}

// releaseStack records acquired resources in acquisition order and unwinds
// them strictly in reverse, regardless of outcome. A failing release never
// stops the unwind; failures are offered to extensions and the unhandled
// ones aggregated into the returned error.
type releaseStack struct {
	entries []releaseEntry
}

func (s *releaseStack) push(owner string, fn releaseFunc) {
	s.entries = append(s.entries, releaseEntry{owner: owner, fn: fn})
}

func (s *releaseStack) unwind(ctx context.Context, exts []Extension) error {
	var err error

	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]

		rerr := entry.fn(ctx)
		if rerr == nil {
			continue
		}

		releaseErr := &ReleaseError{Owner: entry.owner, Err: rerr}

		handled := false
		for _, ext := range exts {
			if ext.OnReleaseError(releaseErr) {
				handled = true
				break
			}
		}
		if !handled {
			err = multierr.Append(err, releaseErr)
		}
	}

	s.entries = nil
	return err
}
