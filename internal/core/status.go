package core

import (
	"context"

	"github.com/ryrobes/rewindex/internal/watch"
)

// Status implements status(root): backend reachability, document counts,
// and the watcher's lifecycle state when one is running.
type Status struct {
	BackendReachable bool
	FilesCount       uint64
	VersionsCount    uint64
	WatcherRunning   bool
	WatcherState     watch.State
	WatcherType      string
}

func (p *Project) Status(ctx context.Context) Status {
	st := Status{}

	filesCount, err := p.be.Count(ctx, p.filesIdx)
	st.BackendReachable = err == nil
	st.FilesCount = filesCount

	if versCount, err := p.be.Count(ctx, p.versIdx); err == nil {
		st.VersionsCount = versCount
	}

	if p.sup != nil {
		st.WatcherRunning = true
		st.WatcherState = p.sup.State()
		st.WatcherType = p.sup.WatcherType()
	}
	return st
}
