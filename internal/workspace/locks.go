package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"cutroom/internal/failure"
	"cutroom/internal/registry"
)

const (
	lockRetryDelay = 25 * time.Millisecond
	// lockChaseAttempts bounds how often lockProject follows a project that
	// keeps getting renamed while it waits.
	lockChaseAttempts = 5
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// nameLocks serializes lifecycle operations per project name, inside the
// process with a mutex and across processes with a lock file.
type nameLocks struct {
	dir string

	mu      sync.Mutex
	entries map[string]*lockEntry
}

func newNameLocks(dir string) *nameLocks {
	return &nameLocks{dir: dir, entries: make(map[string]*lockEntry)}
}

func (l *nameLocks) lockPath(name string) string {
	sum := sha256.Sum256([]byte(name))
	return filepath.Join(l.dir, hex.EncodeToString(sum[:8])+".lock")
}

func (l *nameLocks) entry(name string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[name]
	if !ok {
		e = &lockEntry{}
		l.entries[name] = e
	}
	e.refs++
	return e
}

func (l *nameLocks) release(name string, e *lockEntry) {
	e.mu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, name)
	}
}

// acquire locks every distinct name in sorted order and returns a function
// that releases them in reverse.
func (l *nameLocks) acquire(ctx context.Context, names ...string) (func(), error) {
	unique := make(map[string]struct{}, len(names))
	sorted := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := unique[name]; ok || name == "" {
			continue
		}
		unique[name] = struct{}{}
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	var releases []func()
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, name := range sorted {
		release, err := l.acquireOne(ctx, name)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

func (l *nameLocks) acquireOne(ctx context.Context, name string) (func(), error) {
	e := l.entry(name)
	e.mu.Lock()

	fileLock := flock.New(l.lockPath(name))
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		l.release(name, e)
		if err == nil {
			err = ctx.Err()
		}
		return nil, failure.Wrap(failure.ErrIO, "lock project", fmt.Sprintf("%q", name), err)
	}
	return func() {
		_ = fileLock.Unlock()
		l.release(name, e)
	}, nil
}

// lockProject locks the current name of project id, together with the name
// returned by related (which may be empty), and returns the row as read
// under the lock. When the project was renamed between the first read and
// the lock, the locks are dropped and taken again for the new name.
func (m *Manager) lockProject(ctx context.Context, id int64, related func(*registry.Project) string) (*registry.Project, func(), error) {
	project, err := m.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	for attempt := 0; attempt < lockChaseAttempts; attempt++ {
		names := []string{project.Name}
		if related != nil {
			names = append(names, related(project))
		}
		release, err := m.locks.acquire(ctx, names...)
		if err != nil {
			return nil, nil, err
		}
		current, err := m.catalog.GetByID(ctx, id)
		if err != nil {
			release()
			return nil, nil, err
		}
		if current.Name == project.Name {
			return current, release, nil
		}
		release()
		project = current
	}
	return nil, nil, failure.Wrap(failure.ErrIO, "lock project",
		fmt.Sprintf("project %d kept changing name while waiting for its lock", id), nil)
}
