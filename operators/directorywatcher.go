package operators

import (
	"context"
	"path"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/joelanford/multilang"
)

// DirectoryWatcher is a spout that emits (name, operation) for every file
// event in a directory whose base name matches pattern and whose operation is
// in operations. Each emitted tuple carries a message id and is replayed when
// the parent fails it.
type DirectoryWatcher struct {
	directory  string
	pattern    *regexp.Regexp
	operations fsnotify.Op

	oc      *multilang.OperatorContext
	watcher *fsnotify.Watcher
	events  chan fsnotify.Event
	errs    chan error

	mu       sync.Mutex
	pending  []fsnotify.Event
	inflight map[string]fsnotify.Event
}

func NewDirectoryWatcher(directory string, pattern *regexp.Regexp, operations fsnotify.Op) *DirectoryWatcher {
	return &DirectoryWatcher{
		directory:  directory,
		pattern:    pattern,
		operations: operations,
		inflight:   make(map[string]fsnotify.Event),
	}
}

func (s *DirectoryWatcher) Setup(ctx context.Context, oc *multilang.OperatorContext) error {
	s.oc = oc
	if s.events != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.directory); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher
	s.events = watcher.Events
	s.errs = watcher.Errors
	return nil
}

// Next emits at most one pending event.
func (s *DirectoryWatcher) Next(ctx context.Context) error {
	s.drain()

	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil
	}
	e := s.pending[0]
	s.pending = s.pending[1:]
	id := uuid.NewString()
	s.inflight[id] = e
	s.mu.Unlock()

	_, err := s.oc.Emit(multilang.NewValues(e.Name, e.Op.String()), multilang.WithMessageID(id))
	return err
}

func (s *DirectoryWatcher) Ack(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
	return nil
}

func (s *DirectoryWatcher) Fail(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.inflight[id]; ok {
		delete(s.inflight, id)
		s.pending = append(s.pending, e)
	}
	return nil
}

func (s *DirectoryWatcher) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

// drain moves every event already delivered by the watcher into pending
// without blocking.
func (s *DirectoryWatcher) drain() {
	for {
		select {
		case e, ok := <-s.events:
			if !ok {
				return
			}
			if s.pattern.MatchString(path.Base(e.Name)) && s.operations&e.Op != 0 {
				s.mu.Lock()
				s.pending = append(s.pending, e)
				s.mu.Unlock()
			}
		case err, ok := <-s.errs:
			if !ok {
				s.errs = nil
				continue
			}
			s.oc.Log().Infof("%s error: %s", s.oc.Name(), err)
		default:
			return
		}
	}
}
