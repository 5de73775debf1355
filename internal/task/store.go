package task

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"devchron/internal/logging"
)

// DefaultKey is the storage key holding the serialized collection.
const DefaultKey = "@devchron_tasks"

// KV is the durable storage the store writes its snapshot to.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

type EventKind int

const (
	EventChanged EventKind = iota
	EventPersistFailed
)

// Event is delivered to subscribers after every mutation (with the new
// snapshot) and whenever a background write fails (with the error). Version
// increases with every change to the collection; a subscriber holding a newer
// snapshot from Snapshot should ignore changed events with a version not
// above its own.
type Event struct {
	Kind    EventKind
	Tasks   []Task
	Version uint64
	Err     error
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store owns the task collection. Every mutation is applied in memory before
// it returns; the whole collection is then written to the KV in the
// background.
type Store struct {
	mu          sync.RWMutex
	key         string
	now         func() time.Time
	newID       func() string
	tasks       []Task
	lastCreated time.Time
	gen         uint64
	version     uint64
	closed      bool

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int

	w *writer
}

func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		key:   DefaultKey,
		now:   time.Now,
		newID: newUUID,
		tasks: []Task{},
		subs:  make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.w = newWriter(kv, s.key, s.persistFailed)
	return s
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Initialize replaces the in-memory collection with the persisted one. A
// missing key yields an empty collection. A payload that cannot be decoded
// leaves the collection empty and returns an error wrapping ErrLoad; the
// store stays usable and the next mutation overwrites the bad payload.
func (s *Store) Initialize(ctx context.Context) error {
	raw, ok, err := s.w.kv.Get(ctx, s.key)
	if err != nil {
		logging.Error("store", "read %s: %v", s.key, err)
		return fmt.Errorf("read tasks: %w", err)
	}

	var tasks []Task
	var loadErr error
	if ok {
		tasks, loadErr = Decode(raw)
		if loadErr != nil {
			logging.Error("store", "discarding unreadable tasks payload (%d bytes): %v", len(raw), loadErr)
			tasks = nil
		}
	}
	if tasks == nil {
		tasks = []Task{}
	}

	s.mu.Lock()
	s.tasks = tasks
	s.lastCreated = time.Time{}
	for _, t := range tasks {
		if t.CreatedAt.After(s.lastCreated) {
			s.lastCreated = t.CreatedAt
		}
	}
	s.version++
	s.publish(Event{Kind: EventChanged, Tasks: s.snapshotLocked(), Version: s.version})
	s.mu.Unlock()

	logging.Info("store", "loaded %d tasks", len(tasks))
	return loadErr
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Snapshot returns a copy of the collection with its version.
func (s *Store) Snapshot() ([]Task, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), s.version
}

func (s *Store) Get(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.tasks[i], nil
}

// Add creates a task from d. Priority defaults to medium and category to work.
func (s *Store) Add(d Draft) (Task, error) {
	t := Task{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		DueDate:     d.DueDate,
		DueTime:     d.DueTime,
		Priority:    d.Priority,
		Category:    d.Category,
		Location:    d.Location,
		IsCompleted: d.IsCompleted,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = CategoryWork
	}
	if err := validate(t); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Task{}, ErrClosed
	}

	id, err := s.uniqueIDLocked()
	if err != nil {
		return Task{}, err
	}
	t.ID = id
	t.CreatedAt = s.createdAtLocked()
	s.tasks = append(s.tasks, t)
	s.commitLocked()

	logging.Debug("store", "added %s %q", t.ID, logging.Truncate(t.Title, 40))
	return t, nil
}

// Update merges p into the task with the given id.
func (s *Store) Update(id string, p Patch) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Task{}, ErrClosed
	}

	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated := p.apply(s.tasks[i])
	if err := validate(updated); err != nil {
		return Task{}, err
	}
	s.tasks[i] = updated
	s.commitLocked()

	logging.Debug("store", "updated %s", id)
	return updated, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.commitLocked()

	logging.Debug("store", "deleted %s", id)
	return nil
}

// Complete flips IsCompleted on the task with the given id.
func (s *Store) Complete(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Task{}, ErrClosed
	}

	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.tasks[i].IsCompleted = !s.tasks[i].IsCompleted
	s.commitLocked()
	return s.tasks[i], nil
}

// Flush blocks until the durable copy reflects every mutation made before
// the call, and reports the outcome of the latest write.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()
	if gen == 0 {
		return nil
	}
	return s.w.wait(ctx, gen)
}

// Subscribe returns a channel of change events and a cancel func. Slow
// subscribers lose older events, never the newest one.
func (s *Store) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 4)

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		close(ch)
		return ch, func() {}
	}
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()
	s.mu.RUnlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close stops accepting mutations, writes any pending snapshot and closes
// all subscriptions.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.w.close(ctx)

	s.subsMu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.subsMu.Unlock()
	return err
}

func (s *Store) commitLocked() {
	s.gen++
	data, err := Encode(s.tasks)
	if err != nil {
		s.persistFailed(fmt.Errorf("%w: %w", ErrPersistence, err))
	} else {
		s.w.enqueue(s.gen, data)
	}
	s.version++
	s.publish(Event{Kind: EventChanged, Tasks: s.snapshotLocked(), Version: s.version})
}

func (s *Store) persistFailed(err error) {
	logging.Error("store", "%v", err)
	s.publish(Event{Kind: EventPersistFailed, Err: err})
}

func (s *Store) publish(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Store) snapshotLocked() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueIDLocked() (string, error) {
	for i := 0; i < 3; i++ {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate task id: no unique id after 3 attempts")
}

// createdAtLocked never goes backwards, even if the wall clock does.
func (s *Store) createdAtLocked() time.Time {
	now := s.now().UTC().Truncate(time.Millisecond)
	if now.Before(s.lastCreated) {
		now = s.lastCreated
	}
	s.lastCreated = now
	return now
}

// Encode serializes a collection as a JSON array.
func Encode(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a JSON array of tasks and rejects duplicate ids.
func Decode(raw string) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %q", ErrLoad, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}
