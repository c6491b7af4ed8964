package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecsetu/portal/internal/core/domain"
	"github.com/ecsetu/portal/internal/core/ports"
)

const (
	channelBuffer  = 64
	defaultTimeout = 5 * time.Second
)

// ErrClosed is returned by Load and Flush once the queue has been closed.
var ErrClosed = errors.New("snapshot queue closed")

type opKind int

const (
	opLoad opKind = iota
	opSave
	opPatchRole
	opDelete
	opFlush
)

func (k opKind) String() string {
	switch k {
	case opLoad:
		return "load"
	case opSave:
		return "save"
	case opPatchRole:
		return "patch_role"
	case opDelete:
		return "delete"
	default:
		return "flush"
	}
}

type loadResult struct {
	raw []byte
	err error
}

type job struct {
	kind     opKind
	snapshot domain.Snapshot
	role     domain.Role
	reply    chan loadResult
}

// SnapshotQueue routes every snapshot operation through one worker goroutine,
// so a read-modify-write never interleaves with another write. It implements
// ports.SnapshotPersister.
type SnapshotQueue struct {
	store ports.SnapshotStore
	jobs  chan job
	log   zerolog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewSnapshotQueue creates a queue in front of store. Call Start before use.
func NewSnapshotQueue(store ports.SnapshotStore, log zerolog.Logger) *SnapshotQueue {
	return &SnapshotQueue{
		store: store,
		jobs:  make(chan job, channelBuffer),
		log:   log.With().Str("component", "snapshot_queue").Logger(),
		done:  make(chan struct{}),
	}
}

// Start launches the worker. It exits when Close drains the queue or ctx is
// cancelled.
func (q *SnapshotQueue) Start(ctx context.Context) {
	go q.run(ctx)
}

// Close stops accepting work and waits for queued operations to finish.
func (q *SnapshotQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	<-q.done
}

// Load returns the stored snapshot after every earlier operation has run.
func (q *SnapshotQueue) Load(ctx context.Context) ([]byte, error) {
	reply := make(chan loadResult, 1)
	if !q.enqueue(job{kind: opLoad, reply: reply}) {
		return nil, ErrClosed
	}
	select {
	case res := <-reply:
		return res.raw, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.done:
		return nil, ErrClosed
	}
}

// Save replaces the stored snapshot.
func (q *SnapshotQueue) Save(snapshot domain.Snapshot) {
	q.enqueue(job{kind: opSave, snapshot: snapshot})
}

// PatchRole rewrites the role field of the stored snapshot, if there is one.
func (q *SnapshotQueue) PatchRole(role domain.Role) {
	q.enqueue(job{kind: opPatchRole, role: role})
}

// Delete removes the stored snapshot.
func (q *SnapshotQueue) Delete() {
	q.enqueue(job{kind: opDelete})
}

// Flush waits until every operation enqueued before it has been applied.
func (q *SnapshotQueue) Flush(ctx context.Context) error {
	reply := make(chan loadResult, 1)
	if !q.enqueue(job{kind: opFlush, reply: reply}) {
		return ErrClosed
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrClosed
	}
}

func (q *SnapshotQueue) enqueue(j job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.log.Warn().Str("op", j.kind.String()).Msg("snapshot queue closed, operation dropped")
		return false
	}
	select {
	case q.jobs <- j:
		return true
	case <-q.done:
		q.log.Warn().Str("op", j.kind.String()).Msg("snapshot worker stopped, operation dropped")
		return false
	}
}

func (q *SnapshotQueue) run(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-q.jobs:
			if !ok {
				return
			}
			q.apply(ctx, j)
		}
	}
}

func (q *SnapshotQueue) apply(ctx context.Context, j job) {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var err error
	switch j.kind {
	case opLoad:
		raw, loadErr := q.store.Load(opCtx)
		j.reply <- loadResult{raw: raw, err: loadErr}
		return
	case opFlush:
		j.reply <- loadResult{}
		return
	case opSave:
		err = q.save(opCtx, j.snapshot)
	case opPatchRole:
		err = q.patchRole(opCtx, j.role)
	case opDelete:
		err = q.store.Delete(opCtx)
	}
	if err != nil {
		q.log.Error().Err(err).Str("op", j.kind.String()).Msg("snapshot write failed")
	}
}

func (q *SnapshotQueue) save(ctx context.Context, s domain.Snapshot) error {
	raw, err := s.Encode()
	if err != nil {
		return err
	}
	return q.store.Save(ctx, raw)
}

func (q *SnapshotQueue) patchRole(ctx context.Context, role domain.Role) error {
	raw, err := q.store.Load(ctx)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	patched, err := domain.PatchSnapshotRole(raw, role)
	if err != nil {
		return err
	}
	return q.store.Save(ctx, patched)
}
