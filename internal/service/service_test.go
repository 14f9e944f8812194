package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"receipt-bridge/internal/model"
)

// memoryRepo is an in-memory ProfileRepository
type memoryRepo struct {
	mu      sync.Mutex
	stored  model.ProfileSet
	saves   int
	saveErr error
}

func (r *memoryRepo) Load(ctx context.Context) (model.ProfileSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored == nil {
		return model.ProfileSet{}, nil
	}
	return r.stored, nil
}

func (r *memoryRepo) Save(ctx context.Context, profiles model.ProfileSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = profiles
	return nil
}

// recordingTransport captures every job and tracks overlapping sends
type recordingTransport struct {
	kind  model.TransportKind
	delay time.Duration
	err   error
	block bool

	mu      sync.Mutex
	jobs    [][]byte
	active  int
	overlap bool
}

func (t *recordingTransport) Kind() model.TransportKind { return t.kind }

func (t *recordingTransport) Send(ctx context.Context, profile *model.PrinterProfile, data []byte) error {
	t.mu.Lock()
	t.active++
	if t.active > 1 {
		t.overlap = true
	}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.active--
		t.mu.Unlock()
	}()

	if t.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
	if t.err != nil {
		return t.err
	}

	t.mu.Lock()
	t.jobs = append(t.jobs, data)
	t.mu.Unlock()
	return nil
}

func (t *recordingTransport) sent() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]byte(nil), t.jobs...)
}

var errRefused = errors.New("connection refused")
