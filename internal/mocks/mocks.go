// Package mocks holds test doubles for the domain ports.
package mocks

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bryanwahyu/scanora/internal/domain/ai"
	"github.com/bryanwahyu/scanora/internal/domain/reporterrors"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

// -- Object Store --

// StoredObject is one object held by MemoryStore.
type StoredObject struct {
	Body []byte
	Opts reports.PutOptions
}

// MemoryStore is an in-memory reports.ObjectStore. Writes are recorded in
// order so tests can assert on overwrite sequences.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]StoredObject
	Writes  []string // bucket/key in write order

	// FailPut makes writes to matching keys fail.
	FailPut func(key string) error
	// FailGet makes reads of matching keys fail.
	FailGet func(key string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]StoredObject)}
}

func path(bucket, key string) string { return bucket + "/" + key }

func (m *MemoryStore) PutObject(_ context.Context, bucket, key string, body []byte, opts reports.PutOptions) error {
	if m.FailPut != nil {
		if err := m.FailPut(key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path(bucket, key)] = StoredObject{Body: append([]byte(nil), body...), Opts: opts}
	m.Writes = append(m.Writes, path(bucket, key))
	return nil
}

func (m *MemoryStore) UploadFile(ctx context.Context, bucket, key, localPath string, opts reports.PutOptions) error {
	b, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	return m.PutObject(ctx, bucket, key, b, opts)
}

func (m *MemoryStore) UploadAndCleanup(ctx context.Context, bucket, key, localPath string, opts reports.PutOptions) error {
	if err := m.UploadFile(ctx, bucket, key, localPath, opts); err != nil {
		return err
	}
	_ = os.Remove(localPath)
	return nil
}

func (m *MemoryStore) DownloadToFile(ctx context.Context, bucket, key, localPath string) error {
	b, err := m.ReadObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	return os.WriteFile(localPath, b, 0o600)
}

func (m *MemoryStore) ReadObject(_ context.Context, bucket, key string) ([]byte, error) {
	if m.FailGet != nil {
		if err := m.FailGet(key); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", path(bucket, key), os.ErrNotExist)
	}
	return append([]byte(nil), obj.Body...), nil
}

func (m *MemoryStore) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s/%s?X-Amz-Expires=%d", bucket, key, int(expiry.Seconds())), nil
}

func (m *MemoryStore) Check(context.Context) error { return nil }

// Object returns a stored object and whether it exists.
func (m *MemoryStore) Object(bucket, key string) (StoredObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path(bucket, key)]
	return obj, ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// -- Dispatcher Mock --

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, job reports.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// -- Secret Store Mock --

type MockSecretStore struct {
	mock.Mock
}

func (m *MockSecretStore) GetSecretValue(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// -- AI Client Mock --

type MockAIClient struct {
	mock.Mock
}

// Generate returns the configured text. The first return value may also be a
// func(context.Context, string) string computed from the prompt.
func (m *MockAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	if fn, ok := args.Get(0).(func(context.Context, string) string); ok {
		return fn(ctx, prompt), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

// Factory returns an ai.ClientFactory handing out m and recording the key.
func (m *MockAIClient) Factory(gotKey *string) ai.ClientFactory {
	return func(apiKey string) (ai.Client, error) {
		if gotKey != nil {
			*gotKey = apiKey
		}
		return m, nil
	}
}

// -- Ledger --

// MemoryLedger implements reports.Repository and reporterrors.Repository.
type MemoryLedger struct {
	mu       sync.Mutex
	requests map[string]reports.Request
	errs     []reporterrors.ReportError
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{requests: make(map[string]reports.Request)}
}

func (l *MemoryLedger) Save(_ context.Context, r *reports.Request) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests[r.ID] = *r
	return nil
}

func (l *MemoryLedger) UpdateStatus(_ context.Context, id string, status reports.Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.requests[id]
	if !ok {
		return reports.ErrNotFound
	}
	r.Status = status
	l.requests[id] = r
	return nil
}

func (l *MemoryLedger) Get(_ context.Context, id string) (*reports.Request, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.requests[id]
	if !ok {
		return nil, reports.ErrNotFound
	}
	return &r, nil
}

// Errors is the reporterrors.Repository view of the ledger.
func (l *MemoryLedger) Errors() *MemoryErrorLog { return &MemoryErrorLog{l: l} }

type MemoryErrorLog struct{ l *MemoryLedger }

func (e *MemoryErrorLog) Save(_ context.Context, re *reporterrors.ReportError) error {
	e.l.mu.Lock()
	defer e.l.mu.Unlock()
	e.l.errs = append(e.l.errs, *re)
	return nil
}

func (e *MemoryErrorLog) ListByRequest(_ context.Context, requestID string, limit int) ([]*reporterrors.ReportError, error) {
	e.l.mu.Lock()
	defer e.l.mu.Unlock()
	var out []*reporterrors.ReportError
	for i := len(e.l.errs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if e.l.errs[i].RequestID == requestID {
			re := e.l.errs[i]
			out = append(out, &re)
		}
	}
	return out, nil
}
