package session_test

import (
	"context"
	"sync"

	"github.com/wastelink/wastelink/internal/profile"
)

// stubFetcher answers immediately from fixed records and errors.
type stubFetcher struct {
	mu      sync.Mutex
	records map[string]*profile.Record
	errs    map[string]error
	calls   []string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		records: make(map[string]*profile.Record),
		errs:    make(map[string]error),
	}
}

func (f *stubFetcher) withRole(uid string, r profile.Role) *stubFetcher {
	f.records[uid] = &profile.Record{UID: uid, Role: r}
	return f
}

func (f *stubFetcher) withErr(uid string, err error) *stubFetcher {
	f.errs[uid] = err
	return f
}

func (f *stubFetcher) FetchProfile(_ context.Context, uid string) (*profile.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, uid)
	if err, ok := f.errs[uid]; ok {
		return nil, err
	}
	if rec, ok := f.records[uid]; ok {
		return rec, nil
	}
	return nil, profile.ErrProfileNotFound
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type reply struct {
	rec *profile.Record
	err error
}

type pendingCall struct {
	uid   string
	reply chan reply
}

// controlledFetcher parks every lookup until the test replies to it.
// With ignoreCancel set it keeps waiting after its context is cancelled,
// which models a backend that answers late.
type controlledFetcher struct {
	calls        chan pendingCall
	ignoreCancel bool
}

func newControlledFetcher(ignoreCancel bool) *controlledFetcher {
	return &controlledFetcher{
		calls:        make(chan pendingCall, 16),
		ignoreCancel: ignoreCancel,
	}
}

func (f *controlledFetcher) FetchProfile(ctx context.Context, uid string) (*profile.Record, error) {
	c := pendingCall{uid: uid, reply: make(chan reply, 1)}
	f.calls <- c

	if f.ignoreCancel {
		r := <-c.reply
		return r.rec, r.err
	}

	select {
	case r := <-c.reply:
		return r.rec, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c pendingCall) resolve(r profile.Role) {
	c.reply <- reply{rec: &profile.Record{UID: c.uid, Role: r}}
}

func (c pendingCall) fail(err error) {
	c.reply <- reply{err: err}
}

// memoryRepository is a profile.Repository over a map of raw documents.
type memoryRepository struct {
	docs map[string]*profile.Document
}

func (m *memoryRepository) Create(_ context.Context, doc *profile.Document) error {
	m.docs[doc.UID] = doc
	return nil
}

func (m *memoryRepository) GetByUID(_ context.Context, uid string) (*profile.Document, error) {
	d, ok := m.docs[uid]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return d, nil
}
