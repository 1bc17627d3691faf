package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/facturia/facturia/internal/auth"
	"github.com/facturia/facturia/internal/storage"
)

// ringCap is the display cap for the in-memory mirror. The durable table
// grows unboundedly.
const ringCap = 100

// Store is the durable sink for audit records.
type Store interface {
	AppendActionLog(ctx context.Context, entry *storage.ActionLog) error
}

// Recorder appends audit records to an in-memory ring buffer and,
// best-effort, to the durable store. Recording never fails the triggering
// action: persistence errors are logged and swallowed.
type Recorder struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries []*storage.ActionLog // newest last; Recent() reverses
}

// NewRecorder creates a Recorder.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (r *Recorder) SetClock(now func() time.Time) {
	r.now = now
}

// Record appends an audit entry. An empty action is classified from the
// description. The acting user is taken from the context when present.
func (r *Recorder) Record(ctx context.Context, action Action, description string) {
	if action == "" {
		action = Classify(description)
	}

	entry := &storage.ActionLog{
		ActionType:  string(action),
		Description: description,
		Timestamp:   r.now(),
	}
	if user := auth.UserFromContext(ctx); user != nil {
		entry.UserID = &user.ID
		entry.UserEmail = &user.Email
	}

	// Persist first: the store assigns LogID, and the entry must not be
	// visible to Recent() readers while still being mutated.
	if r.store != nil {
		if err := r.store.AppendActionLog(ctx, entry); err != nil {
			r.logger.Warn("failed to persist audit entry",
				"action", string(action),
				"error", err)
		}
	}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	if len(r.entries) > ringCap {
		r.entries = r.entries[len(r.entries)-ringCap:]
	}
	r.mu.Unlock()
}

// Recent returns a copy of the in-memory mirror, newest first.
func (r *Recorder) Recent() []*storage.ActionLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*storage.ActionLog, len(r.entries))
	for i, e := range r.entries {
		out[len(r.entries)-1-i] = e
	}
	return out
}
