package handler

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/leadline/internal/database"
	"github.com/dukerupert/leadline/internal/logging"
	"github.com/dukerupert/leadline/internal/model"
	ws "github.com/dukerupert/leadline/internal/websocket"
	"github.com/dukerupert/leadline/web"
)

type recordingHub struct {
	mu   sync.Mutex
	msgs []ws.Message
}

func (h *recordingHub) Broadcast(msg ws.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

func (h *recordingHub) last() (ws.Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.msgs) == 0 {
		return ws.Message{}, false
	}
	return h.msgs[len(h.msgs)-1], true
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	tmpl, err := web.Templates(TemplateFuncs(time.UTC))
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	return NewRenderer(tmpl, "1588-0000", "<p>policy text</p>", logging.Discard())
}

// fakeCreator is a ConsultationCreator that counts calls.
type fakeCreator struct {
	calls int
	err   error
}

func (f *fakeCreator) Create(_ context.Context, nc model.NewConsultation) (*model.Consultation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.Consultation{ID: int64(f.calls), Name: nc.Name, PhoneNumber: nc.PhoneNumber, AgreedToPrivacyPolicy: nc.AgreedToPrivacyPolicy}, nil
}

// fakeNotifier records notified ids and the context they were sent with.
// When release is set it blocks until the channel is closed.
type fakeNotifier struct {
	mu      sync.Mutex
	ids     []int64
	ctxErr  error
	hasDL   bool
	release chan struct{}
	err     error
}

func (f *fakeNotifier) NotifyConsultation(ctx context.Context, rec *model.Consultation) error {
	if f.release != nil {
		<-f.release
	}
	_, hasDL := ctx.Deadline()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, rec.ID)
	f.ctxErr = ctx.Err()
	f.hasDL = hasDL
	return f.err
}

func (f *fakeNotifier) notified() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}
