package records

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memoryStore is an in-memory Store with the same state rules as the gorm store
type memoryStore struct {
	mu      sync.Mutex
	nextID  uint
	rows    map[uint]models.DocumentRecord
	failing error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[uint]models.DocumentRecord{}}
}

func (m *memoryStore) Insert(_ context.Context, rec *models.DocumentRecord) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return 0, &StoreError{Op: "insert", Err: m.failing}
	}
	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	m.rows[rec.ID] = *rec
	return rec.ID, nil
}

func (m *memoryStore) list(deleted bool) []models.DocumentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DocumentRecord
	for id := uint(1); id <= m.nextID; id++ {
		rec, ok := m.rows[id]
		if ok && rec.DeletedAt.Valid == deleted {
			out = append(out, rec)
		}
	}
	return out
}

func (m *memoryStore) ListActive(context.Context) ([]models.DocumentRecord, error) {
	return m.list(false), nil
}

func (m *memoryStore) ListDeleted(context.Context) ([]models.DocumentRecord, error) {
	return m.list(true), nil
}

func (m *memoryStore) GetByID(_ context.Context, id uint) (*models.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *memoryStore) update(id uint, deleted bool, fn func(*models.DocumentRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[id]
	if !ok || rec.DeletedAt.Valid != deleted {
		return ErrNotFound
	}
	fn(&rec)
	m.rows[id] = rec
	return nil
}

func (m *memoryStore) SoftDelete(_ context.Context, id uint) error {
	return m.update(id, false, func(r *models.DocumentRecord) {
		r.DeletedAt = gorm.DeletedAt{Time: time.Now().UTC(), Valid: true}
	})
}

func (m *memoryStore) Restore(_ context.Context, id uint) error {
	return m.update(id, true, func(r *models.DocumentRecord) {
		r.DeletedAt = gorm.DeletedAt{}
	})
}

func (m *memoryStore) PermanentlyDelete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[id]
	if !ok || !rec.DeletedAt.Valid {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Publish(e Event) {
	p.events = append(p.events, e)
}

type failingMailer struct{}

func (failingMailer) Send(context.Context, notify.Message) error {
	return errors.New("connection refused")
}

const actor = "6f1c2a9e-0000-4000-8000-000000000001"

func newTestService(t *testing.T) (*Service, *memoryStore, *recordingPublisher, *notify.LogMailer) {
	t.Helper()
	store := newMemoryStore()
	pub := &recordingPublisher{}
	mailer := notify.NewLogMailer(zap.NewNop())
	svc := NewService(store, Options{
		Director: "diretoria@example.com",
		Mailer:   mailer,
		Events:   pub,
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	return svc, store, pub, mailer
}

func ids(recs []models.DocumentRecord) []uint {
	out := make([]uint, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestServiceCreate(t *testing.T) {
	svc, _, pub, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, actor, validSubmission())
	require.NoError(t, err)
	assert.Equal(t, uint(1), rec.ID)
	assert.Equal(t, actor, rec.CreatedBy)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids(active))

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventCreated, pub.events[0].Type)
	assert.Equal(t, "2025-05-01T12:00:00Z", pub.events[0].At)
}

func TestServiceCreateRejectsInvalidWithoutWriting(t *testing.T) {
	svc, store, pub, _ := newTestService(t)
	ctx := context.Background()

	sub := validSubmission()
	sub.Company = Selection{models.OtherOption}
	sub.CompanyOther = "ACME"
	sub.Subject = Selection{models.OtherOption}

	_, err := svc.Create(ctx, actor, sub)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "subjectOther", verr.Field)
	assert.Empty(t, store.rows)
	assert.Empty(t, pub.events)

	_, err = svc.Create(ctx, "", validSubmission())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestServiceLifecycle(t *testing.T) {
	svc, _, pub, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, actor, validSubmission())
	require.NoError(t, err)
	second, err := svc.Create(ctx, actor, validSubmission())
	require.NoError(t, err)

	// soft delete: moves to the deleted list
	require.NoError(t, svc.SoftDelete(ctx, actor, first.ID))
	active, _ := svc.ListActive(ctx)
	deleted, _ := svc.ListDeleted(ctx)
	assert.Equal(t, []uint{second.ID}, ids(active))
	assert.Equal(t, []uint{first.ID}, ids(deleted))

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, got.Status())

	// restore: inverse
	require.NoError(t, svc.Restore(ctx, actor, first.ID))
	active, _ = svc.ListActive(ctx)
	deleted, _ = svc.ListDeleted(ctx)
	assert.Equal(t, []uint{first.ID, second.ID}, ids(active))
	assert.Empty(t, deleted)

	// permanent delete only from the deleted list
	err = svc.PermanentlyDelete(ctx, actor, first.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, svc.SoftDelete(ctx, actor, first.ID))
	require.NoError(t, svc.PermanentlyDelete(ctx, actor, first.ID))

	active, _ = svc.ListActive(ctx)
	deleted, _ = svc.ListDeleted(ctx)
	assert.Equal(t, []uint{second.ID}, ids(active))
	assert.Empty(t, deleted)

	_, err = svc.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var types []string
	for _, e := range pub.events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{
		EventCreated, EventCreated,
		EventDeleted, EventRestored, EventDeleted, EventRemoved,
	}, types)
}

func TestServiceTransitionErrors(t *testing.T) {
	svc, _, pub, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, actor, validSubmission())
	require.NoError(t, err)
	pub.events = nil

	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"soft delete missing", func() error { return svc.SoftDelete(ctx, actor, 99) }, ErrNotFound},
		{"restore missing", func() error { return svc.Restore(ctx, actor, 99) }, ErrNotFound},
		{"remove missing", func() error { return svc.PermanentlyDelete(ctx, actor, 99) }, ErrNotFound},
		{"restore active", func() error { return svc.Restore(ctx, actor, rec.ID) }, ErrInvalidTransition},
		{"remove active", func() error { return svc.PermanentlyDelete(ctx, actor, rec.ID) }, ErrInvalidTransition},
		{"anonymous delete", func() error { return svc.SoftDelete(ctx, "", rec.ID) }, ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.op(), tt.want)
			assert.True(t, IsClientError(tt.op()))
		})
	}

	require.NoError(t, svc.SoftDelete(ctx, actor, rec.ID))
	assert.ErrorIs(t, svc.SoftDelete(ctx, actor, rec.ID), ErrInvalidTransition)

	// only the successful soft delete was published
	require.Len(t, pub.events, 1)
	assert.Equal(t, EventDeleted, pub.events[0].Type)
}

func TestServiceStoreFailure(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.failing = errors.New("connection reset")

	_, err := svc.Create(context.Background(), actor, validSubmission())
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "insert", serr.Op)
	assert.False(t, IsClientError(err))
}

func TestServiceSendEmail(t *testing.T) {
	svc, _, pub, mailer := newTestService(t)
	ctx := context.Background()

	sub := validSubmission()
	sub.Company = Selection{models.OtherOption}
	sub.CompanyOther = "ACME"
	sub.DocumentType = "ONLINE"
	sub.OnlinePlatform = "DocuSign"
	rec, err := svc.Create(ctx, actor, sub)
	require.NoError(t, err)

	msg, err := svc.SendEmail(ctx, actor, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "diretoria@example.com", msg.To)
	assert.Equal(t, "Documento assinado #1 - ACME", msg.Subject)
	assert.Contains(t, msg.Body, "Empresa: ACME")
	assert.Contains(t, msg.Body, "Plataforma online: DocuSign")
	assert.Contains(t, msg.Body, "Data da assinatura: 14/03/2025")
	assert.Equal(t, []notify.Message{msg}, mailer.Sent())
	assert.Equal(t, EventEmailed, pub.events[len(pub.events)-1].Type)

	_, err = svc.SendEmail(ctx, actor, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.SoftDelete(ctx, actor, rec.ID))
	_, err = svc.SendEmail(ctx, actor, rec.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestServiceSendEmailMailerFailure(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, Options{Mailer: failingMailer{}})
	ctx := context.Background()

	rec, err := svc.Create(ctx, actor, validSubmission())
	require.NoError(t, err)

	_, err = svc.SendEmail(ctx, actor, rec.ID)
	assert.ErrorContains(t, err, "connection refused")
}
