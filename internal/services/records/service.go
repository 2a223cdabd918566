package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ipex/docregistro/internal/metrics"
	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/notify"
	"go.uber.org/zap"
)

// Options configures a Service
type Options struct {
	Catalog  models.Catalog // option lists; DefaultCatalog when nil
	Director string         // fixed recipient of record notifications
	Mailer   notify.Mailer
	Events   Publisher // optional
	Logger   *zap.Logger
	Now      func() time.Time
}

// Service implements the record lifecycle on top of a Store
type Service struct {
	store    Store
	catalog  models.Catalog
	director string
	mailer   notify.Mailer
	events   Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates the record service
func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:    store,
		catalog:  opts.Catalog,
		director: opts.Director,
		mailer:   opts.Mailer,
		events:   opts.Events,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if s.catalog == nil {
		s.catalog = models.DefaultCatalog
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.mailer == nil {
		s.mailer = notify.NewLogMailer(s.logger)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Catalog returns the option lists used for validation
func (s *Service) Catalog() models.Catalog {
	return s.catalog
}

// Create validates a submission and stores it on behalf of actorID
func (s *Service) Create(ctx context.Context, actorID string, sub Submission) (*models.DocumentRecord, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	rec, err := ValidateAll(sub, s.catalog)
	if err != nil {
		metrics.ValidationFailures.Inc()
		return nil, err
	}
	rec.CreatedBy = actorID

	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id

	s.logger.Info("Document record created", zap.Uint("id", id), zap.String("createdBy", actorID))
	metrics.RecordTransitions.WithLabelValues("create").Inc()
	s.publish(EventCreated, id)
	return rec, nil
}

// ListActive returns the records that are not deleted
func (s *Service) ListActive(ctx context.Context) ([]models.DocumentRecord, error) {
	return s.store.ListActive(ctx)
}

// ListDeleted returns the soft-deleted records
func (s *Service) ListDeleted(ctx context.Context) ([]models.DocumentRecord, error) {
	return s.store.ListDeleted(ctx)
}

// List returns the active or the deleted set
func (s *Service) List(ctx context.Context, status models.RecordStatus) ([]models.DocumentRecord, error) {
	if status == models.StatusDeleted {
		return s.ListDeleted(ctx)
	}
	return s.ListActive(ctx)
}

// Get returns a record in either state
func (s *Service) Get(ctx context.Context, id uint) (*models.DocumentRecord, error) {
	return s.store.GetByID(ctx, id)
}

// SoftDelete moves an active record to the deleted list
func (s *Service) SoftDelete(ctx context.Context, actorID string, id uint) error {
	return s.transition(ctx, actorID, id, models.StatusActive, "delete", EventDeleted, s.store.SoftDelete)
}

// Restore moves a deleted record back to the active list
func (s *Service) Restore(ctx context.Context, actorID string, id uint) error {
	return s.transition(ctx, actorID, id, models.StatusDeleted, "restore", EventRestored, s.store.Restore)
}

// PermanentlyDelete removes a deleted record for good
func (s *Service) PermanentlyDelete(ctx context.Context, actorID string, id uint) error {
	return s.transition(ctx, actorID, id, models.StatusDeleted, "remove", EventRemoved, s.store.PermanentlyDelete)
}

func (s *Service) transition(ctx context.Context, actorID string, id uint, from models.RecordStatus, op, event string, apply func(context.Context, uint) error) error {
	if actorID == "" {
		return ErrUnauthenticated
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status() != from {
		return fmt.Errorf("%w: cannot %s a record that is %s", ErrInvalidTransition, op, rec.Status())
	}

	if err := apply(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Document record "+op, zap.Uint("id", id), zap.String("actor", actorID))
	metrics.RecordTransitions.WithLabelValues(op).Inc()
	s.publish(event, id)
	return nil
}

// SendEmail notifies the director about an active record
func (s *Service) SendEmail(ctx context.Context, actorID string, id uint) (notify.Message, error) {
	if actorID == "" {
		return notify.Message{}, ErrUnauthenticated
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return notify.Message{}, err
	}
	if rec.Status() != models.StatusActive {
		return notify.Message{}, fmt.Errorf("%w: cannot email a deleted record", ErrInvalidTransition)
	}

	msg := ComposeNotification(Display(*rec), s.director)
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues("error").Inc()
		return notify.Message{}, fmt.Errorf("notify director: %w", err)
	}

	s.logger.Info("Director notified", zap.Uint("id", id), zap.String("to", msg.To))
	metrics.EmailsSent.WithLabelValues("ok").Inc()
	s.publish(EventEmailed, id)
	return msg, nil
}

func (s *Service) publish(eventType string, id uint) {
	if s.events == nil {
		return
	}
	s.events.Publish(Event{Type: eventType, ID: id, At: s.now().UTC().Format(time.RFC3339)})
}

// IsClientError reports whether err is caused by the caller rather than the store
func IsClientError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrUnauthenticated)
}
