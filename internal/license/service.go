package license

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"winsbygroup.com/keyserver/internal/keycodec"
	"winsbygroup.com/keyserver/internal/sqlite"
)

const dateLayout = "2006-01-02"

// Service is the license registry: it issues keys, applies the block/unblock
// state machine and answers verification queries.
type Service struct {
	repo  Repository
	db    *sqlx.DB
	codec *keycodec.Codec
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(db *sqlx.DB, codec *keycodec.Codec, opts ...Option) *Service {
	s := &Service{
		db:    db,
		repo:  New(db),
		codec: codec,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Issue derives a key for the hardware id and an expiry Days from today and
// stores a new Active record.
func (s *Service) Issue(ctx context.Context, req *IssueRequest) (*Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// expiry uses the host's local calendar date, created the UTC one
	now := s.now()
	expiry := time.Date(now.Year(), now.Month(), now.Day()+req.Days, 0, 0, 0, 0, now.Location())

	rec := &Record{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Mobile:     optional(req.Mobile),
		Email:      optional(req.Email),
		Country:    optional(req.Country),
		HardwareID: req.HardwareID,
		Key:        s.codec.DeriveKey(req.HardwareID, expiry),
		Expiry:     expiry.Format(dateLayout),
		Status:     StatusActive,
		Created:    now.UTC().Format(dateLayout),
	}

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Upsert(ctx, tx, rec)
	})
	if sqlite.IsUniqueConstraintError(err) {
		return nil, ErrDuplicateKey
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return rec, nil
}

// ToggleBlock blocks an Active or Expired record, or unblocks a Blocked one.
// Unblocking lands on Active while today is on or before the expiry date and
// on Expired afterwards. It returns the new status.
func (s *Service) ToggleBlock(ctx context.Context, id string) (Status, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	next, err := nextStatus(rec.Status, todayNumber(s.now()), rec.Expiry)
	if err != nil {
		return "", err
	}
	rec.Status = next

	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Upsert(ctx, tx, rec)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return next, nil
}

func nextStatus(current Status, today int, expiry string) (Status, error) {
	if current != StatusBlocked {
		return StatusBlocked, nil
	}
	exp, err := dateNumber(expiry)
	if err != nil {
		return "", err
	}
	if today > exp {
		return StatusExpired, nil
	}
	return StatusActive, nil
}

// Delete removes the record. Deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.DeleteByID(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return rec, nil
}

// List returns every record in creation order.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return recs, nil
}

// Expiring returns records whose expiry is before the given YYYY-MM-DD date,
// latest expiry first. An empty before means today.
func (s *Service) Expiring(ctx context.Context, before string) ([]Record, error) {
	if before == "" {
		before = s.now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, before); err != nil {
		return nil, ErrInvalidDate
	}

	recs, err := s.repo.ListExpiring(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return recs, nil
}
