package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/tool"
	"github.com/fatflowers/memberpay/pkg/types"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidActivation = errors.New("invalid membership activation")
	ErrStaleActivation   = errors.New("membership already activated by a newer order")
)

// StaleActivationError is returned when a newer activation is already stored.
// Stored is the membership left in place.
type StaleActivationError struct {
	Stored models.UserMembership
}

func (e *StaleActivationError) Error() string {
	return fmt.Sprintf("%s: stored order %s", ErrStaleActivation, e.Stored.LastOrderID)
}

func (e *StaleActivationError) Unwrap() error { return ErrStaleActivation }

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// Activation sets a user's membership to active until ExpireAt.
// ActivatedAt is the completion time of the order that paid for it.
type Activation struct {
	UserID      string
	Plan        string
	OrderID     string
	ExpireAt    time.Time
	ActivatedAt time.Time
	Reason      types.MembershipChangeReason
}

func (a *Activation) validate() error {
	switch {
	case a == nil:
		return fmt.Errorf("%w: activation is nil", ErrInvalidActivation)
	case a.UserID == "":
		return fmt.Errorf("%w: user id is empty", ErrInvalidActivation)
	case a.ActivatedAt.IsZero() || !a.ExpireAt.After(a.ActivatedAt):
		return fmt.Errorf("%w: expire_at must be after activated_at", ErrInvalidActivation)
	}
	return nil
}

// Activate upserts the user's membership. A replay of the stored activation
// is a no-op, so callers may retry freely. An activation older than the stored
// one changes nothing and returns a *StaleActivationError.
func (s *Service) Activate(ctx context.Context, a *Activation) error {
	if err := a.validate(); err != nil {
		return err
	}
	logger := logctx.FromCtx(ctx, s.log)

	var before, after *models.UserMembership
	var stale *StaleActivationError
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// concurrent first purchases converge on one row, which is then locked
		placeholder := &models.UserMembership{
			ID:     tool.GenerateUUIDV7(),
			UserID: a.UserID,
			Status: types.MembershipStatusInactive,
		}
		ins := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(placeholder)
		if ins.Error != nil {
			return fmt.Errorf("failed to init membership: %w", ins.Error)
		}
		created := ins.RowsAffected == 1

		var original models.UserMembership
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", a.UserID).
			First(&original).Error; err != nil {
			return fmt.Errorf("failed to get original membership: %w", err)
		}

		if original.ActivatedAt != nil {
			if a.ActivatedAt.Before(*original.ActivatedAt) {
				stale = &StaleActivationError{Stored: original}
				return nil
			}
			if original.LastOrderID == a.OrderID && original.ActivatedAt.Equal(a.ActivatedAt) {
				return nil
			}
		}

		expireAt, activatedAt := a.ExpireAt.UTC(), a.ActivatedAt.UTC()
		m := &models.UserMembership{
			ID:          original.ID,
			UserID:      a.UserID,
			Status:      types.MembershipStatusActive,
			Plan:        a.Plan,
			ExpireAt:    &expireAt,
			ActivatedAt: &activatedAt,
			LastOrderID: a.OrderID,
			CreatedAt:   original.CreatedAt,
		}
		if !created {
			cp := original
			before = &cp
		}

		if err := tx.Save(m).Error; err != nil {
			return fmt.Errorf("failed to upsert membership: %w", err)
		}
		after = m
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to activate membership: %w", err)
	}
	if stale != nil {
		logger.Warnw("skip stale membership activation",
			"user_id", a.UserID, "order_id", a.OrderID,
			"activated_at", a.ActivatedAt, "stored_activated_at", stale.Stored.ActivatedAt,
			"stored_order_id", stale.Stored.LastOrderID)
		return stale
	}

	if after != nil {
		logger.Infow("membership activated",
			"user_id", a.UserID, "plan", a.Plan, "order_id", a.OrderID,
			"expire_at", after.ExpireAt, "reason", a.Reason)
		// write change log asynchronously; errors are logged but not returned
		go s.saveLog(logger, a, before, after)
	}
	return nil
}

func (s *Service) saveLog(logger *zap.SugaredLogger, a *Activation, before, after *models.UserMembership) {
	log := &models.MembershipLog{
		ID:      tool.GenerateUUIDV7(),
		UserID:  a.UserID,
		OrderID: a.OrderID,
		Reason:  a.Reason,
		Before:  datatypes.NewJSONType(before),
		After:   datatypes.NewJSONType(after),
	}
	if err := s.db.Save(log).Error; err != nil {
		logger.Errorf("failed to save membership log: %v", err)
	}
}

// Get returns the user's membership, or an inactive record when the user
// never purchased one.
func (s *Service) Get(ctx context.Context, userID string) (*models.UserMembership, error) {
	var m models.UserMembership
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.UserMembership{UserID: userID, Status: types.MembershipStatusInactive}, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

// GetInfo returns the client view of the user's membership.
func (s *Service) GetInfo(ctx context.Context, userID string) (*types.UserMembershipInfo, error) {
	m, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.Info(s.now()), nil
}
