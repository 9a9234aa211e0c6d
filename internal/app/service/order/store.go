package order

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Completion is written together with status=completed in one update.
type Completion struct {
	GatewayPaymentID string
	GatewaySignature string
	CompletedAt      time.Time
}

// OrderStore persists membership orders.
type OrderStore interface {
	Create(ctx context.Context, o *models.MembershipOrder) error
	Get(ctx context.Context, id string) (*models.MembershipOrder, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.MembershipOrder, error)
	// Complete transitions a pending order to completed. It reports false when
	// the order was not pending any more.
	Complete(ctx context.Context, id string, c *Completion) (bool, error)
	MarkMembershipApplied(ctx context.Context, id string, at time.Time) error
	// ListUnapplied returns completed orders whose membership write never
	// landed, completed before the given time, oldest first.
	ListUnapplied(ctx context.Context, completedBefore time.Time, limit int) ([]*models.MembershipOrder, error)
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Create(ctx context.Context, o *models.MembershipOrder) error {
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.MembershipOrder, error) {
	var o models.MembershipOrder
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (s *Store) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.MembershipOrder, error) {
	var o models.MembershipOrder
	if err := s.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: gateway order %s", ErrOrderNotFound, gatewayOrderID)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (s *Store) Complete(ctx context.Context, id string, c *Completion) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.MembershipOrder{}).
		Where("id = ? AND status = ?", id, types.OrderStatusPending).
		Updates(map[string]any{
			"status":             types.OrderStatusCompleted,
			"gateway_payment_id": c.GatewayPaymentID,
			"gateway_signature":  c.GatewaySignature,
			"completed_at":       c.CompletedAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to complete order: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) MarkMembershipApplied(ctx context.Context, id string, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&models.MembershipOrder{}).
		Where("id = ? AND status = ? AND membership_applied_at IS NULL", id, types.OrderStatusCompleted).
		Update("membership_applied_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark membership applied: %w", err)
	}
	return nil
}

func (s *Store) ListUnapplied(ctx context.Context, completedBefore time.Time, limit int) ([]*models.MembershipOrder, error) {
	var rows []*models.MembershipOrder
	err := s.db.WithContext(ctx).
		Where("status = ? AND membership_applied_at IS NULL AND completed_at < ?", types.OrderStatusCompleted, completedBefore).
		Order("completed_at asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unapplied orders: %w", err)
	}
	return rows, nil
}

// Scan order request/response for admin list pages.
type ScanOrdersRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanOrdersResponse struct {
	Items []*models.MembershipOrder `json:"items"`
	Total int64                     `json:"total"`
}

// ScanFields are the columns admin filters and sorting may reference.
var ScanFields = []string{
	"id", "user_id", "plan_id", "status", "gateway_order_id", "gateway_payment_id",
	"currency", "amount", "created_at", "completed_at", "membership_applied_at",
}

// filtersAnd is a helper to combine multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// Scan implements paginated admin listing with filters.
func (s *Store) Scan(ctx context.Context, req *ScanOrdersRequest) (*ScanOrdersResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	for _, f := range req.Filters {
		if err := f.Validate(ScanFields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if req.SortBy != "" {
		if !slices.Contains(ScanFields, req.SortBy) {
			return nil, fmt.Errorf("%w: sort field not allowed: %s", ErrInvalidRequest, req.SortBy)
		}
	}
	if req.Size <= 0 || req.Size > 500 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.MembershipOrder{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var rows []*models.MembershipOrder
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}})
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &ScanOrdersResponse{Items: rows, Total: total}, nil
}
