package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatisticType string

const (
	// Orders
	StatisticTypeOrderCountByStatus       StatisticType = "order_count_by_status"
	StatisticTypeDailyCompletedOrderCount StatisticType = "daily_completed_order_count"
	StatisticTypeTotalGmv                 StatisticType = "total_gmv"
	StatisticTypePendingReconcileCount    StatisticType = "pending_reconcile_count"

	// Memberships
	StatisticTypeActiveMembershipCount StatisticType = "active_membership_count"
	StatisticTypeMembershipCountByPlan StatisticType = "membership_count_by_plan"
)

// AllStatisticTypes is used when a request names no data items.
var AllStatisticTypes = []StatisticType{
	StatisticTypeOrderCountByStatus,
	StatisticTypeDailyCompletedOrderCount,
	StatisticTypeTotalGmv,
	StatisticTypePendingReconcileCount,
	StatisticTypeActiveMembershipCount,
	StatisticTypeMembershipCountByPlan,
}

// orderFilterFields are the order columns statistic filters may reference.
var orderFilterFields = []string{"plan_id", "currency", "created_at", "completed_at", "user_id"}

var orderStatistics = []StatisticType{
	StatisticTypeOrderCountByStatus,
	StatisticTypeDailyCompletedOrderCount,
	StatisticTypeTotalGmv,
	StatisticTypePendingReconcileCount,
}

type StatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type StatisticRequest struct {
	// Filters apply to order statistics only.
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*StatisticDataItem  `json:"data_items"`
}

func (r *StatisticRequest) Validate() error {
	for _, f := range r.Filters {
		if err := f.Validate(orderFilterFields); err != nil {
			return err
		}
	}
	for _, di := range r.DataItems {
		if di == nil || !lo.Contains(AllStatisticTypes, di.ID) {
			return fmt.Errorf("invalid data item")
		}
	}
	return nil
}

// Build composes a WHERE clause from the filters.
func (r *StatisticRequest) Build(builder clause.Builder) {
	if len(r.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(r.Filters))
	for _, f := range r.Filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

type StatisticResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type StatisticResponse struct {
	DataItems map[StatisticType][]StatisticResponseDataItem `json:"data_items"`
}

// Service provides statistics operations
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Service { return &Service{db: db, now: time.Now} }

func (s *Service) orders(ctx context.Context, request *StatisticRequest) *gorm.DB {
	return s.db.WithContext(ctx).
		Table((models.MembershipOrder{}).TableName()).
		Where(clause.Where{Exprs: []clause.Expression{request}})
}

// dateExpr formats a timestamp column as YYYY-MM-DD on the current dialect.
func (s *Service) dateExpr(column string) string {
	if s.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD')", column)
	}
	return fmt.Sprintf("substr(%s, 1, 10)", column)
}

func (s *Service) getOrderCountByStatus(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.orders(ctx, request).
		Select("status as label, count(*) as value").
		Group("status").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyCompletedOrderCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	date := s.dateExpr("completed_at")
	q := s.orders(ctx, request).
		Select(date+" as date, count(*) as value").
		Where("status = ?", types.OrderStatusCompleted).
		Group(date).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getTotalGmv sums completed orders in minor units per currency.
func (s *Service) getTotalGmv(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.orders(ctx, request).
		Select("currency as label, sum(amount_minor) as value").
		Where("status = ?", types.OrderStatusCompleted).
		Group("currency").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getPendingReconcileCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var count int64
	err := s.orders(ctx, request).
		Where("status = ? AND membership_applied_at IS NULL", types.OrderStatusCompleted).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	return []StatisticResponseDataItem{{Value: count}}, nil
}

func (s *Service) getActiveMembershipCount(ctx context.Context, _ *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserMembership{}).
		Where("status = ?", types.MembershipStatusActive).
		Where("expire_at >= ?", s.now().UTC()).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	return []StatisticResponseDataItem{{Value: count}}, nil
}

func (s *Service) getMembershipCountByPlan(ctx context.Context, _ *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.UserMembership{}).TableName()).
		Select("plan as label, count(*) as value").
		Where("status = ?", types.MembershipStatusActive).
		Where("expire_at >= ?", s.now().UTC()).
		Group("plan").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatistic(ctx context.Context, request *StatisticRequest, dataItem *StatisticDataItem) ([]StatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeOrderCountByStatus:
		return s.getOrderCountByStatus(ctx, request)
	case StatisticTypeDailyCompletedOrderCount:
		return s.getDailyCompletedOrderCount(ctx, request)
	case StatisticTypeTotalGmv:
		return s.getTotalGmv(ctx, request)
	case StatisticTypePendingReconcileCount:
		return s.getPendingReconcileCount(ctx, request)
	case StatisticTypeActiveMembershipCount:
		return s.getActiveMembershipCount(ctx, request)
	case StatisticTypeMembershipCountByPlan:
		return s.getMembershipCountByPlan(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetStatistic computes the requested data items concurrently.
func (s *Service) GetStatistic(ctx context.Context, request *StatisticRequest) (*StatisticResponse, error) {
	if request == nil {
		request = &StatisticRequest{}
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if len(request.DataItems) == 0 {
		request.DataItems = lo.Map(AllStatisticTypes, func(t StatisticType, _ int) *StatisticDataItem {
			return &StatisticDataItem{ID: t}
		})
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []StatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *StatisticDataItem) {
			defer wg.Done()
			// membership statistics ignore order filters
			req := request
			if !lo.Contains(orderStatistics, di.ID) {
				req = &StatisticRequest{}
			}
			res, err := s.getStatistic(ctx, req, di)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", di.ID, err)
				return
			}
			resChan <- &lo.Entry[StatisticType, []StatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)

	if err, ok := <-errChan; ok {
		return nil, err
	}
	results := make(map[StatisticType][]StatisticResponseDataItem)
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &StatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
