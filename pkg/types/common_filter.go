package types

import (
	"errors"
	"fmt"
	"slices"

	"gorm.io/gorm/clause"
)

type CommonFilterOperator string

const (
	CommonFilterOperatorEq    CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt    CommonFilterOperator = "lt"
	CommonFilterOperatorLte   CommonFilterOperator = "lte"
	CommonFilterOperatorGt    CommonFilterOperator = "gt"
	CommonFilterOperatorGte   CommonFilterOperator = "gte"
	CommonFilterOperatorRange CommonFilterOperator = "range"
	CommonFilterOperatorIn    CommonFilterOperator = "in"
	CommonFilterOperatorNull  CommonFilterOperator = "is_null"
)

// CommonFilter is an admin list filter on a single column.
type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

var ErrInvalidFilter = errors.New("invalid filter")

// Validate rejects columns outside allowed, unknown operators and value
// counts the operator cannot build. Field names end up in SQL, so callers
// must always validate before building.
func (f *CommonFilter) Validate(allowed []string) error {
	if f == nil {
		return fmt.Errorf("%w: nil filter", ErrInvalidFilter)
	}
	if !slices.Contains(allowed, f.Field) {
		return fmt.Errorf("%w: field not allowed: %s", ErrInvalidFilter, f.Field)
	}
	n := len(f.Values)
	switch f.Operator {
	case CommonFilterOperatorNull:
		if n != 0 {
			return fmt.Errorf("%w: %s takes no values", ErrInvalidFilter, f.Operator)
		}
	case CommonFilterOperatorRange:
		if n != 2 {
			return fmt.Errorf("%w: %s takes 2 values, got %d", ErrInvalidFilter, f.Operator, n)
		}
	case CommonFilterOperatorEq, CommonFilterOperatorNotEq, CommonFilterOperatorLt,
		CommonFilterOperatorLte, CommonFilterOperatorGt, CommonFilterOperatorGte:
		if n != 1 {
			return fmt.Errorf("%w: %s takes 1 value, got %d", ErrInvalidFilter, f.Operator, n)
		}
	case CommonFilterOperatorIn:
		if n == 0 {
			return fmt.Errorf("%w: %s needs at least 1 value", ErrInvalidFilter, f.Operator)
		}
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Operator)
	}
	return nil
}

// Build constructs a GORM expression.
func (f *CommonFilter) Build(builder clause.Builder) {
	if f.Operator == CommonFilterOperatorNull {
		clause.Eq{Column: clause.Column{Name: f.Field}, Value: nil}.Build(builder)
		return
	}
	if len(f.Values) == 0 {
		return
	}

	col := clause.Column{Name: f.Field}
	value := f.Values[0]

	switch f.Operator {
	case CommonFilterOperatorEq:
		clause.Eq{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorNotEq:
		clause.Neq{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorLt:
		clause.Lt{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorLte:
		clause.Lte{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorGt:
		clause.Gt{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorGte:
		clause.Gte{Column: col, Value: value}.Build(builder)
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return
		}
		clause.And(clause.Gte{Column: col, Value: f.Values[0]}, clause.Lte{Column: col, Value: f.Values[1]}).Build(builder)
	case CommonFilterOperatorIn:
		clause.IN{Column: col, Values: f.Values}.Build(builder)
	default:
		return
	}
}
