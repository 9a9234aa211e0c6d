package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonFilter_Validate(t *testing.T) {
	allowed := []string{"status", "created_at"}

	ok := []*CommonFilter{
		{Field: "status", Operator: CommonFilterOperatorEq, Values: []any{"pending"}},
		{Field: "status", Operator: CommonFilterOperatorNotEq, Values: []any{"pending"}},
		{Field: "created_at", Operator: CommonFilterOperatorGte, Values: []any{"2024-01-01"}},
		{Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{"2024-01-01", "2024-02-01"}},
		{Field: "status", Operator: CommonFilterOperatorIn, Values: []any{"pending", "completed"}},
		{Field: "status", Operator: CommonFilterOperatorNull},
	}
	for _, f := range ok {
		require.NoError(t, f.Validate(allowed), f.Operator)
	}

	bad := map[string]*CommonFilter{
		"nil":              nil,
		"field":            {Field: "secret", Operator: CommonFilterOperatorEq, Values: []any{"x"}},
		"unknown operator": {Field: "status", Operator: "bogus", Values: []any{"x"}},
		"empty operator":   {Field: "status", Values: []any{"x"}},
		"eq no value":      {Field: "status", Operator: CommonFilterOperatorEq},
		"lt two values":    {Field: "created_at", Operator: CommonFilterOperatorLt, Values: []any{1, 2}},
		"range one value":  {Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{1}},
		"range three":      {Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{1, 2, 3}},
		"in no value":      {Field: "status", Operator: CommonFilterOperatorIn},
		"is_null value":    {Field: "status", Operator: CommonFilterOperatorNull, Values: []any{"x"}},
	}
	for name, f := range bad {
		require.ErrorIs(t, f.Validate(allowed), ErrInvalidFilter, name)
	}
}
