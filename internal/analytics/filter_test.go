package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

func TestBuildFilterExpressionStringOperators(t *testing.T) {
	tests := []struct {
		name          string
		operator      string
		wantMatchType string
	}{
		{name: "equals shorthand", operator: "=", wantMatchType: "EXACT"},
		{name: "not equals shorthand", operator: "!=", wantMatchType: "NOT_EXACT"},
		{name: "contains", operator: "contains", wantMatchType: "CONTAINS"},
		{name: "starts_with", operator: "starts_with", wantMatchType: "BEGINS_WITH"},
		{name: "ends_with", operator: "ends_with", wantMatchType: "ENDS_WITH"},
		{name: "regex", operator: "regex", wantMatchType: "FULL_REGEXP"},
		{name: "partial_regex", operator: "partial_regex", wantMatchType: "PARTIAL_REGEXP"},
		{name: "enum passthrough", operator: "EXACT", wantMatchType: "EXACT"},
		{name: "enum begins_with", operator: "BEGINS_WITH", wantMatchType: "BEGINS_WITH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := BuildFilterExpression(&FilterInput{
				Conditions: []FilterCondition{
					{Field: "country", Operator: tt.operator, Value: "Germany"},
				},
			})
			require.NoError(t, err)
			require.NotNil(t, expr.AndGroup)
			require.Len(t, expr.AndGroup.Expressions, 1)

			filter := expr.AndGroup.Expressions[0].Filter
			require.NotNil(t, filter)
			require.NotNil(t, filter.StringFilter)
			assert.Equal(t, "country", filter.FieldName)
			assert.Equal(t, tt.wantMatchType, filter.StringFilter.MatchType)
			assert.Equal(t, "Germany", filter.StringFilter.Value)
			assert.False(t, filter.StringFilter.CaseSensitive)
		})
	}
}

func TestBuildFilterExpressionNumericOperators(t *testing.T) {
	tests := []struct {
		name          string
		operator      string
		wantOperation string
	}{
		{name: "greater than", operator: ">", wantOperation: "GREATER_THAN"},
		{name: "greater or equal", operator: ">=", wantOperation: "GREATER_THAN_OR_EQUAL"},
		{name: "less than", operator: "<", wantOperation: "LESS_THAN"},
		{name: "less or equal", operator: "<=", wantOperation: "LESS_THAN_OR_EQUAL"},
		{name: "numeric equal enum", operator: "EQUAL", wantOperation: "EQUAL"},
		{name: "numeric not equal enum", operator: "NOT_EQUAL", wantOperation: "NOT_EQUAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := BuildFilterExpression(&FilterInput{
				Conditions: []FilterCondition{
					{Field: "sessions", Operator: tt.operator, Value: float64(100)},
				},
			})
			require.NoError(t, err)

			filter := expr.AndGroup.Expressions[0].Filter
			require.NotNil(t, filter.NumericFilter)
			assert.Nil(t, filter.StringFilter)
			assert.Equal(t, tt.wantOperation, filter.NumericFilter.Operation)
			assert.Equal(t, int64(100), filter.NumericFilter.Value.Int64Value)
		})
	}
}

func TestBuildFilterExpressionEqualsIsStringFilter(t *testing.T) {
	// "=" and "!=" build string filters even for numeric-looking values.
	// Numeric equality requires the EQUAL / NOT_EQUAL enum names.
	expr, err := BuildFilterExpression(&FilterInput{
		Conditions: []FilterCondition{
			{Field: "sessions", Operator: "=", Value: float64(100)},
		},
	})
	require.NoError(t, err)

	filter := expr.AndGroup.Expressions[0].Filter
	require.NotNil(t, filter.StringFilter)
	assert.Nil(t, filter.NumericFilter)
	assert.Equal(t, "EXACT", filter.StringFilter.MatchType)
	assert.Equal(t, "100", filter.StringFilter.Value)
}

func TestBuildFilterExpressionNumericValues(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		wantInt    int64
		wantDouble float64
		isDouble   bool
	}{
		{name: "whole float becomes int64", value: float64(42), wantInt: 42},
		{name: "fractional float stays double", value: 3.5, wantDouble: 3.5, isDouble: true},
		{name: "numeric string", value: "17", wantInt: 17},
		{name: "fractional string", value: "0.25", wantDouble: 0.25, isDouble: true},
		{name: "zero", value: float64(0), wantInt: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := BuildFilterExpression(&FilterInput{
				Conditions: []FilterCondition{
					{Field: "bounceRate", Operator: ">", Value: tt.value},
				},
			})
			require.NoError(t, err)

			nv := expr.AndGroup.Expressions[0].Filter.NumericFilter.Value
			if tt.isDouble {
				assert.Equal(t, tt.wantDouble, nv.DoubleValue)
				assert.Contains(t, nv.ForceSendFields, "DoubleValue")
			} else {
				assert.Equal(t, tt.wantInt, nv.Int64Value)
				assert.Contains(t, nv.ForceSendFields, "Int64Value")
			}
		})
	}
}

func TestBuildFilterExpressionTopLevelAndGroup(t *testing.T) {
	// A single condition is still wrapped in a top-level andGroup.
	expr, err := BuildFilterExpression(&FilterInput{
		Conditions: []FilterCondition{
			{Field: "country", Operator: "=", Value: "Japan"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, expr.AndGroup)
	assert.Nil(t, expr.OrGroup)
	assert.Nil(t, expr.Filter)
	assert.Len(t, expr.AndGroup.Expressions, 1)

	// Multiple bare conditions are AND-combined.
	expr, err = BuildFilterExpression(&FilterInput{
		Conditions: []FilterCondition{
			{Field: "country", Operator: "=", Value: "Japan"},
			{Field: "deviceCategory", Operator: "=", Value: "mobile"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, expr.AndGroup.Expressions, 2)
}

func TestBuildFilterExpressionGroups(t *testing.T) {
	tests := []struct {
		name      string
		logic     string
		wantOr    bool
		wantError bool
	}{
		{name: "explicit AND", logic: "AND"},
		{name: "explicit OR", logic: "OR", wantOr: true},
		{name: "lowercase or", logic: "or", wantOr: true},
		{name: "empty logic defaults to AND", logic: ""},
		{name: "unknown logic", logic: "XOR", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := BuildFilterExpression(&FilterInput{
				Groups: []FilterGroup{
					{
						Logic: tt.logic,
						Conditions: []FilterCondition{
							{Field: "country", Operator: "=", Value: "Japan"},
							{Field: "country", Operator: "=", Value: "Germany"},
						},
					},
				},
			})
			if tt.wantError {
				require.Error(t, err)
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			require.Len(t, expr.AndGroup.Expressions, 1)

			group := expr.AndGroup.Expressions[0]
			if tt.wantOr {
				require.NotNil(t, group.OrGroup)
				assert.Len(t, group.OrGroup.Expressions, 2)
			} else {
				require.NotNil(t, group.AndGroup)
				assert.Len(t, group.AndGroup.Expressions, 2)
			}
		})
	}
}

func TestBuildFilterExpressionMixedConditionsAndGroups(t *testing.T) {
	expr, err := BuildFilterExpression(&FilterInput{
		Conditions: []FilterCondition{
			{Field: "deviceCategory", Operator: "=", Value: "mobile"},
		},
		Groups: []FilterGroup{
			{
				Logic: "OR",
				Conditions: []FilterCondition{
					{Field: "country", Operator: "=", Value: "Japan"},
					{Field: "country", Operator: "=", Value: "Germany"},
				},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, expr.AndGroup.Expressions, 2)
	assert.NotNil(t, expr.AndGroup.Expressions[0].Filter)
	assert.NotNil(t, expr.AndGroup.Expressions[1].OrGroup)
}

func TestBuildFilterExpressionValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    *FilterInput
		contains string
	}{
		{
			name:     "nil input",
			input:    nil,
			contains: "at least one condition",
		},
		{
			name:     "empty input",
			input:    &FilterInput{},
			contains: "at least one condition",
		},
		{
			name: "missing field",
			input: &FilterInput{
				Conditions: []FilterCondition{{Operator: "=", Value: "x"}},
			},
			contains: "requires a field",
		},
		{
			name: "missing operator",
			input: &FilterInput{
				Conditions: []FilterCondition{{Field: "country", Value: "x"}},
			},
			contains: "requires an operator",
		},
		{
			name: "missing value",
			input: &FilterInput{
				Conditions: []FilterCondition{{Field: "country", Operator: "="}},
			},
			contains: "requires a value",
		},
		{
			name: "unknown operator",
			input: &FilterInput{
				Conditions: []FilterCondition{{Field: "country", Operator: "~=", Value: "x"}},
			},
			contains: `unknown filter operator "~="`,
		},
		{
			name: "non-numeric value for numeric operator",
			input: &FilterInput{
				Conditions: []FilterCondition{{Field: "sessions", Operator: ">", Value: "many"}},
			},
			contains: "requires a numeric value",
		},
		{
			name: "empty group",
			input: &FilterInput{
				Groups: []FilterGroup{{Logic: "AND"}},
			},
			contains: "at least one condition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := BuildFilterExpression(tt.input)
			require.Error(t, err)
			assert.Nil(t, expr)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestBuildFilterExpressionUnknownOperatorListsValidOnes(t *testing.T) {
	_, err := BuildFilterExpression(&FilterInput{
		Conditions: []FilterCondition{{Field: "country", Operator: "like", Value: "x"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contains")
	assert.Contains(t, err.Error(), "GREATER_THAN")
	assert.Contains(t, err.Error(), ">=")
}

func TestBuildFilterExpressionCaseSensitive(t *testing.T) {
	expr, err := BuildFilterExpression(&FilterInput{
		Conditions: []FilterCondition{
			{Field: "pagePath", Operator: "contains", Value: "/Blog", CaseSensitive: true},
		},
	})
	require.NoError(t, err)
	assert.True(t, expr.AndGroup.Expressions[0].Filter.StringFilter.CaseSensitive)
}

func TestBuildFilterExpressionNoPartialResultOnError(t *testing.T) {
	// The second condition is invalid, so no expression is returned at all.
	expr, err := BuildFilterExpression(&FilterInput{
		Conditions: []FilterCondition{
			{Field: "country", Operator: "=", Value: "Japan"},
			{Field: "sessions", Operator: ">", Value: "lots"},
		},
	})
	require.Error(t, err)
	assert.Nil(t, expr)
}

func TestBuildFilterExpressionMarshalsWithZeroValues(t *testing.T) {
	expr, err := BuildFilterExpression(&FilterInput{
		Conditions: []FilterCondition{
			{Field: "sessions", Operator: "GREATER_THAN", Value: float64(0)},
		},
	})
	require.NoError(t, err)

	// The zero int64 must survive serialization, otherwise the API sees an
	// empty numeric value.
	var nv analyticsdata.NumericValue = *expr.AndGroup.Expressions[0].Filter.NumericFilter.Value
	data, merr := nv.MarshalJSON()
	require.NoError(t, merr)
	assert.Contains(t, string(data), "int64Value")
}

func TestFilterInputUnmarshalObjectForm(t *testing.T) {
	var input FilterInput
	err := json.Unmarshal([]byte(`{
		"conditions": [{"field": "country", "operator": "=", "value": "Japan"}],
		"groups": [{"logic": "OR", "conditions": [
			{"field": "deviceCategory", "operator": "=", "value": "Mobile"},
			{"field": "deviceCategory", "operator": "=", "value": "Tablet"}
		]}]
	}`), &input)
	require.NoError(t, err)

	require.Len(t, input.Conditions, 1)
	assert.Equal(t, "country", input.Conditions[0].Field)
	require.Len(t, input.Groups, 1)
	assert.Equal(t, "OR", input.Groups[0].Logic)
	assert.Len(t, input.Groups[0].Conditions, 2)
}

func TestFilterInputUnmarshalListForm(t *testing.T) {
	var input FilterInput
	err := json.Unmarshal([]byte(`[
		{"field": "country", "operator": "=", "value": "Japan"},
		{"OR": [
			{"field": "deviceCategory", "operator": "=", "value": "Mobile"},
			{"field": "deviceCategory", "operator": "=", "value": "Tablet"}
		]}
	]`), &input)
	require.NoError(t, err)

	require.Len(t, input.Conditions, 1)
	assert.Equal(t, "country", input.Conditions[0].Field)
	require.Len(t, input.Groups, 1)
	assert.Equal(t, "OR", input.Groups[0].Logic)
	assert.Len(t, input.Groups[0].Conditions, 2)
}

func TestFilterInputListFormBuildsSingleGroupWrapper(t *testing.T) {
	var input FilterInput
	err := json.Unmarshal([]byte(`[
		{"AND": [
			{"field": "country", "operator": "=", "value": "Japan"},
			{"field": "deviceCategory", "operator": "=", "value": "Mobile"}
		]}
	]`), &input)
	require.NoError(t, err)

	expr, err := BuildFilterExpression(&input)
	require.NoError(t, err)

	// One top-level element, itself an andGroup with two leaf filters.
	require.NotNil(t, expr.AndGroup)
	require.Len(t, expr.AndGroup.Expressions, 1)
	inner := expr.AndGroup.Expressions[0]
	require.NotNil(t, inner.AndGroup)
	require.Len(t, inner.AndGroup.Expressions, 2)
	assert.Equal(t, "country", inner.AndGroup.Expressions[0].Filter.FieldName)
	assert.Equal(t, "deviceCategory", inner.AndGroup.Expressions[1].Filter.FieldName)
}

func TestFilterInputUnmarshalMalformedElement(t *testing.T) {
	var input FilterInput
	err := json.Unmarshal([]byte(`["not an object"]`), &input)
	assert.Error(t, err)
}
