package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// ValidationError reports invalid filter or request input supplied by the caller.
// It distinguishes caller mistakes from transport or API failures.
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// FilterCondition is a single flat filter condition.
// Operator accepts either a shorthand symbol (for example "=" or ">=")
// or a GA4 enum name (for example "EXACT" or "GREATER_THAN").
type FilterCondition struct {
	Field         string `json:"field"`
	Operator      string `json:"operator"`
	Value         any    `json:"value"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
}

// FilterGroup combines one level of conditions with a single logic operator.
// Logic is "AND" or "OR" (case-insensitive) and defaults to "AND".
type FilterGroup struct {
	Logic      string            `json:"logic,omitempty"`
	Conditions []FilterCondition `json:"conditions"`
}

// FilterInput is the flat filter description accepted by the report tools.
// Bare conditions are AND-combined with each other and with all groups.
type FilterInput struct {
	Conditions []FilterCondition `json:"conditions,omitempty"`
	Groups     []FilterGroup     `json:"groups,omitempty"`
}

// filterInputObject mirrors FilterInput for decoding the object form without
// recursing into FilterInput.UnmarshalJSON.
type filterInputObject struct {
	Conditions []FilterCondition `json:"conditions,omitempty"`
	Groups     []FilterGroup     `json:"groups,omitempty"`
}

// UnmarshalJSON accepts two spellings of the same filter. The object form
// names conditions and groups explicitly:
//
//	{"conditions": [...], "groups": [{"logic": "OR", "conditions": [...]}]}
//
// The list form interleaves bare conditions with single-key groups:
//
//	[{"field": "country", "operator": "=", "value": "Japan"},
//	 {"OR": [{...}, {...}]}]
func (fi *FilterInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] != '[' {
		var obj filterInputObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		fi.Conditions = obj.Conditions
		fi.Groups = obj.Groups
		return nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return err
	}

	for _, raw := range elements {
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return err
		}

		logic, conditions, ok := taggedGroup(keyed)
		if !ok {
			var cond FilterCondition
			if err := json.Unmarshal(raw, &cond); err != nil {
				return err
			}
			fi.Conditions = append(fi.Conditions, cond)
			continue
		}

		var group FilterGroup
		group.Logic = logic
		if err := json.Unmarshal(conditions, &group.Conditions); err != nil {
			return err
		}
		fi.Groups = append(fi.Groups, group)
	}

	return nil
}

// taggedGroup reports whether a decoded list element is a group in the
// single-key {"AND": [...]} / {"OR": [...]} form.
func taggedGroup(keyed map[string]json.RawMessage) (logic string, conditions json.RawMessage, ok bool) {
	if len(keyed) != 1 {
		return "", nil, false
	}
	for key, value := range keyed {
		if key == "AND" || key == "OR" {
			return key, value, true
		}
	}
	return "", nil, false
}

// stringMatchTypes maps shorthand operators and enum names to GA4 string
// filter match types. This table is consulted before numericOperations, so
// "=" and "!=" always build string filters. Numeric equality is requested
// with the explicit EQUAL / NOT_EQUAL enum names.
var stringMatchTypes = map[string]string{
	"=":              "EXACT",
	"!=":             "NOT_EXACT",
	"contains":       "CONTAINS",
	"starts_with":    "BEGINS_WITH",
	"ends_with":      "ENDS_WITH",
	"regex":          "FULL_REGEXP",
	"partial_regex":  "PARTIAL_REGEXP",
	"EXACT":          "EXACT",
	"NOT_EXACT":      "NOT_EXACT",
	"CONTAINS":       "CONTAINS",
	"BEGINS_WITH":    "BEGINS_WITH",
	"ENDS_WITH":      "ENDS_WITH",
	"FULL_REGEXP":    "FULL_REGEXP",
	"PARTIAL_REGEXP": "PARTIAL_REGEXP",
}

// numericOperations maps shorthand operators and enum names to GA4 numeric
// filter operations.
var numericOperations = map[string]string{
	">":                     "GREATER_THAN",
	">=":                    "GREATER_THAN_OR_EQUAL",
	"<":                     "LESS_THAN",
	"<=":                    "LESS_THAN_OR_EQUAL",
	"EQUAL":                 "EQUAL",
	"NOT_EQUAL":             "NOT_EQUAL",
	"GREATER_THAN":          "GREATER_THAN",
	"GREATER_THAN_OR_EQUAL": "GREATER_THAN_OR_EQUAL",
	"LESS_THAN":             "LESS_THAN",
	"LESS_THAN_OR_EQUAL":    "LESS_THAN_OR_EQUAL",
}

// BuildFilterExpression translates a FilterInput into the GA4 FilterExpression
// tree. The result is always a single andGroup wrapping one expression per
// bare condition and one per group, even when only a single condition was
// given. It returns a ValidationError and no expression on invalid input.
func BuildFilterExpression(input *FilterInput) (*analyticsdata.FilterExpression, error) {
	if input == nil || (len(input.Conditions) == 0 && len(input.Groups) == 0) {
		return nil, validationErrorf("filter requires at least one condition or group")
	}

	var expressions []*analyticsdata.FilterExpression

	for i := range input.Conditions {
		f, err := buildFilter(&input.Conditions[i])
		if err != nil {
			return nil, err
		}
		expressions = append(expressions, &analyticsdata.FilterExpression{Filter: f})
	}

	for i := range input.Groups {
		expr, err := buildGroupExpression(&input.Groups[i])
		if err != nil {
			return nil, err
		}
		expressions = append(expressions, expr)
	}

	return &analyticsdata.FilterExpression{
		AndGroup: &analyticsdata.FilterExpressionList{
			Expressions: expressions,
		},
	}, nil
}

// buildGroupExpression builds one AND/OR group of leaf conditions.
// Groups do not nest.
func buildGroupExpression(group *FilterGroup) (*analyticsdata.FilterExpression, error) {
	if len(group.Conditions) == 0 {
		return nil, validationErrorf("filter group requires at least one condition")
	}

	logic := strings.ToUpper(strings.TrimSpace(group.Logic))
	if logic == "" {
		logic = "AND"
	}
	if logic != "AND" && logic != "OR" {
		return nil, validationErrorf("invalid group logic %q: must be AND or OR", group.Logic)
	}

	var leaves []*analyticsdata.FilterExpression
	for i := range group.Conditions {
		f, err := buildFilter(&group.Conditions[i])
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, &analyticsdata.FilterExpression{Filter: f})
	}

	list := &analyticsdata.FilterExpressionList{Expressions: leaves}
	if logic == "OR" {
		return &analyticsdata.FilterExpression{OrGroup: list}, nil
	}
	return &analyticsdata.FilterExpression{AndGroup: list}, nil
}

// buildFilter builds a single GA4 leaf filter from one flat condition.
// The string operator table is consulted first; operators found only in the
// numeric table produce numeric filters.
func buildFilter(cond *FilterCondition) (*analyticsdata.Filter, error) {
	if cond.Field == "" {
		return nil, validationErrorf("filter condition requires a field")
	}
	if cond.Operator == "" {
		return nil, validationErrorf("filter condition on field %q requires an operator", cond.Field)
	}
	if cond.Value == nil {
		return nil, validationErrorf("filter condition on field %q requires a value", cond.Field)
	}

	if matchType, ok := stringMatchTypes[cond.Operator]; ok {
		return &analyticsdata.Filter{
			FieldName: cond.Field,
			StringFilter: &analyticsdata.StringFilter{
				MatchType:     matchType,
				Value:         valueToString(cond.Value),
				CaseSensitive: cond.CaseSensitive,
			},
		}, nil
	}

	if operation, ok := numericOperations[cond.Operator]; ok {
		numericValue, err := toNumericValue(cond.Value)
		if err != nil {
			return nil, validationErrorf("filter condition on field %q with operator %q requires a numeric value, got %v",
				cond.Field, cond.Operator, cond.Value)
		}
		return &analyticsdata.Filter{
			FieldName: cond.Field,
			NumericFilter: &analyticsdata.NumericFilter{
				Operation: operation,
				Value:     numericValue,
			},
		}, nil
	}

	return nil, validationErrorf("unknown filter operator %q: valid operators are %s",
		cond.Operator, strings.Join(validOperators(), ", "))
}

// toNumericValue converts a condition value into a GA4 NumericValue.
// Whole numbers become int64 values, everything else a double.
func toNumericValue(value any) (*analyticsdata.NumericValue, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, err
		}
		f = parsed
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}

	if f == float64(int64(f)) {
		return &analyticsdata.NumericValue{
			Int64Value:      int64(f),
			ForceSendFields: []string{"Int64Value"},
		}, nil
	}
	return &analyticsdata.NumericValue{
		DoubleValue:     f,
		ForceSendFields: []string{"DoubleValue"},
	}, nil
}

// valueToString renders a condition value for a string filter.
// JSON numbers render without a trailing ".0" for whole values.
func valueToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// validOperators returns the sorted union of all accepted operator spellings.
func validOperators() []string {
	seen := make(map[string]struct{}, len(stringMatchTypes)+len(numericOperations))
	for op := range stringMatchTypes {
		seen[op] = struct{}{}
	}
	for op := range numericOperations {
		seen[op] = struct{}{}
	}

	operators := make([]string, 0, len(seen))
	for op := range seen {
		operators = append(operators, op)
	}
	sort.Strings(operators)
	return operators
}
