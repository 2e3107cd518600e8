package analytics

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	digitRun       = regexp.MustCompile(`\d+`)
	propertyNameRE = regexp.MustCompile(`properties/(\d+)`)
	accountNameRE  = regexp.MustCompile(`accounts/(\d+)`)
)

// extractNumericID pulls the numeric ID out of free-form input. A run of
// digits following the resource prefix wins; otherwise the longest run, so
// text like "GA4 property 987654" resolves to 987654 and not the 4 in "GA4".
func extractNumericID(input string, name *regexp.Regexp) string {
	if m := name.FindStringSubmatch(input); m != nil {
		return m[1]
	}

	var digits string
	for _, run := range digitRun.FindAllString(input, -1) {
		if len(run) > len(digits) {
			digits = run
		}
	}
	return digits
}

// ParsePropertyID normalizes a property identifier to the resource name form
// "properties/<id>". It accepts "properties/123456", "123456", or any text
// containing the numeric ID.
func ParsePropertyID(property string) (string, error) {
	property = strings.TrimSpace(property)
	if property == "" {
		return "", validationErrorf("property ID cannot be empty")
	}

	digits := extractNumericID(property, propertyNameRE)
	if digits == "" {
		return "", validationErrorf("no numeric property ID found in %q", property)
	}

	return "properties/" + digits, nil
}

// ParseAccountID normalizes an account identifier to the resource name form
// "accounts/<id>".
func ParseAccountID(account string) (string, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return "", validationErrorf("account ID cannot be empty")
	}

	digits := extractNumericID(account, accountNameRE)
	if digits == "" {
		return "", validationErrorf("no numeric account ID found in %q", account)
	}

	return "accounts/" + digits, nil
}

// PropertyNumber extracts the bare numeric ID from a property identifier.
func PropertyNumber(property string) (string, error) {
	name, err := ParsePropertyID(property)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(name, "properties/"), nil
}

// DateRangeForDays returns start and end dates in YYYY-MM-DD format covering
// the last days days, today included.
func DateRangeForDays(days int) (startDate, endDate string) {
	end := time.Now()
	start := end.AddDate(0, 0, -(days - 1))
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

// ValidateDate checks that a date is in YYYY-MM-DD format or one of the
// relative forms the GA4 API accepts ("today", "yesterday", "NdaysAgo").
func ValidateDate(date string) error {
	switch date {
	case "today", "yesterday":
		return nil
	}
	if strings.HasSuffix(date, "daysAgo") {
		n := strings.TrimSuffix(date, "daysAgo")
		if digitRun.MatchString(n) && digitRun.FindString(n) == n {
			return nil
		}
		return validationErrorf("invalid relative date %q: expected NdaysAgo", date)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return validationErrorf("invalid date %q: expected YYYY-MM-DD, today, yesterday, or NdaysAgo", date)
	}
	return nil
}

// formatResourceError keeps Google API errors readable for MCP clients.
func formatResourceError(action, resource string, err error) error {
	return fmt.Errorf("failed to %s for %s: %w", action, resource, err)
}
