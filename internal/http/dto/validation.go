package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func validateDate(field, raw string) (time.Time, []ValidationError) {
	t, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, []ValidationError{{Field: field, Message: "invalid date format (expected: YYYY-MM-DD)"}}
	}
	return t, nil
}

func validateBool(field, raw string) (bool, []ValidationError) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no", "off":
		return false, nil
	case "1", "true", "yes", "on":
		return true, nil
	}
	return false, []ValidationError{{Field: field, Message: "must be a boolean"}}
}

func validateLimit(field, raw string, def, max int) (int, []ValidationError) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, []ValidationError{{Field: field, Message: fmt.Sprintf("must be between 1 and %d", max)}}
	}
	return n, nil
}
