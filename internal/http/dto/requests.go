package dto

import (
	"net/url"
	"strings"
	"time"

	"github.com/cesargomez89/walkmlb/internal/constants"
	"github.com/cesargomez89/walkmlb/internal/snapshot"
)

const (
	DefaultDiagnosticsLimit = constants.DefaultDiagnosticsLimit
	MaxDiagnosticsLimit     = 1000
)

// RunOnceRequest is parsed from ?date=YYYY-MM-DD&force=bool. A missing date is today.
type RunOnceRequest struct {
	Date  time.Time
	Force bool
}

func ParseRunOnce(q url.Values, today time.Time) (*RunOnceRequest, []ValidationError) {
	var errs []ValidationError
	req := &RunOnceRequest{Date: today}

	if raw := q.Get("date"); raw != "" {
		d, verrs := validateDate("date", raw)
		errs = append(errs, verrs...)
		req.Date = d
	}
	force, verrs := validateBool("force", q.Get("force"))
	errs = append(errs, verrs...)
	req.Force = force

	return req, errs
}

// BackfillRequest is parsed from ?start=&end=&force=. Both dates are required.
type BackfillRequest struct {
	Start time.Time
	End   time.Time
	Force bool
}

func ParseBackfill(q url.Values) (*BackfillRequest, []ValidationError) {
	var errs []ValidationError
	req := &BackfillRequest{}

	for _, f := range []struct {
		name string
		dst  *time.Time
	}{{"start", &req.Start}, {"end", &req.End}} {
		raw := q.Get(f.name)
		if raw == "" {
			errs = append(errs, ValidationError{Field: f.name, Message: "is required"})
			continue
		}
		d, verrs := validateDate(f.name, raw)
		errs = append(errs, verrs...)
		*f.dst = d
	}

	force, verrs := validateBool("force", q.Get("force"))
	errs = append(errs, verrs...)
	req.Force = force

	return req, errs
}

// ParseClearKind returns the kind to clear; empty means every kind.
func ParseClearKind(q url.Values) (string, []ValidationError) {
	raw := strings.ToLower(strings.TrimSpace(q.Get("kind")))
	if raw == "" || raw == "all" {
		return "all", nil
	}
	if _, err := snapshot.ParseKind(raw); err != nil {
		return "", []ValidationError{{Field: "kind", Message: "must be one of boxscore, linescore, status, all"}}
	}
	return raw, nil
}

func ParseDiagnosticsLimit(q url.Values) (int, []ValidationError) {
	return validateLimit("limit", q.Get("limit"), DefaultDiagnosticsLimit, MaxDiagnosticsLimit)
}
