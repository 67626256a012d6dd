// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	AppName             = "walkmlb"
	DefaultPort         = "8080"
	DefaultDBFile       = "walkmlb/walkmlb.db"
	DefaultStatsAPIURL  = "https://statsapi.mlb.com/api/v1"
	DefaultLiveFeedURL  = "https://statsapi.mlb.com/api/v1.1"
	DefaultTimezone     = "America/New_York"
	DefaultConcurrency  = 4
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRetryCount   = 1
	DefaultRetryBase    = 1 * time.Second
	DefaultRequestRate  = 5.0
	DefaultRequestBurst = 5
	DefaultShutdown     = 10 * time.Second
)

// Updater defaults
const (
	DefaultRetentionDays       = 3
	DefaultLiveInterval        = 30 * time.Second
	DefaultIdleInterval        = 5 * time.Minute
	DefaultDiagnosticsCapacity = 500
	DefaultDiagnosticsLimit    = 100
	DefaultMaxBackfillDays     = 62
)

// Upstream query parameters
const (
	MLBSportID      = "1"
	ScheduleHydrate = "lineScore"
)

// Dates
const (
	DateLayout = "2006-01-02"
)

// Database
const (
	BusyTimeoutMS = 30000
)

// Admin surface
const (
	AdminRequestLimit  = 60
	AdminRequestWindow = time.Minute
)
