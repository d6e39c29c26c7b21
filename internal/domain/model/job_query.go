package model

import "time"

// OrderField is a whitelisted ordering field with direction, e.g. "-created_at".
type OrderField struct {
	Column string
	Desc   bool
}

// JobListOptions groups the filters, ordering, and pagination for listing jobs.
// Unset pointers mean "no filter". Ordering defaults to priority desc, created_at desc.
type JobListOptions struct {
	Priority      *int        // Optional exact priority match
	Search        string      // Optional free-text search over name + description
	Status        *StatusType // Optional filter by latest status type
	CreatedAfter  *time.Time  // Optional inclusive lower bound on created_at
	CreatedBefore *time.Time  // Optional inclusive upper bound on created_at
	Ordering      []OrderField
	Limit         int
	Offset        int
}

// DefaultOrdering is applied when a list request specifies no valid ordering.
func DefaultOrdering() []OrderField {
	return []OrderField{
		{Column: "priority", Desc: true},
		{Column: "created_at", Desc: true},
	}
}

// JobPage is one page of a filtered job listing plus the total match count.
type JobPage struct {
	Count int
	Jobs  []*Job
}

// StatusCounts holds per-status job counts keyed by latest status.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Sum returns the total of all per-status counts.
func (c StatusCounts) Sum() int {
	return c.Pending + c.Running + c.Completed + c.Failed + c.Cancelled
}

// StatsSnapshot is one aggregate computation of job statistics, whether read
// from the materialized snapshot or computed directly.
type StatsSnapshot struct {
	TotalJobs            int
	StatusCounts         StatusCounts
	RecentJobs           int
	AvgCompletionMinutes *float64
	LastUpdated          *time.Time
}

// Stats sources reported in JobStatsResponse.Source.
const (
	StatsSourceSnapshot  = "snapshot"
	StatsSourceRefreshed = "refreshed"
	StatsSourceFallback  = "fallback"
)

// JobStatsResponse is the aggregate statistics payload served by the stats endpoint.
type JobStatsResponse struct {
	TotalJobs            int            `json:"total_jobs"`
	StatusCounts         StatusCounts   `json:"status_counts"`
	RecentJobs           int            `json:"recent_jobs"`
	AvgCompletionMinutes *float64       `json:"avg_completion_time_minutes"`
	PriorityDistribution map[string]int `json:"priority_distribution"`
	LastUpdated          *time.Time     `json:"last_updated,omitempty"`
	Source               string         `json:"source"`
}
