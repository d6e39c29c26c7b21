package httpx

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
)

// DefaultPageSize is the number of jobs per list page.
const DefaultPageSize = 20

// dateFormats accepted by the created_after/created_before filters.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseJobListOptions extracts filters, ordering, and pagination from the
// query string. Malformed filter values are ignored rather than rejected, so
// a bad date or priority degrades to an unfiltered listing instead of a 400.
func ParseJobListOptions(q url.Values) (*model.JobListOptions, int) {
	opts := &model.JobListOptions{
		Search: strings.TrimSpace(q.Get("search")),
		Limit:  DefaultPageSize,
	}

	if raw := strings.TrimSpace(q.Get("priority")); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			opts.Priority = &p
		}
	}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status := model.StatusType(strings.ToUpper(raw))
		if status.Valid() {
			opts.Status = &status
		}
	}

	if t, ok := parseDate(q.Get("created_after")); ok {
		opts.CreatedAfter = &t
	}
	if t, ok := parseDate(q.Get("created_before")); ok {
		opts.CreatedBefore = &t
	}

	opts.Ordering = parseOrdering(q.Get("ordering"))

	page := 1
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			page = p
		}
	}
	opts.Offset = (page - 1) * DefaultPageSize

	return opts, page
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseOrdering parses a comma-separated ordering list, "-" prefix meaning
// descending. Unknown fields are dropped here only syntactically; the
// repository whitelist is what decides whether a column is orderable.
func parseOrdering(raw string) []model.OrderField {
	var fields []model.OrderField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		column := strings.TrimPrefix(part, "-")
		if column == "" {
			continue
		}
		fields = append(fields, model.OrderField{Column: column, Desc: desc})
	}
	return fields
}
