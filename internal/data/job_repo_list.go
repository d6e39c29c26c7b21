package data

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"

	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
)

// orderableColumns whitelists the columns a list request may order by.
var orderableColumns = map[string]string{
	"created_at":   "j.created_at",
	"updated_at":   "j.updated_at",
	"priority":     "j.priority",
	"name":         "j.name",
	"scheduled_at": "j.scheduled_at",
	"completed_at": "j.completed_at",
}

type jobFilterQueryBuilder struct {
	where  []string
	args   []any
	argIdx int
}

func (b *jobFilterQueryBuilder) add(condition string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = fmt.Sprintf("$%d", b.argIdx)
		b.args = append(b.args, v)
		b.argIdx++
	}
	b.where = append(b.where, fmt.Sprintf(condition, placeholders...))
}

func (b *jobFilterQueryBuilder) clause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

func buildJobFilters(opts *model.JobListOptions) *jobFilterQueryBuilder {
	builder := &jobFilterQueryBuilder{argIdx: 1}

	if opts.Priority != nil {
		builder.add("j.priority = %s", *opts.Priority)
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		builder.add("(j.name ILIKE %[1]s OR j.description ILIKE %[1]s)", "%"+s+"%")
	}
	if opts.Status != nil {
		builder.add("ls.status_type = %s", string(*opts.Status))
	}
	if opts.CreatedAfter != nil {
		builder.add("j.created_at >= %s", opts.CreatedAfter.UTC())
	}
	if opts.CreatedBefore != nil {
		builder.add("j.created_at <= %s", opts.CreatedBefore.UTC())
	}

	return builder
}

func buildOrderClause(ordering []model.OrderField) string {
	var parts []string
	for _, f := range ordering {
		col, ok := orderableColumns[f.Column]
		if !ok {
			continue
		}
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		for _, f := range model.DefaultOrdering() {
			col := orderableColumns[f.Column]
			dir := "ASC"
			if f.Desc {
				dir = "DESC"
			}
			parts = append(parts, col+" "+dir)
		}
	}
	// Stable tie-break so pages don't overlap.
	parts = append(parts, "j.id DESC")
	return " ORDER BY " + strings.Join(parts, ", ")
}

// List returns one page of jobs matching opts, each with its latest status
// attached, plus the total match count. Status filtering applies to the
// latest status only, so the count and the page slice always agree.
func (r *JobRepo) List(ctx context.Context, opts *model.JobListOptions) (*model.JobPage, error) {
	if opts == nil {
		opts = &model.JobListOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 1000 {
		limit = 1000
	}
	offset := max(opts.Offset, 0)

	builder := buildJobFilters(opts)
	where := builder.clause()

	countQuery := `SELECT count(*) FROM jobs j` + latestStatusJoin + where
	var count int
	if err := r.DB.QueryRowContext(ctx, countQuery, builder.args...).Scan(&count); err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("count jobs: %w", err))
	}

	query := `SELECT ` + jobColumns + `, ` + latestStatusColumns + `
    FROM jobs j` + latestStatusJoin + where + buildOrderClause(opts.Ordering) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", builder.argIdx, builder.argIdx+1)
	args := append(builder.args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("query jobs: %w", err))
	}
	defer rows.Close()

	jobs := make([]*model.Job, 0, limit)
	for rows.Next() {
		job, scanErr := scanJobFromRow(rows)
		if scanErr != nil {
			return nil, apperrors.MapDBError(fmt.Errorf("scan job: %w", scanErr))
		}
		jobs = append(jobs, job)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(rowsErr)
	}

	return &model.JobPage{Count: count, Jobs: jobs}, nil
}
