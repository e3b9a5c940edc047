package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acme/lead-outreach/internal/domain"
)

// StatsRepository implements repository.StatsRepository using PostgreSQL.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a new repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview runs the dashboard aggregation queries.
func (r *StatsRepository) Overview(ctx context.Context) (*domain.DashboardStats, error) {
	stats := new(domain.DashboardStats)

	row := r.db.QueryRowxContext(ctx, `SELECT
		(SELECT COUNT(*) FROM leads) AS total_leads,
		(SELECT COUNT(*) FROM interactions WHERE kind = 'call') AS total_calls,
		(SELECT COUNT(*) FROM interactions WHERE kind = 'message') AS total_messages,
		(SELECT COUNT(*) FROM team_members) AS total_team_members,
		(SELECT COALESCE(ROUND(AVG(duration_seconds)), 0) FROM interactions
			WHERE kind = 'call' AND status = 'completed' AND duration_seconds IS NOT NULL) AS avg_call_duration,
		(SELECT COUNT(*) FROM interactions
			WHERE kind = 'call' AND created_at >= date_trunc('day', NOW())) AS calls_today,
		(SELECT COUNT(*) FROM interactions
			WHERE kind = 'message' AND created_at >= date_trunc('day', NOW())) AS messages_today`)

	if err := row.Scan(
		&stats.TotalLeads,
		&stats.TotalCalls,
		&stats.TotalMessages,
		&stats.TotalTeamMembers,
		&stats.AvgCallDurationSecs,
		&stats.CallsToday,
		&stats.MessagesToday,
	); err != nil {
		return nil, fmt.Errorf("stats repo: overview: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) AS count FROM leads GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("stats repo: leads by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bucket struct {
			Status string `db:"status"`
			Count  int64  `db:"count"`
		}
		if err := rows.StructScan(&bucket); err != nil {
			return nil, fmt.Errorf("stats repo: scan: %w", err)
		}
		stats.LeadsByStatus = append(stats.LeadsByStatus, domain.LeadStatusCount{
			Status: domain.LeadStatus(bucket.Status),
			Count:  bucket.Count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats repo: rows err: %w", err)
	}

	return stats, nil
}
