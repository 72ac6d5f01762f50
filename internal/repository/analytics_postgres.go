package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

type postgresAnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAnalyticsRepository instantiates the pgx-backed record store.
func NewPostgresAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRecordRepository {
	return &postgresAnalyticsRepository{pool: pool}
}

func (r *postgresAnalyticsRepository) Insert(ctx context.Context, record domain.AnalyticsRecord) error {
	const query = `
        INSERT INTO analytics_records (record_date, segment, resolved_tickets, first_contact_resolved,
            avg_turnaround_hours, median_turnaround_hours, installer_jobs_completed, installer_team_size,
            leads, conversions, defects, returns, funnel, aging)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.pool.Exec(ctx, query,
		record.Date,
		record.Segment,
		record.ResolvedTickets,
		record.FirstContactResolved,
		record.AvgTurnaroundHours,
		record.MedianTurnaroundHours,
		record.InstallerJobsCompleted,
		record.InstallerTeamSize,
		record.Leads,
		record.Conversions,
		record.Defects,
		record.Returns,
		record.Funnel,
		record.Aging,
	)
	return err
}

func (r *postgresAnalyticsRepository) List(ctx context.Context) ([]domain.AnalyticsRecord, error) {
	const query = `
        SELECT record_date, segment, resolved_tickets, first_contact_resolved,
               avg_turnaround_hours, median_turnaround_hours, installer_jobs_completed, installer_team_size,
               leads, conversions, defects, returns, funnel, aging
        FROM analytics_records ORDER BY record_date ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.AnalyticsRecord{}
	for rows.Next() {
		var record domain.AnalyticsRecord
		if err := rows.Scan(
			&record.Date,
			&record.Segment,
			&record.ResolvedTickets,
			&record.FirstContactResolved,
			&record.AvgTurnaroundHours,
			&record.MedianTurnaroundHours,
			&record.InstallerJobsCompleted,
			&record.InstallerTeamSize,
			&record.Leads,
			&record.Conversions,
			&record.Defects,
			&record.Returns,
			&record.Funnel,
			&record.Aging,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
