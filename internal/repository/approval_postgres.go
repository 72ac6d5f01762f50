package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

type postgresApprovalRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresApprovalRepository instantiates the pgx-backed store.
func NewPostgresApprovalRepository(pool *pgxpool.Pool) ApprovalRepository {
	return &postgresApprovalRepository{pool: pool}
}

func (r *postgresApprovalRepository) Create(ctx context.Context, approval *domain.Approval) error {
	const query = `
        INSERT INTO approvals (id, ticket_id, field, previous_value, new_value, proposed_by, status, created_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.pool.Exec(ctx, query,
		approval.ID,
		approval.TicketID,
		approval.Field,
		approval.PreviousValue,
		approval.NewValue,
		approval.ProposedBy,
		approval.Status,
		approval.CreatedAt,
		approval.ResolvedAt,
	)
	return err
}

func (r *postgresApprovalRepository) Update(ctx context.Context, approval *domain.Approval) error {
	const query = `
        UPDATE approvals SET status=$1, resolved_at=$2 WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, approval.Status, approval.ResolvedAt, approval.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("approval", map[string]any{"approval_id": approval.ID})
	}
	return nil
}

func (r *postgresApprovalRepository) GetByID(ctx context.Context, id string) (*domain.Approval, error) {
	const query = `
        SELECT id, ticket_id, field, previous_value, new_value, proposed_by, status, created_at, resolved_at
        FROM approvals WHERE id=$1`
	var approval domain.Approval
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&approval.ID,
		&approval.TicketID,
		&approval.Field,
		&approval.PreviousValue,
		&approval.NewValue,
		&approval.ProposedBy,
		&approval.Status,
		&approval.CreatedAt,
		&approval.ResolvedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("approval", map[string]any{"approval_id": id})
		}
		return nil, err
	}
	return &approval, nil
}

func (r *postgresApprovalRepository) List(ctx context.Context) ([]domain.Approval, error) {
	const query = `
        SELECT id, ticket_id, field, previous_value, new_value, proposed_by, status, created_at, resolved_at
        FROM approvals ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvals := []domain.Approval{}
	for rows.Next() {
		var approval domain.Approval
		if err := rows.Scan(
			&approval.ID,
			&approval.TicketID,
			&approval.Field,
			&approval.PreviousValue,
			&approval.NewValue,
			&approval.ProposedBy,
			&approval.Status,
			&approval.CreatedAt,
			&approval.ResolvedAt,
		); err != nil {
			return nil, err
		}
		approvals = append(approvals, approval)
	}
	return approvals, rows.Err()
}
