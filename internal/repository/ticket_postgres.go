package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

type postgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository instantiates the pgx-backed store.
func NewPostgresTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &postgresTicketRepository{pool: pool}
}

const ticketColumns = `id, contact_method, category, subsidy_stage, requires_site_visit,
       description, priority, status, assigned_to, sla_due_date,
       customer, attachments, resolution, satisfaction, flags, timeline,
       created_at, source`

func (r *postgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	day := ticket.CreatedAt.Format("20060102")
	var seq int
	const seqQuery = `
        INSERT INTO ticket_sequences (day, seq) VALUES ($1, 1)
        ON CONFLICT (day) DO UPDATE SET seq = ticket_sequences.seq + 1
        RETURNING seq`
	if err := tx.QueryRow(ctx, seqQuery, day).Scan(&seq); err != nil {
		return err
	}
	ticket.ID = fmt.Sprintf("CMP-%s-%03d", day, seq)

	const insertQuery = `
        INSERT INTO tickets (id, contact_method, category, subsidy_stage, requires_site_visit,
            description, priority, status, assigned_to, sla_due_date,
            customer, attachments, resolution, satisfaction, flags, timeline,
            created_at, source, customer_phone, customer_email)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`
	if _, err := tx.Exec(ctx, insertQuery,
		ticket.ID,
		ticket.ContactMethod,
		ticket.Category,
		ticket.SubsidyStage,
		ticket.RequiresSiteVisit,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedTo,
		ticket.SLADueDate,
		ticket.Customer,
		ticket.Attachments,
		ticket.Resolution,
		ticket.Satisfaction,
		ticket.Flags,
		ticket.Timeline,
		ticket.CreatedAt,
		ticket.Source,
		ticket.Customer.Phone,
		strings.ToLower(ticket.Customer.Email),
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET contact_method=$1, category=$2, subsidy_stage=$3, requires_site_visit=$4,
            description=$5, priority=$6, status=$7, assigned_to=$8, sla_due_date=$9,
            customer=$10, attachments=$11, resolution=$12, satisfaction=$13, flags=$14, timeline=$15,
            source=$16, customer_phone=$17, customer_email=$18
        WHERE id=$19`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.ContactMethod,
		ticket.Category,
		ticket.SubsidyStage,
		ticket.RequiresSiteVisit,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedTo,
		ticket.SLADueDate,
		ticket.Customer,
		ticket.Attachments,
		ticket.Resolution,
		ticket.Satisfaction,
		ticket.Flags,
		ticket.Timeline,
		ticket.Source,
		ticket.Customer.Phone,
		strings.ToLower(ticket.Customer.Email),
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
	}
	return nil
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, err
	}
	return ticket, nil
}

func (r *postgresTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Assignee != nil {
		args = append(args, *filter.Assignee)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	query += " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.queryTickets(ctx, query, args...)
}

func (r *postgresTicketRepository) FindByContact(ctx context.Context, phone, email string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
        WHERE (customer_phone=$1 AND $1 <> '') OR (customer_email=$2 AND $2 <> '')
        ORDER BY created_at ASC, id ASC`
	return r.queryTickets(ctx, query, phone, strings.ToLower(email))
}

func (r *postgresTicketRepository) ListOpenWithSLA(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
        WHERE sla_due_date IS NOT NULL AND status <> $1
        ORDER BY id ASC`
	return r.queryTickets(ctx, query, domain.TicketStatusResolved)
}

func (r *postgresTicketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.ContactMethod,
		&ticket.Category,
		&ticket.SubsidyStage,
		&ticket.RequiresSiteVisit,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.AssignedTo,
		&ticket.SLADueDate,
		&ticket.Customer,
		&ticket.Attachments,
		&ticket.Resolution,
		&ticket.Satisfaction,
		&ticket.Flags,
		&ticket.Timeline,
		&ticket.CreatedAt,
		&ticket.Source,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
