package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

// ErrVersionConflict is returned by Update when the stored version differs from the expected one.
var ErrVersionConflict = errors.New("ticket version conflict")

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update persists the editable fields of ticket. When expectedVersion is
	// positive the write only happens if the stored version matches.
	Update(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// Latest returns the most recently created ticket or pgx.ErrNoRows.
	Latest(ctx context.Context) (*domain.Ticket, error)
	// List returns every ticket ordered by intake time, newest first.
	List(ctx context.Context) ([]domain.Ticket, error)
	// ListStateAndPriority returns tickets with only state and priority populated.
	ListStateAndPriority(ctx context.Context) ([]domain.Ticket, error)
	// ListInStateSince returns tickets in state whose last update is older than before.
	ListInStateSince(ctx context.Context, state domain.TicketState, before time.Time) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, numero_ticket, nombre_cliente, telefono, direccion, tipo_equipo, marca, modelo,
       numero_serie, contrasena_equipo, accesorios_incluidos, descripcion_problema, prioridad,
       estado_inicial, estado_actual, notas_tecnico, recibido_por, tecnico_asignado,
       costo_estimado, costo_final, fecha_ingreso, fecha_estimada_entrega, version, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (numero_ticket, nombre_cliente, telefono, direccion, tipo_equipo, marca, modelo,
            numero_serie, contrasena_equipo, accesorios_incluidos, descripcion_problema, prioridad,
            estado_inicial, estado_actual, notas_tecnico, recibido_por, tecnico_asignado,
            costo_estimado, costo_final, fecha_ingreso, fecha_estimada_entrega)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,COALESCE($20, NOW()),$21)
        RETURNING id, fecha_ingreso, version, created_at, updated_at`
	var intake *time.Time
	if !ticket.IntakeAt.IsZero() {
		intake = &ticket.IntakeAt
	}
	return r.pool.QueryRow(ctx, query,
		ticket.Number,
		ticket.CustomerName,
		ticket.Phone,
		ticket.Address,
		ticket.DeviceType,
		ticket.Brand,
		ticket.Model,
		ticket.SerialNumber,
		ticket.DevicePassword,
		ticket.Accessories,
		ticket.ProblemDescription,
		ticket.Priority,
		ticket.InitialState,
		ticket.CurrentState,
		ticket.TechnicianNotes,
		ticket.ReceivedBy,
		ticket.AssignedTechnician,
		ticket.EstimatedCost,
		ticket.FinalCost,
		intake,
		ticket.EstimatedDelivery,
	).Scan(&ticket.ID, &ticket.IntakeAt, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	const query = `
        UPDATE tickets SET estado_actual=$1, tecnico_asignado=$2, notas_tecnico=$3, costo_estimado=$4,
            costo_final=$5, fecha_estimada_entrega=$6, version=version+1, updated_at=NOW()
        WHERE id=$7 AND ($8::bigint = 0 OR version=$8)
        RETURNING version, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.CurrentState,
		ticket.AssignedTechnician,
		ticket.TechnicianNotes,
		ticket.EstimatedCost,
		ticket.FinalCost,
		ticket.EstimatedDelivery,
		ticket.ID,
		expectedVersion,
	).Scan(&ticket.Version, &ticket.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) && expectedVersion > 0 {
		if _, getErr := r.GetByID(ctx, ticket.ID); getErr == nil {
			return ErrVersionConflict
		}
	}
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) Latest(ctx context.Context) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY fecha_ingreso DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListStateAndPriority(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, `SELECT estado_actual, prioridad FROM tickets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(&ticket.CurrentState, &ticket.Priority); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListInStateSince(ctx context.Context, state domain.TicketState, before time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE estado_actual=$1 AND updated_at < $2 ORDER BY updated_at ASC`
	rows, err := r.pool.Query(ctx, query, state, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Number,
			&ticket.CustomerName,
			&ticket.Phone,
			&ticket.Address,
			&ticket.DeviceType,
			&ticket.Brand,
			&ticket.Model,
			&ticket.SerialNumber,
			&ticket.DevicePassword,
			&ticket.Accessories,
			&ticket.ProblemDescription,
			&ticket.Priority,
			&ticket.InitialState,
			&ticket.CurrentState,
			&ticket.TechnicianNotes,
			&ticket.ReceivedBy,
			&ticket.AssignedTechnician,
			&ticket.EstimatedCost,
			&ticket.FinalCost,
			&ticket.IntakeAt,
			&ticket.EstimatedDelivery,
			&ticket.Version,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
