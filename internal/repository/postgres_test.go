package repository

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/persistence"
)

// Years far ahead of real data so the tests only ever touch their own rows.
const (
	seededYear = 2091
	freshYear  = 2092
)

func newPostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))

	cleanup := func() {
		_, err := pool.Exec(ctx, `DELETE FROM tickets WHERE numero_ticket LIKE 'TKT-209_-%'`)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `DELETE FROM ticket_sequences WHERE year IN ($1, $2)`, seededYear, freshYear)
		require.NoError(t, err)
	}
	cleanup()
	t.Cleanup(cleanup)
	return pool
}

func pgTicket(number string) *domain.Ticket {
	return &domain.Ticket{
		Number:             number,
		CustomerName:       "Ana Ruiz",
		Phone:              "9999-0000",
		DeviceType:         "Laptop",
		ProblemDescription: "no enciende",
		Priority:           domain.PriorityMedium,
		InitialState:       domain.InitialReceived,
		CurrentState:       domain.StateReceived,
	}
}

func TestPostgresSequenceSeedsFromExistingNumbers(t *testing.T) {
	pool := newPostgresPool(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)
	sequences := NewSequenceRepository(pool)

	require.NoError(t, tickets.Create(ctx, pgTicket(domain.FormatTicketNumber(seededYear, 3))))
	require.NoError(t, tickets.Create(ctx, pgTicket(domain.FormatTicketNumber(seededYear, 7))))

	next, err := sequences.Next(ctx, seededYear)
	require.NoError(t, err)
	assert.Equal(t, 8, next)

	next, err = sequences.Next(ctx, seededYear)
	require.NoError(t, err)
	assert.Equal(t, 9, next)

	// A year without tickets starts over even though older years have some.
	next, err = sequences.Next(ctx, freshYear)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestPostgresVersionedUpdate(t *testing.T) {
	pool := newPostgresPool(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)

	ticket := pgTicket(domain.FormatTicketNumber(seededYear, 1))
	require.NoError(t, tickets.Create(ctx, ticket))
	require.Equal(t, int64(1), ticket.Version)

	ticket.CurrentState = domain.StateDelivered
	require.NoError(t, tickets.Update(ctx, ticket, 1))
	assert.Equal(t, int64(2), ticket.Version)

	stale := *ticket
	stale.TechnicianNotes = "late edit"
	assert.ErrorIs(t, tickets.Update(ctx, &stale, 1), ErrVersionConflict)

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateDelivered, stored.CurrentState)
	assert.Equal(t, domain.InitialReceived, stored.InitialState)
	assert.Empty(t, stored.TechnicianNotes)

	// Without an expected version the write always lands.
	stale.TechnicianNotes = "forced"
	require.NoError(t, tickets.Update(ctx, &stale, 0))
	assert.Equal(t, int64(3), stale.Version)

	missing := pgTicket("")
	missing.ID = "00000000-0000-0000-0000-000000000000"
	assert.ErrorIs(t, tickets.Update(ctx, missing, 1), pgx.ErrNoRows)
}
