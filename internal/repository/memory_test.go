package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

func TestMemoryListOrdersByIntakeDescending(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketRepository()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{0, 2 * time.Hour, time.Hour, 2 * time.Hour} {
		ticket := &domain.Ticket{Number: domain.FormatTicketNumber(2024, i+1), IntakeAt: base.Add(offset)}
		require.NoError(t, repo.Create(ctx, ticket))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	got := make([]string, 0, len(list))
	for _, ticket := range list {
		got = append(got, ticket.Number)
	}
	assert.Equal(t, []string{"TKT-2024-0002", "TKT-2024-0004", "TKT-2024-0003", "TKT-2024-0001"}, got)
}

func TestMemoryUpdateVersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketRepository()
	ticket := &domain.Ticket{Number: "TKT-2024-0001", CurrentState: domain.StateReceived}
	require.NoError(t, repo.Create(ctx, ticket))
	require.Equal(t, int64(1), ticket.Version)

	ticket.CurrentState = domain.StateInRepair
	require.NoError(t, repo.Update(ctx, ticket, 1))
	assert.Equal(t, int64(2), ticket.Version)

	ticket.CurrentState = domain.StateDelivered
	assert.ErrorIs(t, repo.Update(ctx, ticket, 1), ErrVersionConflict)

	stored, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateInRepair, stored.CurrentState)

	missing := &domain.Ticket{ID: "nope"}
	assert.ErrorIs(t, repo.Update(ctx, missing, 0), pgx.ErrNoRows)
}

func TestMemorySequenceSeedsFromExistingNumbers(t *testing.T) {
	ctx := context.Background()
	tickets := NewMemoryTicketRepository()
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{Number: "TKT-2024-0007"}))
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{Number: "TKT-2023-0042"}))

	seq := NewMemorySequenceRepository(tickets)
	next, err := seq.Next(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 8, next)

	next, err = seq.Next(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 9, next)

	next, err = seq.Next(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestMemoryDeleteMissing(t *testing.T) {
	repo := NewMemoryTicketRepository()
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), pgx.ErrNoRows)
}
