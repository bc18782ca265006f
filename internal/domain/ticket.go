package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TicketNumberPrefix prefixes every human ticket number.
const TicketNumberPrefix = "TKT"

// Ticket is a single repair job for one customer device.
type Ticket struct {
	ID                 string
	Number             string
	CustomerName       string
	Phone              string
	Address            string
	DeviceType         string
	Brand              string
	Model              string
	SerialNumber       string
	DevicePassword     string
	Accessories        string
	ProblemDescription string
	Priority           TicketPriority
	InitialState       InitialState
	CurrentState       TicketState
	TechnicianNotes    string
	ReceivedBy         string
	AssignedTechnician string
	EstimatedCost      decimal.Decimal
	FinalCost          decimal.Decimal
	IntakeAt           time.Time
	EstimatedDelivery  *time.Time
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TicketChanges lists the fields editable after intake. Nil means unchanged.
type TicketChanges struct {
	CurrentState       *TicketState
	AssignedTechnician *string
	TechnicianNotes    *string
	EstimatedCost      *decimal.Decimal
	FinalCost          *decimal.Decimal
	// EstimatedDelivery is applied when SetEstimatedDelivery is true; a nil
	// value clears the date.
	EstimatedDelivery    *time.Time
	SetEstimatedDelivery bool
}

// IsEmpty reports whether no field would change.
func (c TicketChanges) IsEmpty() bool {
	return c.CurrentState == nil &&
		c.AssignedTechnician == nil &&
		c.TechnicianNotes == nil &&
		c.EstimatedCost == nil &&
		c.FinalCost == nil &&
		!c.SetEstimatedDelivery
}

// Apply copies the changes onto t.
func (c TicketChanges) Apply(t *Ticket) {
	if c.CurrentState != nil {
		t.CurrentState = *c.CurrentState
	}
	if c.AssignedTechnician != nil {
		t.AssignedTechnician = *c.AssignedTechnician
	}
	if c.TechnicianNotes != nil {
		t.TechnicianNotes = *c.TechnicianNotes
	}
	if c.EstimatedCost != nil {
		t.EstimatedCost = *c.EstimatedCost
	}
	if c.FinalCost != nil {
		t.FinalCost = *c.FinalCost
	}
	if c.SetEstimatedDelivery {
		t.EstimatedDelivery = c.EstimatedDelivery
	}
}

// FormatTicketNumber renders TKT-<year>-<seq:04d>.
func FormatTicketNumber(year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", TicketNumberPrefix, year, seq)
}

// ParseTicketNumber splits a ticket number into its year and sequence.
func ParseTicketNumber(number string) (year, seq int, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] != TicketNumberPrefix {
		return 0, 0, fmt.Errorf("malformed ticket number %q", number)
	}
	if year, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("malformed ticket year %q: %w", number, err)
	}
	if seq, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, fmt.Errorf("malformed ticket sequence %q: %w", number, err)
	}
	return year, seq, nil
}

// Costs are stored as NUMERIC(12,2).
var (
	costScale int32 = 2
	maxCost         = decimal.New(1, 10)
)

// CheckCost reports whether d fits the cost column.
func CheckCost(d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return fmt.Errorf("cost must not be negative")
	case !d.Equal(d.Round(costScale)):
		return fmt.Errorf("cost must have at most %d decimal places", costScale)
	case d.GreaterThanOrEqual(maxCost):
		return fmt.Errorf("cost must be less than %s", maxCost.String())
	}
	return nil
}

// ParseCost parses a decimal amount; blank input is zero.
func ParseCost(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if err := CheckCost(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
