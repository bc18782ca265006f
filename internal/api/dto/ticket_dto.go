package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

// Amount accepts a cost as a JSON number or string. Blank means zero.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(data)
	return nil
}

// Decimal parses the amount.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return domain.ParseCost(string(a))
}

// OptionalDate distinguishes an absent key from an explicit null.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

func (d *OptionalDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		d.Value = nil
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t, nil
}

// CreateTicketRequest is the intake form payload.
type CreateTicketRequest struct {
	CustomerName       string  `json:"customer_name" validate:"required,max=200"`
	Phone              string  `json:"phone" validate:"required,max=40"`
	Address            string  `json:"address" validate:"max=300"`
	DeviceType         string  `json:"device_type" validate:"max=100"`
	Brand              string  `json:"brand" validate:"max=100"`
	Model              string  `json:"model" validate:"max=100"`
	SerialNumber       string  `json:"serial_number" validate:"max=100"`
	DevicePassword     string  `json:"device_password" validate:"max=200"`
	Accessories        string  `json:"accessories" validate:"max=500"`
	ProblemDescription string  `json:"problem_description" validate:"required,max=4000"`
	Priority           string  `json:"priority" validate:"omitempty,priority"`
	InitialState       string  `json:"initial_state" validate:"omitempty,initial_state"`
	ReceivedBy         string  `json:"received_by" validate:"max=100"`
	AssignedTechnician string  `json:"assigned_technician" validate:"max=100"`
	TechnicianNotes    string  `json:"technician_notes" validate:"max=4000"`
	EstimatedCost      Amount  `json:"estimated_cost"`
	EstimatedDelivery  *string `json:"estimated_delivery"`
}

// UpdateTicketRequest carries the fields editable from the detail view.
// Absent keys are left unchanged.
type UpdateTicketRequest struct {
	CurrentState       *string      `json:"current_state" validate:"omitempty,state"`
	AssignedTechnician *string      `json:"assigned_technician" validate:"omitempty,max=100"`
	TechnicianNotes    *string      `json:"technician_notes" validate:"omitempty,max=4000"`
	EstimatedCost      *Amount      `json:"estimated_cost"`
	FinalCost          *Amount      `json:"final_cost"`
	EstimatedDelivery  OptionalDate `json:"estimated_delivery"`
	Version            int64        `json:"version" validate:"gte=0"`
	ChangedBy          string       `json:"changed_by" validate:"max=100"`
}

// TicketResponse is the API view of a ticket.
type TicketResponse struct {
	ID                 string                `json:"id"`
	Number             string                `json:"ticket_number"`
	CustomerName       string                `json:"customer_name"`
	Phone              string                `json:"phone"`
	Address            string                `json:"address"`
	DeviceType         string                `json:"device_type"`
	Brand              string                `json:"brand"`
	Model              string                `json:"model"`
	SerialNumber       string                `json:"serial_number"`
	DevicePassword     string                `json:"device_password"`
	Accessories        string                `json:"accessories"`
	ProblemDescription string                `json:"problem_description"`
	Priority           domain.TicketPriority `json:"priority"`
	PriorityColor      string                `json:"priority_color"`
	InitialState       domain.InitialState   `json:"initial_state"`
	CurrentState       domain.TicketState    `json:"current_state"`
	StateColor         string                `json:"state_color"`
	TechnicianNotes    string                `json:"technician_notes"`
	ReceivedBy         string                `json:"received_by"`
	AssignedTechnician string                `json:"assigned_technician"`
	EstimatedCost      decimal.Decimal       `json:"estimated_cost"`
	FinalCost          decimal.Decimal       `json:"final_cost"`
	IntakeAt           time.Time             `json:"intake_at"`
	EstimatedDelivery  *string               `json:"estimated_delivery"`
	Version            int64                 `json:"version"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// TicketSummary is the row shown in listings and dashboard slices.
type TicketSummary struct {
	ID            string                `json:"id"`
	Number        string                `json:"ticket_number"`
	CustomerName  string                `json:"customer_name"`
	Phone         string                `json:"phone"`
	DeviceType    string                `json:"device_type"`
	Brand         string                `json:"brand"`
	Priority      domain.TicketPriority `json:"priority"`
	PriorityColor string                `json:"priority_color"`
	CurrentState  domain.TicketState    `json:"current_state"`
	StateColor    string                `json:"state_color"`
	IntakeAt      time.Time             `json:"intake_at"`
}

// TicketHistoryResponse is one state change.
type TicketHistoryResponse struct {
	ID        string             `json:"id"`
	OldState  domain.TicketState `json:"old_state"`
	NewState  domain.TicketState `json:"new_state"`
	ChangedBy string             `json:"changed_by,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// DashboardResponse bundles statistics with the dashboard slices.
type DashboardResponse struct {
	Statistics any             `json:"statistics"`
	Recent     []TicketSummary `json:"recent"`
	Urgent     []TicketSummary `json:"urgent"`
}

// EnumsResponse lists the selectable values with their badge colors.
type EnumsResponse struct {
	States        []domain.EnumEntry `json:"states"`
	Priorities    []domain.EnumEntry `json:"priorities"`
	InitialStates []domain.EnumEntry `json:"initial_states"`
}
