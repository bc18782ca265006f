package domain

import "strings"

// TicketState is the live position of a ticket in the repair workflow.
type TicketState string

const (
	StateReceived       TicketState = "Received"
	StateInDiagnosis    TicketState = "In Diagnosis"
	StateInRepair       TicketState = "In Repair"
	StateAwaitingParts  TicketState = "Awaiting Parts"
	StateRepaired       TicketState = "Repaired"
	StateReadyForPickup TicketState = "Ready for Pickup"
	StateDelivered      TicketState = "Delivered"
)

// StateAll is the list filter sentinel meaning "no state restriction".
const StateAll = "All"

// TicketPriority is the urgency classification, independent of state.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
	PriorityUrgent TicketPriority = "Urgent"
)

// InitialState is recorded at intake and never changes afterwards.
type InitialState string

const (
	InitialReceived        InitialState = "Received"
	InitialUnderEvaluation InitialState = "Under Evaluation"
)

// EnumEntry describes one enumerated value for display.
type EnumEntry struct {
	Value string `json:"value"`
	Alias string `json:"alias"`
	Color string `json:"color"`
}

// States lists the workflow in display order.
var States = []EnumEntry{
	{Value: string(StateReceived), Alias: "Recibido", Color: "blue"},
	{Value: string(StateInDiagnosis), Alias: "En Diagnóstico", Color: "purple"},
	{Value: string(StateInRepair), Alias: "En Reparación", Color: "yellow"},
	{Value: string(StateAwaitingParts), Alias: "Esperando Piezas", Color: "orange"},
	{Value: string(StateRepaired), Alias: "Reparado", Color: "green"},
	{Value: string(StateReadyForPickup), Alias: "Listo para Entregar", Color: "teal"},
	{Value: string(StateDelivered), Alias: "Entregado", Color: "gray"},
}

// Priorities lists priorities from lowest to highest.
var Priorities = []EnumEntry{
	{Value: string(PriorityLow), Alias: "Baja", Color: "green"},
	{Value: string(PriorityMedium), Alias: "Media", Color: "yellow"},
	{Value: string(PriorityHigh), Alias: "Alta", Color: "orange"},
	{Value: string(PriorityUrgent), Alias: "Urgente", Color: "red"},
}

// InitialStates lists the intake selector options.
var InitialStates = []EnumEntry{
	{Value: string(InitialReceived), Alias: "Recibido", Color: "blue"},
	{Value: string(InitialUnderEvaluation), Alias: "En Evaluación", Color: "purple"},
}

// ParseState accepts the canonical value or its legacy alias, case-insensitively.
func ParseState(raw string) (TicketState, bool) {
	v, ok := lookup(States, raw)
	return TicketState(v), ok
}

// ParsePriority accepts the canonical value or its legacy alias.
func ParsePriority(raw string) (TicketPriority, bool) {
	v, ok := lookup(Priorities, raw)
	return TicketPriority(v), ok
}

// ParseInitialState accepts the canonical value or its legacy alias.
func ParseInitialState(raw string) (InitialState, bool) {
	v, ok := lookup(InitialStates, raw)
	return InitialState(v), ok
}

// Color returns the badge color for s.
func (s TicketState) Color() string { return colorOf(States, string(s)) }

// Color returns the badge color for p.
func (p TicketPriority) Color() string { return colorOf(Priorities, string(p)) }

// Valid reports whether s is one of the seven workflow states.
func (s TicketState) Valid() bool { return canonical(States, string(s)) }

// Valid reports whether p is one of the four priorities.
func (p TicketPriority) Valid() bool { return canonical(Priorities, string(p)) }

// Valid reports whether i is one of the intake options.
func (i InitialState) Valid() bool { return canonical(InitialStates, string(i)) }

// InProcess reports whether s is one of the active, not-yet-repaired states.
func (s TicketState) InProcess() bool {
	switch s {
	case StateReceived, StateInDiagnosis, StateInRepair, StateAwaitingParts:
		return true
	}
	return false
}

// Completed reports whether the repair is done but not yet handed back.
func (s TicketState) Completed() bool {
	return s == StateRepaired || s == StateReadyForPickup
}

// Elevated reports whether p is High or Urgent.
func (p TicketPriority) Elevated() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

func lookup(entries []EnumEntry, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, e := range entries {
		if strings.EqualFold(raw, e.Value) || strings.EqualFold(raw, e.Alias) {
			return e.Value, true
		}
	}
	return "", false
}

func canonical(entries []EnumEntry, value string) bool {
	for _, e := range entries {
		if e.Value == value {
			return true
		}
	}
	return false
}

func colorOf(entries []EnumEntry, value string) string {
	for _, e := range entries {
		if e.Value == value {
			return e.Color
		}
	}
	return "gray"
}
