// Package export writes ticket listings to spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/repair-ticket-service/internal/analytics"
	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

const (
	TicketsSheet = "Tickets"
	SummarySheet = "Summary"
)

var ticketHeaders = []string{
	"Number", "Intake", "Customer", "Phone", "Device", "Brand", "Model",
	"Serial", "Priority", "State", "Technician", "Estimated cost", "Final cost",
	"Estimated delivery",
}

// TicketsXLSX renders tickets and their statistics into a workbook. The
// device password is never exported.
func TicketsXLSX(tickets []domain.Ticket, stats analytics.Statistics, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TicketsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1d4ed8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, h := range ticketHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(TicketsSheet, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(ticketHeaders), 1)
	if err := f.SetCellStyle(TicketsSheet, "A1", last, header); err != nil {
		return nil, err
	}

	for i := range tickets {
		t := &tickets[i]
		delivery := ""
		if t.EstimatedDelivery != nil {
			delivery = t.EstimatedDelivery.In(loc).Format("2006-01-02")
		}
		row := []any{
			t.Number,
			t.IntakeAt.In(loc).Format("2006-01-02 15:04"),
			t.CustomerName,
			t.Phone,
			t.DeviceType,
			t.Brand,
			t.Model,
			t.SerialNumber,
			string(t.Priority),
			string(t.CurrentState),
			t.AssignedTechnician,
			t.EstimatedCost.InexactFloat64(),
			t.FinalCost.InexactFloat64(),
			delivery,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(TicketsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(TicketsSheet, "A", "B", 18)
	_ = f.SetColWidth(TicketsSheet, "C", "C", 28)
	_ = f.SetColWidth(TicketsSheet, "D", "N", 16)

	if err := writeSummary(f, stats, header); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, stats analytics.Statistics, header int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	rows := [][]any{
		{"Metric", "Count"},
		{"Total", stats.Total},
		{"In process", stats.InProcess},
		{"Completed", stats.Completed},
	}
	for _, entry := range domain.States {
		rows = append(rows, []any{"State: " + entry.Value, stats.CountsByState[domain.TicketState(entry.Value)]})
	}
	for _, entry := range domain.Priorities {
		rows = append(rows, []any{"Priority: " + entry.Value, stats.CountsByPriority[domain.TicketPriority(entry.Value)]})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	_ = f.SetCellStyle(SummarySheet, "A1", "B1", header)
	return f.SetColWidth(SummarySheet, "A", "A", 28)
}
