// Package receipt turns a ticket into a printable work-order document.
package receipt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/repair-ticket-service/internal/config"
	"github.com/spec-kit/repair-ticket-service/internal/domain"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util"
)

// Layout selects the physical receipt format.
type Layout string

const (
	LayoutA5        Layout = "a5"
	LayoutThermal80 Layout = "thermal80"
	LayoutThermal58 Layout = "thermal58"
)

// ParseLayout resolves a layout name, falling back to def when raw is blank.
func ParseLayout(raw string, def Layout) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		if def == "" {
			return LayoutA5, nil
		}
		return ParseLayout(string(def), LayoutA5)
	case LayoutA5:
		return LayoutA5, nil
	case LayoutThermal80:
		return LayoutThermal80, nil
	case LayoutThermal58:
		return LayoutThermal58, nil
	}
	return "", apperrors.NewValidationError("unknown receipt layout", map[string]any{
		"layout":  raw,
		"allowed": []Layout{LayoutA5, LayoutThermal80, LayoutThermal58},
	})
}

// Profile is the business identity printed on every receipt.
type Profile struct {
	Name         string
	AddressLines []string
	Phones       []string
	Email        string
	LogoURL      string
	Disclaimer   []string
	Currency     string
	Location     *time.Location
}

// ProfileFromConfig builds the receipt profile from configuration.
func ProfileFromConfig(cfg config.BusinessConfig) Profile {
	return Profile{
		Name:         cfg.Name,
		AddressLines: cfg.AddressLines,
		Phones:       cfg.Phones,
		Email:        cfg.Email,
		LogoURL:      cfg.LogoURL,
		Disclaimer:   cfg.Disclaimer,
		Currency:     cfg.Currency,
		Location:     cfg.Location(),
	}
}

// AccessoryFlags are the checkboxes printed in the equipment block.
type AccessoryFlags struct {
	Charger    bool
	USBCable   bool
	PowerCable bool
	CaseOrBag  bool
	Monitor    bool
	CPU        bool
}

var accessoryVocabulary = []struct {
	keywords []string
	set      func(*AccessoryFlags)
}{
	{[]string{"cargador", "charger"}, func(f *AccessoryFlags) { f.Charger = true }},
	{[]string{"cable usb", "usb cable"}, func(f *AccessoryFlags) { f.USBCable = true }},
	{[]string{"cable energia", "cable energía", "cable de energia", "cable de energía", "power cable"}, func(f *AccessoryFlags) { f.PowerCable = true }},
	{[]string{"maletin", "maletín", "bolsa", "case", "bag"}, func(f *AccessoryFlags) { f.CaseOrBag = true }},
	{[]string{"monitor"}, func(f *AccessoryFlags) { f.Monitor = true }},
	{[]string{"cpu"}, func(f *AccessoryFlags) { f.CPU = true }},
}

// DetectAccessories matches the free-text accessories field against the
// fixed vocabulary, case-insensitively.
func DetectAccessories(text string) AccessoryFlags {
	var flags AccessoryFlags
	lower := strings.ToLower(text)
	for _, entry := range accessoryVocabulary {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				entry.set(&flags)
				break
			}
		}
	}
	return flags
}

// SplitAccessories splits the comma-separated accessories field.
func SplitAccessories(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DeviceKind is the device category checkbox row.
type DeviceKind struct {
	Computer bool
	Printer  bool
	Other    bool
}

// DetectDeviceKind classifies the device type text.
func DetectDeviceKind(deviceType string) DeviceKind {
	lower := strings.ToLower(deviceType)
	var kind DeviceKind
	for _, kw := range []string{"computadora", "pc", "laptop", "all-in-one", "computer"} {
		if strings.Contains(lower, kw) {
			kind.Computer = true
			break
		}
	}
	kind.Printer = strings.Contains(lower, "impresora") || strings.Contains(lower, "printer")
	kind.Other = !kind.Computer && !kind.Printer
	return kind
}

// View is the data handed to the receipt templates.
type View struct {
	Business          Profile
	Layout            Layout
	PrintedAt         string
	Day               string
	Month             string
	Year              string
	Number            string
	CustomerName      string
	Address           string
	Phone             string
	DeviceType        string
	Brand             string
	Model             string
	SerialNumber      string
	DeviceKind        DeviceKind
	Accessories       AccessoryFlags
	AccessoriesText   string
	AccessoryList     []string
	Problem           string
	Observations      string
	Priority          string
	State             string
	Total             string
	ReceivedBy        string
	EstimatedDelivery string
}

// Validate checks the fields a receipt cannot be printed without.
func Validate(t *domain.Ticket) error {
	var missing []string
	if strings.TrimSpace(t.CustomerName) == "" {
		missing = append(missing, "customer_name")
	}
	if strings.TrimSpace(t.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(t.ProblemDescription) == "" {
		missing = append(missing, "problem_description")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError(
			"complete at least customer name, phone and problem description to print",
			map[string]any{"missing": missing})
	}
	return nil
}

// BuildView maps a ticket onto the receipt fields.
func BuildView(t *domain.Ticket, profile Profile, layout Layout, now time.Time) (View, error) {
	if err := Validate(t); err != nil {
		return View{}, err
	}
	loc := profile.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	view := View{
		Business:          profile,
		Layout:            layout,
		PrintedAt:         local.Format("02/01/2006 15:04"),
		Day:               strconv.Itoa(local.Day()),
		Month:             strconv.Itoa(int(local.Month())),
		Year:              local.Format("06"),
		Number:            t.Number,
		CustomerName:      t.CustomerName,
		Address:           t.Address,
		Phone:             t.Phone,
		DeviceType:        t.DeviceType,
		Brand:             t.Brand,
		Model:             t.Model,
		SerialNumber:      t.SerialNumber,
		DeviceKind:        DetectDeviceKind(t.DeviceType),
		Accessories:       DetectAccessories(t.Accessories),
		AccessoriesText:   t.Accessories,
		AccessoryList:     SplitAccessories(t.Accessories),
		Problem:           t.ProblemDescription,
		Priority:          string(t.Priority),
		State:             string(t.CurrentState),
		Total:             formatTotal(t, profile.Currency),
		ReceivedBy:        t.ReceivedBy,
		EstimatedDelivery: "No definida",
	}
	if t.DevicePassword != "" {
		view.Observations = "Clave: " + t.DevicePassword
	}
	if t.EstimatedDelivery != nil {
		view.EstimatedDelivery = t.EstimatedDelivery.Format("02/01/2006")
	}
	return view, nil
}

// formatTotal prints the final cost, or the estimate while no final cost is set.
func formatTotal(t *domain.Ticket, currency string) string {
	amount := t.FinalCost
	if amount.IsZero() {
		amount = t.EstimatedCost
	}
	if amount.IsZero() {
		return ""
	}
	if currency == "" {
		return amount.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}

// ProvisionalNumber labels a receipt printed before the ticket is saved.
func ProvisionalNumber(now time.Time) string {
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}
	return fmt.Sprintf("TMP-%s-%s", now.Format("20060102"), millis)
}
