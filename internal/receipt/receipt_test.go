package receipt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util"
)

func testProfile() Profile {
	return Profile{
		Name:         "MULTIPLANET",
		AddressLines: []string{"Bº El Centro, Contiguo A Edificio Makalo,", "Tocoa, Colón"},
		Phones:       []string{"3171-3287", "9647-3966"},
		Email:        "multiplanettocoa@yahoo.com",
		Disclaimer:   []string{"Nota: 45 días"},
		Currency:     "L",
		Location:     time.UTC,
	}
}

func testTicket() *domain.Ticket {
	return &domain.Ticket{
		Number:             "TKT-2024-0008",
		CustomerName:       "Ana Ruiz",
		Phone:              "9999-0000",
		DeviceType:         "Laptop",
		Brand:              "Dell",
		Accessories:        "cargador, mouse",
		ProblemDescription: "No enciende",
		Priority:           domain.PriorityUrgent,
		CurrentState:       domain.StateReceived,
		ReceivedBy:         "Marta",
	}
}

func TestDetectAccessories(t *testing.T) {
	tests := []struct {
		text string
		want AccessoryFlags
	}{
		{"cargador, mouse", AccessoryFlags{Charger: true}},
		{"Cable USB y Cable Energía", AccessoryFlags{USBCable: true, PowerCable: true}},
		{"maletín negro, monitor, CPU", AccessoryFlags{CaseOrBag: true, Monitor: true, CPU: true}},
		{"charger, power cable, bag", AccessoryFlags{Charger: true, PowerCable: true, CaseOrBag: true}},
		{"", AccessoryFlags{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectAccessories(tt.text))
		})
	}
}

func TestDetectDeviceKind(t *testing.T) {
	assert.Equal(t, DeviceKind{Computer: true}, DetectDeviceKind("Laptop"))
	assert.Equal(t, DeviceKind{Computer: true}, DetectDeviceKind("PC de Escritorio"))
	assert.Equal(t, DeviceKind{Printer: true}, DetectDeviceKind("Impresora"))
	assert.Equal(t, DeviceKind{Other: true}, DetectDeviceKind("Tablet"))
}

func TestBuildView(t *testing.T) {
	ticket := testTicket()
	ticket.DevicePassword = "1234"
	ticket.EstimatedCost = decimal.RequireFromString("850")

	view, err := BuildView(ticket, testProfile(), LayoutA5, time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "5", view.Day)
	assert.Equal(t, "3", view.Month)
	assert.Equal(t, "24", view.Year)
	assert.True(t, view.Accessories.Charger)
	assert.False(t, view.Accessories.USBCable)
	assert.Equal(t, []string{"cargador", "mouse"}, view.AccessoryList)
	assert.Equal(t, "Clave: 1234", view.Observations)
	assert.Equal(t, "L 850.00", view.Total)
	assert.Equal(t, "No definida", view.EstimatedDelivery)
}

func TestBuildViewPrefersFinalCost(t *testing.T) {
	ticket := testTicket()
	ticket.EstimatedCost = decimal.RequireFromString("850")
	ticket.FinalCost = decimal.RequireFromString("900.5")

	view, err := BuildView(ticket, testProfile(), LayoutThermal80, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "L 900.50", view.Total)
}

func TestFormatRequiresCoreFields(t *testing.T) {
	ticket := testTicket()
	ticket.Phone = " "
	ticket.ProblemDescription = ""

	_, err := Format(ticket, testProfile(), LayoutA5, time.Now())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, []string{"phone", "problem_description"}, domainErr.Details["missing"])
}

func TestFormatA5(t *testing.T) {
	doc, err := Format(testTicket(), testProfile(), LayoutA5, time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	html := string(doc.HTML)
	assert.Equal(t, "Ticket TKT-2024-0008", doc.Title)
	assert.Contains(t, html, "size: A5 portrait")
	assert.Contains(t, html, "width: 148mm")
	assert.Contains(t, html, "ORDEN DE TRABAJO")
	assert.Contains(t, html, "TKT-2024-0008")
	assert.Contains(t, html, "Ana Ruiz")
	assert.Contains(t, html, "3171-3287 / 9647-3966")
	assert.Contains(t, html, "TOTAL A PAGAR")
	assert.Contains(t, html, "window.print()")
}

func TestFormatThermal(t *testing.T) {
	for layout, width := range map[Layout]string{LayoutThermal80: "width: 80mm", LayoutThermal58: "width: 58mm"} {
		doc, err := Format(testTicket(), testProfile(), layout, time.Now())
		require.NoError(t, err)
		assert.Contains(t, string(doc.HTML), width)
		html := string(doc.HTML)
		assert.Contains(t, html, "- cargador")
		assert.Contains(t, html, `<span class="box">X</span>Cargador`)
		assert.Contains(t, html, `<span class="box"></span>Cable USB`)
		assert.Contains(t, html, `<span class="box">X</span>Computadora`)
	}
}

func TestFormatEscapesUserInput(t *testing.T) {
	ticket := testTicket()
	ticket.CustomerName = "<script>alert(1)</script>"

	doc, err := Format(ticket, testProfile(), LayoutA5, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(doc.HTML), "<script>alert(1)</script>")
}

func TestPreviewAssignsProvisionalNumber(t *testing.T) {
	ticket := *testTicket()
	ticket.Number = ""
	now := time.Date(2024, 3, 5, 10, 30, 0, 123_000_000, time.UTC)

	doc, err := Preview(ticket, testProfile(), LayoutThermal58, now)
	require.NoError(t, err)

	want := ProvisionalNumber(now)
	assert.Regexp(t, `^TMP-20240305-\d{6}$`, want)
	assert.Equal(t, want, doc.Number)
}

func TestPreviewNumberUsesShopDate(t *testing.T) {
	ticket := *testTicket()
	ticket.Number = ""
	profile := testProfile()
	profile.Location = time.FixedZone("America/Tegucigalpa", -6*60*60)

	doc, err := Preview(ticket, profile, LayoutA5, time.Date(2027, 1, 1, 1, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Regexp(t, `^TMP-20261231-\d{6}$`, doc.Number)
}

func TestParseLayout(t *testing.T) {
	layout, err := ParseLayout("", LayoutThermal80)
	require.NoError(t, err)
	assert.Equal(t, LayoutThermal80, layout)

	layout, err = ParseLayout("A5", LayoutThermal80)
	require.NoError(t, err)
	assert.Equal(t, LayoutA5, layout)

	_, err = ParseLayout("letter", LayoutA5)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}
