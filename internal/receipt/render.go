package receipt

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"check": func(on bool) string {
		if on {
			return "X"
		}
		return ""
	},
	"join": strings.Join,
}).ParseFS(templateFS, "templates/*.html.tmpl"))

// pageSpec is the paper geometry for one layout.
type pageSpec struct {
	Size    string
	WidthMM int
}

var pages = map[Layout]pageSpec{
	LayoutA5:        {Size: "A5 portrait", WidthMM: 148},
	LayoutThermal80: {Size: "80mm auto", WidthMM: 80},
	LayoutThermal58: {Size: "58mm auto", WidthMM: 58},
}

// Document is a rendered receipt ready to be sent to a browser for printing.
type Document struct {
	Title  string
	Layout Layout
	Number string
	HTML   []byte
}

// Format renders the receipt for a ticket in the requested layout.
func Format(t *domain.Ticket, profile Profile, layout Layout, now time.Time) (Document, error) {
	view, err := BuildView(t, profile, layout, now)
	if err != nil {
		return Document{}, err
	}
	page, ok := pages[layout]
	if !ok {
		return Document{}, apperrors.NewValidationError("unknown receipt layout", map[string]any{"layout": layout})
	}

	name := "a5.html.tmpl"
	if layout != LayoutA5 {
		name = "thermal.html.tmpl"
	}

	var buf bytes.Buffer
	data := struct {
		View
		Page pageSpec
	}{View: view, Page: page}
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Document{}, apperrors.NewInternalError(fmt.Errorf("render receipt: %w", err))
	}

	return Document{
		Title:  "Ticket " + t.Number,
		Layout: layout,
		Number: t.Number,
		HTML:   buf.Bytes(),
	}, nil
}

// Preview renders a receipt for a ticket that has not been saved yet. The
// ticket gets a provisional number when it has none.
func Preview(t domain.Ticket, profile Profile, layout Layout, now time.Time) (Document, error) {
	if t.Number == "" {
		loc := profile.Location
		if loc == nil {
			loc = time.UTC
		}
		t.Number = ProvisionalNumber(now.In(loc))
	}
	return Format(&t, profile, layout, now)
}
