package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-ticket-service/internal/receipt"
	"github.com/spec-kit/repair-ticket-service/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReceiptsHandler serves printable receipts and exports.
type ReceiptsHandler struct {
	service *service.ReceiptService
}

// NewReceiptsHandler constructs handler.
func NewReceiptsHandler(receiptService *service.ReceiptService) *ReceiptsHandler {
	return &ReceiptsHandler{service: receiptService}
}

// Receipt GET /tickets/:id/receipt?layout=.
func (h *ReceiptsHandler) Receipt(c *fiber.Ctx) error {
	doc, err := h.service.Receipt(c.UserContext(), c.Params("id"), c.Query("layout"))
	if err != nil {
		return err
	}
	return sendDocument(c, doc)
}

// Preview POST /receipts/preview?layout=.
func (h *ReceiptsHandler) Preview(c *fiber.Ctx) error {
	input, err := parseCreateRequest(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Preview(input, c.Query("layout"))
	if err != nil {
		return err
	}
	return sendDocument(c, doc)
}

// Export GET /tickets/export.xlsx?status=&search=.
func (h *ReceiptsHandler) Export(c *fiber.Ctx) error {
	content, err := h.service.ExportXLSX(c.UserContext(), listFilter(c))
	if err != nil {
		return err
	}
	c.Attachment("tickets.xlsx")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(content)
}

func sendDocument(c *fiber.Ctx, doc receipt.Document) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set("X-Ticket-Number", doc.Number)
	c.Set("X-Receipt-Layout", string(doc.Layout))
	return c.Send(doc.HTML)
}
