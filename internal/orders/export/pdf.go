// Package export renders order documents.
package export

import (
	"fmt"
	"io"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"farmshop/internal/orders/models"
)

// PDF renders an order as a one-page A4 document. The core fonts only carry
// Latin-1, so diacritics are folded to their base letters.
type PDF struct {
	shopName string
	compress bool
}

func NewPDF(shopName string) *PDF {
	return &PDF{shopName: shopName, compress: true}
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Polozka", 80, "L"},
	{"Mnozstvi", 30, "R"},
	{"Cena/j.", 35, "R"},
	{"Celkem", 35, "R"},
}

func (p *PDF) Render(w io.Writer, o *models.Order) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(p.compress)
	doc.SetTitle(fmt.Sprintf("Objednavka c. %d", o.Number), false)
	doc.SetAuthor(fold(p.shopName), false)
	doc.SetCreationDate(o.CreatedAt)
	doc.SetModificationDate(o.UpdatedAt)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, fold(p.shopName), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, fmt.Sprintf("Objednavka c. %d", o.Number), "", 1, "L", false, 0, "")
	doc.Ln(2)

	doc.SetFont("Helvetica", "", 10)
	line := func(label, value string) {
		doc.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
		doc.CellFormat(0, 6, fold(value), "", 1, "L", false, 0, "")
	}
	line("Datum:", o.CreatedAt.Format("2. 1. 2006 15:04"))
	line("Zakaznik:", o.CustomerName)
	line("Stav:", o.Status.Label())
	line("Doprava:", o.DeliveryMethod.Label())
	if o.DeliveryMethod.Ships() {
		line("Adresa:", o.ShippingAddress)
		line("Mesto:", fmt.Sprintf("%s %s", o.ShippingZip, o.ShippingCity))
		line("Kraj:", o.ShippingState)
	}
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	for _, c := range columns {
		doc.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	itemsTotal := decimal.Zero
	for _, it := range o.Items {
		cells := []string{
			fold(it.Name),
			fmt.Sprintf("%d %s", it.Quantity, fold(it.Unit)),
			money(it.UnitPrice),
			money(it.LineTotal()),
		}
		for i, c := range columns {
			doc.CellFormat(c.width, 7, cells[i], "1", 0, c.align, false, 0, "")
		}
		doc.Ln(-1)
		itemsTotal = itemsTotal.Add(it.LineTotal())
	}

	if delivery := o.TotalAmount.Sub(itemsTotal); delivery.IsPositive() {
		doc.CellFormat(145, 7, "Doprava", "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, money(delivery), "1", 1, "R", false, 0, "")
	}
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(145, 8, "Celkem k uhrade", "1", 0, "R", false, 0, "")
	doc.CellFormat(35, 8, money(o.TotalAmount), "1", 1, "R", false, 0, "")

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render order %d: %w", o.Number, err)
	}
	return nil
}

func money(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0) + " Kc"
	}
	return d.StringFixed(2) + " Kc"
}

// fold strips combining marks: "Žluťoučký" becomes "Zlutoucky".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
