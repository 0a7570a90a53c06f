package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
)

const (
	TemplateContactMessage    = "contact_message"
	TemplateOrderConfirmation = "order_confirmation"
	TemplateStatusChanged     = "order_status_changed"
)

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"money": formatMoney,
}).Parse(`
{{define "contact_message"}}<h4>Do systému byla zadána nová zpráva!</h4>
<p>Jméno: <strong>{{.Name}}</strong></p>
<p>Email: <strong>{{.Email}}</strong></p>
<p>Předmět: <strong>{{.Subject}}</strong></p>
<p>Obsah: <strong>{{.Content}}</strong></p>
{{end}}

{{define "order_confirmation"}}<h4>Děkujeme za vaši objednávku!</h4>
<p>Číslo objednávky: <strong>{{.OrderNumber}}</strong></p>
<p>Jméno zákazníka: <strong>{{.CustomerName}}</strong></p>
<p>Způsob dopravy: {{if .Ship}}Doprava ({{money .DeliveryCost}} Kč){{else}}Osobní odběr{{end}}</p>
{{if .Ship}}<p>Adresa: {{.Address}}</p>
<p>Město: {{.City}}</p>
<p>Stát: {{.State}}</p>
<p>PSČ: {{.Zip}}</p>
{{end}}<h4>Objednané položky:</h4>
<ul style="list-style-type: none; padding: 4px 10px;">
{{range .Items}}<li>{{.Name}} ({{.Quantity}} {{.Unit}}) - {{money .LineTotal}} Kč</li>
{{end}}</ul>
<p><strong>Celkem:</strong> {{money .Total}} Kč</p>
<p>Brzy vás budeme kontaktovat s potvrzením o doručení.</p>
{{end}}

{{define "order_status_changed"}}<p>Vaše objednávka č. <strong>{{.OrderNumber}}</strong> byla aktualizována.</p>
<p>Nový status objednávky: <strong>{{.StatusLabel}}</strong></p>
{{end}}
`))

// ContactMessage is the data for the new contact message template.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Content string
}

// OrderLine is one item of an order confirmation.
type OrderLine struct {
	Name      string
	Unit      string
	Quantity  int
	LineTotal decimal.Decimal
}

// OrderConfirmation is the data for the order confirmation template.
type OrderConfirmation struct {
	OrderNumber  int64
	CustomerName string
	Email        string
	Ship         bool
	DeliveryCost decimal.Decimal
	Address      string
	City         string
	State        string
	Zip          string
	Items        []OrderLine
	Total        decimal.Decimal
}

// StatusChanged is the data for the status update template.
type StatusChanged struct {
	OrderNumber int64
	Email       string
	StatusLabel string
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatMoney(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}
