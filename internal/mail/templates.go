package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/fekuna/omnipos-catalog-service/pkg/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed locales/*.json
var localeFS embed.FS

var localeFiles = []string{"locales/active.en.json", "locales/active.es.json"}

const layout = `<!DOCTYPE html>
<html>
<body>
<h2>{{.Heading}}</h2>
<table>
<tr><td>{{.NameLabel}}</td><td>{{.Name}}</td></tr>
<tr><td>{{.CategoryLabel}}</td><td>{{.Category}}</td></tr>
<tr><td>{{.PriceLabel}}</td><td>{{.Price}}</td></tr>
</table>
<p><small>{{.Timestamp}}</small></p>
</body>
</html>`

// Notification is the item snapshot a mail is rendered from. Event is the
// live method name (ItemCreated, ItemUpdated, ItemDeleted).
type Notification struct {
	Event     string
	ID        int64
	Name      string
	Category  string
	Price     float64
	Timestamp time.Time
}

type Templates struct {
	translator *i18n.Translator
	body       *template.Template
	lang       string
}

// NewTemplates loads the bundled locales. lang selects the language mails
// are rendered in; unknown languages fall back to English.
func NewTemplates(lang string) (*Templates, error) {
	tr := i18n.New(language.English)
	if err := tr.LoadFS(localeFS, localeFiles...); err != nil {
		return nil, err
	}
	body, err := template.New("notification").Parse(layout)
	if err != nil {
		return nil, fmt.Errorf("parse mail layout: %w", err)
	}
	if lang == "" {
		lang = language.English.String()
	}
	return &Templates{translator: tr, body: body, lang: lang}, nil
}

// Render builds the HTML mail for n, addressed to to.
func (t *Templates) Render(to string, n Notification) (Message, error) {
	data := map[string]any{
		"ID":   n.ID,
		"Name": n.Name,
	}

	tag, err := language.Parse(t.lang)
	if err != nil {
		tag = language.English
	}
	printer := message.NewPrinter(tag)

	var buf bytes.Buffer
	err = t.body.Execute(&buf, map[string]any{
		"Heading":       t.translator.T(t.lang, "ItemHeading", data),
		"NameLabel":     t.translator.T(t.lang, "ItemNameLabel", nil),
		"CategoryLabel": t.translator.T(t.lang, "ItemCategoryLabel", nil),
		"PriceLabel":    t.translator.T(t.lang, "ItemPriceLabel", nil),
		"Name":          n.Name,
		"Category":      n.Category,
		"Price":         printer.Sprintf("%.2f", n.Price),
		"Timestamp":     n.Timestamp.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render mail body: %w", err)
	}

	return Message{
		To:      to,
		Subject: t.translator.T(t.lang, n.Event+"Subject", data),
		Body:    buf.String(),
		IsHTML:  true,
	}, nil
}
