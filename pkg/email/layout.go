package email

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// LayoutData is the content of the notification email layout.
type LayoutData struct {
	Title string
	Body  string
	// Badge is shown above the title, typically the priority label.
	Badge        string
	SupportEmail string
}

var badgeColors = map[string]string{
	"CRITICA": "#b91c1c",
	"ALTA":    "#c2410c",
	"MEDIA":   "#1d4ed8",
	"BAJA":    "#4b5563",
}

// Layout is the HTML shell of every notification email. Title and body are
// escaped; each line of the body becomes a paragraph.
func Layout(data LayoutData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		b.WriteString(templ.EscapeString(data.Title))
		b.WriteString(`</title></head><body style="margin:0;padding:0;background:#f3f4f6;font-family:Arial,Helvetica,sans-serif;">`)
		b.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:24px;">`)
		b.WriteString(`<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;padding:32px;">`)

		if data.Badge != "" {
			color, ok := badgeColors[data.Badge]
			if !ok {
				color = badgeColors["BAJA"]
			}
			fmt.Fprintf(&b, `<tr><td><span style="display:inline-block;padding:2px 10px;border-radius:12px;color:#ffffff;font-size:12px;background:%s;">%s</span></td></tr>`,
				color, templ.EscapeString(data.Badge))
		}

		b.WriteString(`<tr><td><h1 style="font-size:20px;color:#111827;margin:16px 0;">`)
		b.WriteString(templ.EscapeString(data.Title))
		b.WriteString(`</h1></td></tr><tr><td style="font-size:14px;line-height:1.6;color:#374151;">`)
		for _, line := range strings.Split(data.Body, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString(`<p style="margin:0 0 12px;">`)
			b.WriteString(templ.EscapeString(line))
			b.WriteString(`</p>`)
		}
		b.WriteString(`</td></tr>`)

		if data.SupportEmail != "" {
			support := templ.EscapeString(data.SupportEmail)
			fmt.Fprintf(&b, `<tr><td style="padding-top:24px;font-size:12px;color:#6b7280;">Si tiene dudas, escriba a <a href="mailto:%s">%s</a>.</td></tr>`, support, support)
		}

		b.WriteString(`</table></td></tr></table></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RenderHTML renders a templ component to a string.
func RenderHTML(ctx context.Context, tpl templ.Component) (string, error) {
	var sb strings.Builder
	if err := tpl.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
