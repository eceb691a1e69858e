package email_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskhub/notify/pkg/email"
)

func TestLayout(t *testing.T) {
	t.Parallel()

	html, err := email.RenderHTML(context.Background(), email.Layout(email.LayoutData{
		Title:        "Riesgo <crítico>",
		Body:         "Primera línea\n\nSegunda & última",
		Badge:        "CRITICA",
		SupportEmail: "support@example.com",
	}))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Riesgo &lt;crítico&gt;")
	assert.NotContains(t, html, "<crítico>")
	assert.Contains(t, html, "<p style=\"margin:0 0 12px;\">Primera línea</p>")
	assert.Contains(t, html, "Segunda &amp; última")
	assert.Equal(t, 2, strings.Count(html, "<p "))
	assert.Contains(t, html, "#b91c1c")
	assert.Contains(t, html, "mailto:support@example.com")
}

func TestLayout_Minimal(t *testing.T) {
	t.Parallel()

	html, err := email.RenderHTML(context.Background(), email.Layout(email.LayoutData{Title: "t", Body: "b"}))
	require.NoError(t, err)
	assert.NotContains(t, html, "mailto:")
	assert.NotContains(t, html, "border-radius:12px")
}
