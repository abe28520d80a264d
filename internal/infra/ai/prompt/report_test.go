package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

func TestGetSystemPrompt(t *testing.T) {
	s := reports.Summary{TotalFilesScanned: 2, TotalUniqueFeatures: 2, SupportedFeatures: 1, UnsupportedFeatures: 1}
	p := GetSystemPrompt(s, 2026)

	// Total | Supported | Unsupported | Files
	assert.Contains(t, p, "| Total Features | Supported | Unsupported | Files Scanned |")
	assert.Contains(t, p, "| 2 | 1  | 1 | 2 |")
	assert.Contains(t, p, "© 2026 Scanora")
	assert.Contains(t, p, ".divider { border-top: 3px solid #444; margin: 30px 0; }")
	assert.Contains(t, p, "`\"Not tracked\"`")
	assert.NotContains(t, p, "%!", "no formatting verbs left unresolved")
}

func TestGetSystemPromptColumnOrder(t *testing.T) {
	s := reports.Summary{TotalFilesScanned: 7, TotalUniqueFeatures: 5, SupportedFeatures: 3, UnsupportedFeatures: 2}
	assert.Contains(t, GetSystemPrompt(s, 2025), "| 5 | 3  | 2 | 7 |")
}

func TestCompose(t *testing.T) {
	payload := "{\n  \"features\": []\n}"
	out := Compose(reports.Summary{}, 2026, payload)

	assert.True(t, strings.HasSuffix(out, "\n\n"+UserPrompt+"\n\n---\n"+payload))
	assert.True(t, strings.HasPrefix(out, GetSystemPrompt(reports.Summary{}, 2026)))
}

func TestLooksLikeHTMLDocument(t *testing.T) {
	assert.True(t, LooksLikeHTMLDocument("<!DOCTYPE html><html></html>"))
	assert.True(t, LooksLikeHTMLDocument("\n  <!doctype html>\n<html>"))
	assert.False(t, LooksLikeHTMLDocument("```html\n<!DOCTYPE html>"))
	assert.False(t, LooksLikeHTMLDocument(reports.FallbackHTML))
}
