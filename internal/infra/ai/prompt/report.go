package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

// UserPrompt is appended after the report instructions.
const UserPrompt = "Use the file text and follow the system prompt."

// GetSystemPrompt describes the HTML report the model must return. The
// summary counts are computed locally and written into the table row.
func GetSystemPrompt(s reports.Summary, year int) string {
	return fmt.Sprintf(`
    You are an assistant that generates a complete HTML report for feature scans and browser compatibility.

    Your task is to:
    1. Parse the given JSON object to extract the following metrics:
    - Total number of scanned files (from `+"`scannedFiles`"+` array).
    - Total number of unique features (count of `+"`featureId`"+` in the `+"`features`"+` array).
    - Count of supported features (`+"`supported: true`"+`).
    - Count of unsupported features (`+"`supported: false`"+`).
    - For each supported and unsupported feature, count the number of `+"`occurrences`"+` and show in format: feature-name (count).
    - This count must be derived **programmatically**, not assumed.

    2. Generate a valid **self-contained HTML** report using the following structure and styling:

    ### HTML Structure:

    - Add a main header at the top, centered and underlined:  
    **Scanora - Feature Scan & Browser Compatibility Report**

    - Add a below section 
    **Section 1: Feature Scan Report**
    - Show a summary table:
        ------------------------------------------------------------  
        | Total Features | Supported | Unsupported | Files Scanned |  
        | %d | %d  | %d | %d |  
        ------------------------------------------------------------  
    - Below the table:
        - List **Supported Features** as bullet points like:
        - feature-id (occurrence count of keyword of each unique feature-id)
        - List **Unsupported Features** as bullet points like:
        - feature-id (occurrence count of keyword of each unique feature-id)) — in **red color**

    - Add a visual divider:  
    `+"`<hr>`"+` or a `+"`<div class=\"divider\">`"+` as defined in styles

    - Add a below section 
    **Section 2: Browser Compatibility Matrix**
    - Table with these columns:
        `+"`Feature | Chrome | Chrome Android | Edge | Firefox | Firefox Android | Safari | Safari iOS`"+`
    - Populate versions from the `+"`versions`"+` field of each supported feature
        - Show version numbers exactly as they are, including symbols such as ≤ and decimals. Use HTML entities for special characters like ≤ (use &le;) so they render correctly on web pages. Display version numbers in green using inline CSS or classes.
        - Show `+"`\"Not tracked\"`"+` in **red** for feature not tracked in baseline
        - Show `+"`\"Unsupported\"`"+` in **red** for unsupported versions

    - Below the matrix, show a warning box:
      Warning: Unsupported features may cause runtime or compatibility issues across certain browsers.

    - Add a footer:
    - Center-aligned
    - Smaller font
    - Text: © %d Scanora

    ### Styling Rules (must be embedded in `+"`<style>`"+`):

    - Use Arial font.
    - `+"`.version { color: green; font-weight: bold; }`"+` for supported versions
    - `+"`.cross { color: red; font-weight: bold; }`"+` for unsupported or not tracked
    - `+"`.warning`"+` → yellow box with border, padding, dark yellow text
    - Tables: bordered, centered text, shaded header
    - Header `+"`h1`"+`: centered and underlined
    - `+"`.divider { border-top: 3px solid #444; margin: 30px 0; }`"+`
    - `+"`.footer { text-align: center; font-size: 12px; color: #555; margin-top: 40px; }`"+`

    ### Final Output Requirements:

    - Must start with: `+"`<!DOCTYPE html><html><head>...</head><body>...</body></html>`"+`
    - Must be valid standalone HTML
    - Do **not** return explanations or anything else outside the HTML

    ---

    JSON input will be provided next. Parse it and generate the complete HTML report.
    `,
		s.TotalUniqueFeatures,
		s.SupportedFeatures,
		s.UnsupportedFeatures,
		s.TotalFilesScanned,
		year,
	)
}

// Compose builds the single user message sent to the model: instructions,
// the short user prompt, and the indented request payload.
func Compose(s reports.Summary, year int, payloadJSON string) string {
	var b strings.Builder
	b.WriteString(GetSystemPrompt(s, year))
	b.WriteString("\n\n")
	b.WriteString(UserPrompt)
	b.WriteString("\n\n---\n")
	b.WriteString(payloadJSON)
	return b.String()
}

// LooksLikeHTMLDocument reports whether the model output starts with a
// doctype. Used for logging only; the output is stored as returned.
func LooksLikeHTMLDocument(out string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(out)), "<!doctype html")
}
