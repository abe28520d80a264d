package reports

// PlaceholderHTML is served behind the download link until the worker
// overwrites it. It reloads itself every 10 seconds.
const PlaceholderHTML = `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>Refresh</title><meta http-equiv="refresh" content="10"><style>body{margin:0;font:bold 16px Arial;padding:20px} .dots::after{content:'';animation:d 1.5s steps(4,end) infinite}@keyframes d{0%{content:''}25%{content:'.'}50%{content:'..'}75%{content:'...'}100%{content:''}}</style></head><body>Report is being generated. If it takes over a minute, close this page and contact the developer. This page refreshes every 10 seconds.<span class="dots"></span></body></html>`

// FallbackHTML replaces the report when the model call fails.
const FallbackHTML = `
<html>
<head><title>Internal Error</title></head>
<body style="font-family: Arial; color: #444; text-align:center; margin-top:50px;">
    <h2>Internal error occurred</h2>
    <p>Please retry after an hour.</p>
</body>
</html>
`

// EstimatedWaitSeconds is the polling hint returned with every download link.
const EstimatedWaitSeconds = 60

// IsPlaceholder reports whether body is still the placeholder document.
func IsPlaceholder(body []byte) bool {
	return string(body) == PlaceholderHTML
}
