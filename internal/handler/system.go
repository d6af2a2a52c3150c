package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/edlbridge/api/internal/bridge"
)

// SystemHandler serves the health check and the dashboard page.
type SystemHandler struct {
	bridge     *bridge.Bridge
	docID      string
	serverAddr string
	docsURL    string
}

func NewSystemHandler(b *bridge.Bridge, docID, serverAddr, docsURL string) *SystemHandler {
	return &SystemHandler{
		bridge:     b,
		docID:      docID,
		serverAddr: serverAddr,
		docsURL:    docsURL,
	}
}

// Health handles GET /health.
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"doc_id": h.docID,
		"server": h.serverAddr,
	})
}

// Dashboard handles GET / with a small status page.
func (h *SystemHandler) Dashboard(c *fiber.Ctx) error {
	docID := h.docID
	if docID == "" {
		docID = "—"
	}

	docLink := ""
	if h.docID != "" && h.docsURL != "" {
		docLink = fmt.Sprintf(`<a class="button" href="%s/documents/%s" target="_blank" rel="noopener noreferrer">Open Document</a>`, h.docsURL, h.docID)
	}

	html := fmt.Sprintf(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <title>Docs Bridge</title>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <style>
    :root { --fg:#111; --muted:#666; --ok:#0a7; --bg:#fafafa; --card:#fff; --border:#eee; }
    body { margin:0; background:var(--bg); color:var(--fg); font-family:-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    .wrap { max-width:900px; margin:40px auto; padding:0 20px; }
    .card { background:var(--card); border:1px solid var(--border); border-radius:14px; padding:20px; }
    h1 { margin:0 0 12px; font-size:22px; }
    .grid { display:grid; grid-template-columns: 1fr 1fr; gap:14px; margin-top:14px; }
    .kv { font-family:ui-monospace, Menlo, Consolas, monospace; font-size:14px; padding:10px; background:#fcfcfc; border:1px solid var(--border); border-radius:10px; }
    a.button { display:inline-block; padding:10px 14px; border-radius:10px; border:1px solid var(--border); text-decoration:none; }
    .ok { color:var(--ok); font-weight:600; }
    .muted { color:var(--muted); }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="card">
      <h1>Docs Bridge is running <span class="ok">●</span></h1>
      <div class="grid">
        <div class="kv">Doc ID: <strong>%s</strong></div>
        <div class="kv">Engine: <strong>%s</strong></div>
        <div class="kv">Queue depth: <strong>%d</strong></div>
        <div class="kv">Jobs tracked: <strong>%d</strong></div>
      </div>
      <p style="margin-top:16px">
        <a class="button" href="/health">Health JSON</a>
        <a class="button" href="/metrics">Metrics</a>
        %s
      </p>
      <p class="muted">Add an <code>edljson</code> fenced block in the watched document to push EDLs automatically.</p>
    </div>
  </div>
</body>
</html>`, docID, h.serverAddr, h.bridge.QueueDepth(), h.bridge.JobCount(), docLink)

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}
