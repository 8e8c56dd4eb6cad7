package api

// docsHTML embeds the OpenAPI viewer under a nav bar shared with the events page.
const docsHTML = `<!doctype html>
<html lang="ja">
<head>
  <meta charset="utf-8" />
  <title>FX Signal Dashboard API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="display: flex; flex-direction: column; height: 100vh; margin: 0;">
  <nav style="padding: 6px 16px; border-bottom: 1px solid #d0d7de; font: 13px sans-serif;">
    <a href="/">ダッシュボード</a> | <a href="/docs/events">Live Update Events</a>
  </nav>
  <elements-api apiDescriptionUrl="/openapi.json" router="hash" layout="sidebar" style="flex: 1; min-height: 0;" />
</body>
</html>`

const eventsDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Live Update Events</title>
  <style>
    body { margin: 0 auto; max-width: 860px; padding: 24px; background: #0d1117; color: #c9d1d9;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; font-size: 14px; line-height: 1.65; }
    a { color: #58a6ff; text-decoration: none; }
    h1, h2 { color: #e6edf3; }
    code, pre { background: #161b22; border: 1px solid #30363d; border-radius: 6px; }
    code { padding: 1px 5px; }
    pre { padding: 12px; overflow-x: auto; }
    table { border-collapse: collapse; }
    td, th { border: 1px solid #30363d; padding: 4px 10px; text-align: left; }
  </style>
</head>
<body>
  <p><a href="/docs">← API reference</a></p>
  <h1>Live Update Events</h1>
  <p>Every successful load of a feed source publishes one event. The dashboard page listens and reloads itself.</p>

  <h2>Endpoints</h2>
  <table>
    <tr><th>Path</th><th>Transport</th></tr>
    <tr><td><code>GET /events</code></td><td>Server-sent events. The event name is the source.</td></tr>
    <tr><td><code>GET /ws</code></td><td>WebSocket. One text frame per event.</td></tr>
  </table>
  <p>Both accept <code>?feeds=10pair,28pair</code> to filter by source. Without it every source is delivered.</p>

  <h2>Payload</h2>
<pre>{
  "type": "view-updated",
  "source": "28pair",
  "loaded_at": "2025-09-01T14:05:00+09:00"
}</pre>
  <p>The WebSocket frame carries the same JSON.</p>

  <h2>Example</h2>
<pre>const es = new EventSource("/events?feeds=28pair");
es.addEventListener("28pair", (e) =&gt; console.log(JSON.parse(e.data)));</pre>
  <p>Slow subscribers miss events rather than block the loader.</p>
</body>
</html>`
