package view

const dashboardHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>FX分析ツール</title>
<style>
body { font-family: -apple-system, "Hiragino Sans", "Noto Sans JP", sans-serif; margin: 0; background: #f4f6f9; color: #222; }
main { max-width: 1200px; margin: 0 auto; padding: 24px; }
.pair-toggle { display: flex; gap: 8px; margin-bottom: 16px; }
.pair-toggle-btn { padding: 8px 16px; border-radius: 6px; border: 1px solid #ccd; background: #fff; color: #333; text-decoration: none; }
.pair-toggle-btn.active { background: #1f6feb; color: #fff; border-color: #1f6feb; }
.summary { background: #fff; border-radius: 10px; padding: 16px 20px; margin-bottom: 20px; box-shadow: 0 2px 6px rgba(0,0,0,.06); }
.summary-pair { font-size: 1.6rem; font-weight: 700; margin-right: 12px; }
.summary-entry.up { color: #0a8a3a; }
.summary-entry.down { color: #c62828; }
.summary-entry.neutral { color: #777; }
.summary-time { color: #666; font-size: .9rem; margin-top: 6px; }
table { width: 100%; border-collapse: collapse; background: #fff; }
th, td { padding: 8px 10px; border-bottom: 1px solid #eee; text-align: center; }
.pair-name { font-weight: 700; text-align: left; }
.highlight-extreme-ranking { background: #fff3cd; font-weight: 700; }
.highlight-rsi-extreme { background: #fde2e1; font-weight: 700; }
.highlight-top3 { font-weight: 700; color: #1f6feb; }
.entry-buy { color: #0a8a3a; font-weight: 700; }
.entry-sell { color: #c62828; font-weight: 700; }
.entry-stay { color: #777; }
.trigger-on { color: #d9480f; font-weight: 700; }
.trigger-off { color: #999; }
.chart-thumbnail { width: 96px; border-radius: 4px; cursor: pointer; }
.win-frame { outline: 4px solid #0a8a3a; }
.lose-frame { outline: 4px solid #c62828; }
.modal { position: fixed; inset: 0; background: rgba(0,0,0,.6); display: none; align-items: center; justify-content: center; }
.modal.open { display: flex; }
.modal-box { background: #fff; border-radius: 10px; max-width: 90vw; overflow: hidden; }
.modal-box header { display: flex; justify-content: space-between; align-items: center; padding: 12px 16px; background: #f8f9fa; }
.modal-box h3 { margin: 0; font-size: 1.1rem; }
.modal-box img { max-width: 100%; max-height: 70vh; display: block; margin: 16px auto; }
</style>
</head>
<body>
<main>
<nav class="pair-toggle">
{{- range .Tabs}}
<a class="pair-toggle-btn{{if .Active}} active{{end}}" id="btn-{{.Source}}" href="/?source={{.Source}}">{{.Label}}</a>
{{- end}}
</nav>

{{with .View}}
{{if .HasSummary}}
<section class="summary">
<h2 id="summaryTitle">{{.Summary.Title}}</h2>
<div>
<span class="summary-pair" id="summaryPair">{{.Summary.Pair}}</span>
<span class="summary-entry {{.Summary.TrendClass}}" id="summaryEntry">{{.Summary.Direction}}</span>
</div>
<div class="summary-time" id="summaryTime">{{.Summary.Footer}}</div>
</section>
{{end}}

<div class="table-container" id="tableContainer">
<table id="forexTable">
<thead>
<tr>
<th>通貨ペア</th><th>RSIブレイクアウト</th><th>通貨強弱</th><th>CCI通貨強弱</th><th>BB%ランキング</th><th>総合ランキング</th><th>期待度</th><th>エントリー</th><th>トリガー</th>
</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>
<td class="pair-name">{{.Pair}}</td>
<td class="{{if .RSIExtreme}}highlight-rsi-extreme{{end}}">{{.RSIBreakout}}</td>
<td class="{{if .Extremes.CurrencyStrength}}highlight-extreme-ranking{{end}}">{{.CurrencyStrength}}</td>
<td class="{{if .Extremes.CCIStrength}}highlight-extreme-ranking{{end}}">{{.CCIStrength}}</td>
<td class="{{if .Extremes.BBPercent}}highlight-extreme-ranking{{end}}">{{.BBPercent}}</td>
<td class="{{if .Extremes.OverallRanking}}highlight-extreme-ranking{{end}}">{{.OverallRanking}}</td>
<td class="{{if .Top3}}highlight-top3{{end}}">{{.Medal}}{{.Confidence}}%</td>
<td><span class="{{.EntryClass}}">{{.Direction}}</span></td>
<td><span class="{{.TriggerClass}}">{{.TriggerText}}</span></td>
</tr>
{{- end}}
</tbody>
</table>
</div>
{{end}}

{{with .Charts}}
<section id="results">
<h2>検証結果</h2>
<div class="table-container">
<table>
<thead>
<tr><th>エントリー</th>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr><td>{{.Slot}}</td>
{{- range .Cells}}
<td><img src="{{.Path}}" alt="チャート画像" class="chart-thumbnail {{.Frame}}" data-title="{{.Title}}" loading="lazy"></td>
{{- end}}
</tr>
{{- end}}
</tbody>
</table>
</div>
</section>
{{end}}
</main>

<div class="modal" id="imageModal">
<div class="modal-box">
<header><h3 id="modalTitle"></h3><button type="button" id="modalClose">×</button></header>
<img id="modalImage" alt="チャート画像">
</div>
</div>

<script>
(function () {
  const source = {{.View.Source}};
  const modal = document.getElementById("imageModal");
  document.querySelectorAll(".chart-thumbnail").forEach(function (img) {
    img.addEventListener("click", function () {
      document.getElementById("modalTitle").textContent = img.dataset.title;
      document.getElementById("modalImage").src = img.src;
      modal.classList.add("open");
    });
  });
  function close() { modal.classList.remove("open"); }
  document.getElementById("modalClose").addEventListener("click", close);
  modal.addEventListener("click", function (e) { if (e.target === modal) close(); });
  document.addEventListener("keydown", function (e) { if (e.key === "Escape") close(); });

  if (window.EventSource) {
    const es = new EventSource("/events?feeds=" + encodeURIComponent(source));
    es.addEventListener(source, function () { location.reload(); });
  }
})();
</script>
</body>
</html>
`

// LoginHTML is served at /login.html.
const LoginHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>ログイン</title>
<style>
body { font-family: -apple-system, "Hiragino Sans", sans-serif; background: #f4f6f9; display: flex; justify-content: center; padding-top: 15vh; }
form { background: #fff; padding: 32px; border-radius: 10px; box-shadow: 0 2px 8px rgba(0,0,0,.08); width: 320px; }
input, button { width: 100%; padding: 10px; margin-top: 12px; box-sizing: border-box; }
#message { color: #c62828; margin-top: 12px; min-height: 1em; }
</style>
</head>
<body>
<form id="loginForm">
<h2>ログイン</h2>
<input type="password" id="password" placeholder="パスワード" autocomplete="current-password" required>
<button type="submit">ログイン</button>
<div id="message"></div>
</form>
<script>
document.getElementById("loginForm").addEventListener("submit", async function (e) {
  e.preventDefault();
  const res = await fetch("/api/auth", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({ password: document.getElementById("password").value })
  });
  const body = await res.json().catch(function () { return {}; });
  if (res.ok && body.success) {
    location.href = "/";
    return;
  }
  document.getElementById("message").textContent = body.message || body.detail || "ログインに失敗しました。";
});
</script>
</body>
</html>
`

// AdminHTML is served at /admin.html.
const AdminHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>パスワード変更</title>
<style>
body { font-family: -apple-system, "Hiragino Sans", sans-serif; background: #f4f6f9; display: flex; justify-content: center; padding-top: 10vh; }
form { background: #fff; padding: 32px; border-radius: 10px; box-shadow: 0 2px 8px rgba(0,0,0,.08); width: 360px; }
input, button { width: 100%; padding: 10px; margin-top: 12px; box-sizing: border-box; }
#message { margin-top: 12px; min-height: 1em; }
</style>
</head>
<body>
<form id="adminForm">
<h2>ログインパスワード変更</h2>
<input type="password" id="adminPassword" placeholder="管理者パスワード" required>
<input type="password" id="oldPassword" placeholder="現在のログインパスワード" required>
<input type="password" id="newPassword" placeholder="新しいログインパスワード" required>
<button type="submit">更新</button>
<div id="message"></div>
</form>
<script>
document.getElementById("adminForm").addEventListener("submit", async function (e) {
  e.preventDefault();
  const res = await fetch("/api/admin/change-password", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({
      adminPassword: document.getElementById("adminPassword").value,
      oldPassword: document.getElementById("oldPassword").value,
      newPassword: document.getElementById("newPassword").value
    })
  });
  const body = await res.json().catch(function () { return {}; });
  const msg = document.getElementById("message");
  msg.style.color = body.success ? "#0a8a3a" : "#c62828";
  msg.textContent = body.message || body.detail || "";
});
</script>
</body>
</html>
`
