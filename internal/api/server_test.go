package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/fxboard/internal/auth"
	"github.com/dgnsrekt/fxboard/internal/charts"
	"github.com/dgnsrekt/fxboard/internal/dashboard"
	"github.com/dgnsrekt/fxboard/internal/view"
)

type stubService struct {
	view      view.View
	raw       json.RawMessage
	err       error
	loginErr  error
	changeErr error
	marked    []string
	sources   []string
}

func (s *stubService) Signals(_ context.Context, source string) (view.View, error) {
	s.sources = append(s.sources, source)
	return s.view, s.err
}

func (s *stubService) Raw(context.Context, string) (json.RawMessage, error) {
	return s.raw, s.err
}

func (s *stubService) Refresh(_ context.Context, source string) (view.View, error) {
	s.sources = append(s.sources, source)
	return s.view, s.err
}

func (s *stubService) Charts(context.Context) (*charts.Table, error) {
	g := &charts.Grid{Dates: []string{"2025_08_28"}, Slots: []string{"0:00"}}
	t := g.Table(nil)
	return &t, s.err
}

func (s *stubService) MarkOutcome(_ context.Context, date, slot, outcome string) (charts.Image, error) {
	if s.err != nil {
		return charts.Image{}, s.err
	}
	s.marked = append(s.marked, date+"/"+slot+"/"+outcome)
	img, _ := charts.ParseFileName(charts.FileName(date, slot, outcome))
	return img, nil
}

func (s *stubService) Images(context.Context) ([]charts.Image, error) {
	img, _ := charts.ParseFileName("[2025_08_28][0000][Win].png")
	return []charts.Image{img}, s.err
}

func (s *stubService) ChartMeta(_ context.Context, date, slot string) (charts.Meta, error) {
	if s.err != nil {
		return charts.Meta{}, s.err
	}
	return charts.Meta{ID: "meta-1", Date: date, Slot: slot, File: charts.FileName(date, slot, "")}, nil
}

func (s *stubService) Status(context.Context) dashboard.Status {
	return dashboard.Status{
		Sources:     []dashboard.SourceStatus{{Source: "28pair", Loaded: true, Rows: 28}},
		Tasks:       []dashboard.TaskStatus{{Name: "reload-28pair", Running: true}},
		Subscribers: 2,
	}
}

func (s *stubService) RenderDashboard(_ context.Context, w io.Writer, source string) error {
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, "<html>dashboard "+source+"</html>")
	return err
}

func (s *stubService) Login(_ context.Context, password string) (auth.Session, error) {
	if s.loginErr != nil {
		return auth.Session{}, s.loginErr
	}
	token := strings.Repeat("ab", 32)
	return auth.Session{Token: token, Cookie: &http.Cookie{Name: auth.CookieName, Value: token, Path: "/", HttpOnly: true}}, nil
}

func (s *stubService) ChangePassword(context.Context, string, string, string) error {
	return s.changeErr
}

var sessionCookie = &http.Cookie{Name: auth.CookieName, Value: strings.Repeat("x", auth.TokenLength)}

func newTestServer(svc *stubService, opts Options) http.Handler {
	if opts.Gate.Paths == nil {
		opts.Gate = auth.DefaultGateConfig()
	}
	return NewServer(svc, opts)
}

func do(t *testing.T, h http.Handler, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeAuth(t *testing.T, w *httptest.ResponseRecorder) authResult {
	t.Helper()
	var got authResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return got
}

func TestDocsPages(t *testing.T) {
	h := newTestServer(&stubService{}, Options{})
	w := do(t, h, http.MethodGet, "/docs", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, `apiDescriptionUrl="/openapi.json"`) || !strings.Contains(body, `href="/docs/events"`) {
		t.Fatalf("docs page missing viewer or events link")
	}

	w = do(t, h, http.MethodGet, "/docs/events", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "view-updated") {
		t.Fatalf("events docs status = %d", w.Code)
	}
}

func TestOpenAPIListsOperations(t *testing.T) {
	h := newTestServer(&stubService{}, Options{})
	w := do(t, h, http.MethodGet, "/openapi.json", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	for _, id := range []string{"login", "change-password", "get-signals", "get-signals-raw", "refresh-signals", "get-charts", "list-chart-images", "get-chart-meta", "mark-chart-outcome", "get-status"} {
		if !strings.Contains(w.Body.String(), `"`+id+`"`) {
			t.Errorf("openapi missing operation %q", id)
		}
	}
}

func TestLoginSetsCookie(t *testing.T) {
	h := newTestServer(&stubService{}, Options{})
	w := do(t, h, http.MethodPost, "/api/auth", `{"password":"pw"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	got := decodeAuth(t, w)
	if !got.Success || len(got.Token) != auth.TokenLength {
		t.Fatalf("body = %+v", got)
	}
	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value == got.Token && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatalf("Set-Cookie = %q, want %s with token", w.Header().Values("Set-Cookie"), auth.CookieName)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h := newTestServer(&stubService{loginErr: auth.ErrInvalidPassword}, Options{})
	w := do(t, h, http.MethodPost, "/api/auth", `{"password":"nope"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	got := decodeAuth(t, w)
	if got.Success || got.Token != "" || got.Message != auth.MsgInvalidPassword {
		t.Fatalf("body = %+v", got)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			t.Fatalf("unexpected session cookie on failure: %v", c)
		}
	}
}

func TestChangePasswordStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"ok", nil, http.StatusOK, auth.MsgPasswordUpdated},
		{"admin", auth.ErrInvalidAdminPassword, http.StatusUnauthorized, auth.MsgInvalidAdminPassword},
		{"old", auth.ErrInvalidLoginPassword, http.StatusUnauthorized, auth.MsgInvalidLoginPassword},
		{"empty", auth.ErrEmptyPassword, http.StatusBadRequest, auth.MsgEmptyPassword},
		{"store", auth.ErrStoreUpdate, http.StatusInternalServerError, auth.MsgStoreUpdate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&stubService{changeErr: tt.err}, Options{})
			w := do(t, h, http.MethodPost, "/api/admin/change-password",
				`{"adminPassword":"a","oldPassword":"b","newPassword":"c"}`, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			got := decodeAuth(t, w)
			if got.Success != (tt.err == nil) || got.Message != tt.msg {
				t.Fatalf("body = %+v, want message %q", got, tt.msg)
			}
		})
	}
}

func TestGateRedirectsWithoutSession(t *testing.T) {
	h := newTestServer(&stubService{}, Options{})
	for _, path := range []string{"/", "/index.html", "/api/v1/signals"} {
		w := do(t, h, http.MethodGet, path, "", nil)
		if w.Code != http.StatusFound || w.Header().Get("Location") != auth.LoginPath {
			t.Errorf("%s: status = %d location = %q, want 302 to %s", path, w.Code, w.Header().Get("Location"), auth.LoginPath)
		}
	}
	for _, path := range []string{"/login.html", "/admin.html", "/health"} {
		if w := do(t, h, http.MethodGet, path, "", nil); w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, w.Code)
		}
	}
}

func TestDashboardPage(t *testing.T) {
	svc := &stubService{}
	h := newTestServer(svc, Options{})
	w := do(t, h, http.MethodGet, "/?source=10pair", "", sessionCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != "<html>dashboard 10pair</html>" {
		t.Fatalf("body = %q", got)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}

	svc.err = &dashboard.CodedError{Code: dashboard.CodeValidation, Message: "unknown source"}
	if w := do(t, h, http.MethodGet, "/?source=bad", "", sessionCookie); w.Code != http.StatusBadRequest {
		t.Fatalf("bad source status = %d, want 400", w.Code)
	}
}

func TestSignalsAPI(t *testing.T) {
	svc := &stubService{
		view: view.View{Source: "28pair", Pairs: 28, LoadedAt: time.Date(2025, 9, 1, 14, 5, 0, 0, time.UTC)},
		raw:  json.RawMessage(`{"USDJPY":{"Confidence":80}}`),
	}
	h := newTestServer(svc, Options{})

	w := do(t, h, http.MethodGet, "/api/v1/signals?source=28pair", "", sessionCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var v view.View
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Source != "28pair" || v.Pairs != 28 {
		t.Fatalf("view = %+v", v)
	}
	if svc.sources[0] != "28pair" {
		t.Fatalf("source passed = %q", svc.sources[0])
	}

	w = do(t, h, http.MethodGet, "/api/v1/signals/raw", "", sessionCookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"forexData":{"USDJPY":{"Confidence":80}}`) {
		t.Fatalf("raw status = %d body=%s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/api/v1/refresh?source=10pair", "", sessionCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestMapErrStatuses(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{dashboard.CodeValidation, http.StatusBadRequest},
		{dashboard.CodeNotFound, http.StatusNotFound},
		{dashboard.CodeFeedUnavailable, http.StatusBadGateway},
		{dashboard.CodeStorage, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			svc := &stubService{err: &dashboard.CodedError{Code: tt.code, Message: "boom"}}
			h := newTestServer(svc, Options{})
			w := do(t, h, http.MethodPost, "/api/v1/refresh", "", sessionCookie)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestChartsAPI(t *testing.T) {
	svc := &stubService{}
	h := newTestServer(svc, Options{})

	w := do(t, h, http.MethodGet, "/api/v1/charts", "", sessionCookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "8月28日") {
		t.Fatalf("charts status = %d body=%s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/api/v1/charts/images", "", sessionCookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"frame":"win-frame"`) {
		t.Fatalf("images status = %d body=%s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/api/v1/charts/2025_08_28/0100", "", sessionCookie)
	var meta charts.Meta
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil || w.Code != http.StatusOK {
		t.Fatalf("meta status = %d body=%s err=%v", w.Code, w.Body.String(), err)
	}
	if meta.Slot != "0100" || meta.File != "[2025_08_28][0100].png" {
		t.Fatalf("meta = %+v", meta)
	}

	w = do(t, h, http.MethodPut, "/api/v1/charts/2025_08_28/0000/outcome", `{"outcome":"Lose"}`, sessionCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("mark status = %d body=%s", w.Code, w.Body.String())
	}
	var img charts.Image
	if err := json.Unmarshal(w.Body.Bytes(), &img); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Frame != "lose-frame" || svc.marked[0] != "2025_08_28/0000/Lose" {
		t.Fatalf("image = %+v marked = %v", img, svc.marked)
	}
}

func TestLoginMalformedBody(t *testing.T) {
	h := newTestServer(&stubService{}, Options{})
	w := do(t, h, http.MethodPost, "/api/auth", `{"password":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body=%s)", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			t.Fatalf("unexpected session cookie: %v", c)
		}
	}
}

func TestLoginThrottled(t *testing.T) {
	h := newTestServer(&stubService{loginErr: auth.ErrInvalidPassword}, Options{Limiter: auth.NewLoginLimiter(1, 2)})
	for i := 0; i < 2; i++ {
		if w := do(t, h, http.MethodPost, "/api/auth", `{"password":"x"}`, nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i, w.Code)
		}
	}
	w := do(t, h, http.MethodPost, "/api/auth", `{"password":"x"}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestStaticData(t *testing.T) {
	public := t.TempDir()
	if err := os.MkdirAll(filepath.Join(public, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(public, "data", "fx_signals_10pair.json"), []byte(`{"forexData":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newTestServer(&stubService{}, Options{PublicDir: public})

	w := do(t, h, http.MethodGet, "/data/fx_signals_10pair.json?1700000000000", "", nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"forexData":{}}` {
		t.Fatalf("status = %d body=%q", w.Code, w.Body.String())
	}
}

func TestStatusAPI(t *testing.T) {
	h := newTestServer(&stubService{}, Options{})
	w := do(t, h, http.MethodGet, "/api/v1/status", "", sessionCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var got dashboard.Status
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Subscribers != 2 || len(got.Tasks) != 1 || !got.Sources[0].Loaded {
		t.Fatalf("status = %+v", got)
	}
}
