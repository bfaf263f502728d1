package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/susu3304/taru/internal/barrel"
	"github.com/susu3304/taru/internal/config"
)

func newTestAPI(t *testing.T) (*API, http.Handler) {
	t.Helper()
	cfg := &config.Config{WebBind: "127.0.0.1:0", CORSOrigins: []string{"*"}}
	api := New(cfg, barrel.NewService(), zerolog.Nop())
	return api, api.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return v
}

func register(t *testing.T, h http.Handler, name string) participantResponse {
	t.Helper()
	w := do(t, h, "POST", "/api/users", `{"name":"`+name+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", name, w.Code, w.Body.String())
	}
	return decode[participantResponse](t, w)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	_, h := newTestAPI(t)

	a := register(t, h, "A")
	b := register(t, h, "B")
	do(t, h, "POST", "/api/beer", `{"userId":"`+a.ID+`","amount":5}`)
	do(t, h, "POST", "/api/beer", `{"userId":"`+b.ID+`","amount":"3"}`)

	w := do(t, h, "POST", "/api/barrel/start", `{"name":"Friday","buyer":"A","price":10,"volume":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("start: status %d body %s", w.Code, w.Body.String())
	}
	started := decode[startResponse](t, w)
	if started.Status != "started" || !started.Session.Open || started.Session.StartTotals[a.ID] != 5 {
		t.Errorf("unexpected start response %+v", started)
	}

	w = do(t, h, "POST", "/api/beer", `{"userId":"`+a.ID+`","amount":2}`)
	if got := decode[participantResponse](t, w); got.TotalBeer != 7 {
		t.Errorf("TotalBeer = %v, want 7", got.TotalBeer)
	}

	history := decode[[]historyResponse](t, do(t, h, "GET", "/api/barrel/history", ""))
	if len(history) != 1 || !history[0].Open || history[0].Consumed[a.ID] != 2 || history[0].UserOwes[a.ID] != 2 {
		t.Errorf("live history = %+v", history)
	}

	w = do(t, h, "POST", "/api/barrel/close", "")
	if w.Code != http.StatusOK {
		t.Fatalf("close: status %d body %s", w.Code, w.Body.String())
	}
	closed := decode[historyResponse](t, w)
	if closed.Open || closed.PricePerL != 5 || closed.UserOwes[a.ID] != 10 || closed.UserOwes[b.ID] != 0 {
		t.Errorf("closed record = %+v", closed)
	}

	current := decode[noSessionResponse](t, do(t, h, "GET", "/api/barrel", ""))
	if current.Open {
		t.Error("session still reported open")
	}

	users := decode[[]participantResponse](t, do(t, h, "GET", "/api/users", ""))
	for _, u := range users {
		if u.TotalBeer != 0 {
			t.Errorf("%s TotalBeer = %v after close", u.Name, u.TotalBeer)
		}
	}

	history = decode[[]historyResponse](t, do(t, h, "GET", "/api/barrel/history", ""))
	if len(history) != 1 || history[0].Open {
		t.Errorf("history after close = %+v", history)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	_, h := newTestAPI(t)
	p := register(t, h, "A")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "missing name", method: "POST", path: "/api/users", body: `{}`, want: http.StatusBadRequest},
		{name: "malformed body", method: "POST", path: "/api/users", body: `{`, want: http.StatusBadRequest},
		{name: "unknown participant", method: "POST", path: "/api/beer", body: `{"userId":"nope","amount":1}`, want: http.StatusNotFound},
		{name: "negative amount", method: "POST", path: "/api/beer", body: `{"userId":"` + p.ID + `","amount":-1}`, want: http.StatusBadRequest},
		{name: "non-numeric amount", method: "POST", path: "/api/beer", body: `{"userId":"` + p.ID + `","amount":"lots"}`, want: http.StatusBadRequest},
		{name: "missing amount", method: "POST", path: "/api/beer", body: `{"userId":"` + p.ID + `"}`, want: http.StatusBadRequest},
		{name: "close without session", method: "POST", path: "/api/barrel/close", want: http.StatusConflict},
		{name: "start without buyer", method: "POST", path: "/api/barrel/start", body: `{"price":10,"volume":10}`, want: http.StatusBadRequest},
		{name: "start without volume", method: "POST", path: "/api/barrel/start", body: `{"buyer":"A","price":10}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
			}
		})
	}

	if got := decode[participantResponse](t, do(t, h, "POST", "/api/users", `{"name":"B"}`)); got.Name != "B" {
		t.Error("registration after failures did not work")
	}
}

func TestOverflowingConsumptionIsRejected(t *testing.T) {
	_, h := newTestAPI(t)
	p := register(t, h, "A")
	body := `{"userId":"` + p.ID + `","amount":1e308}`

	if w := do(t, h, "POST", "/api/beer", body); w.Code != http.StatusOK {
		t.Fatalf("first beer: status %d body %s", w.Code, w.Body.String())
	}
	if w := do(t, h, "POST", "/api/beer", body); w.Code != http.StatusBadRequest {
		t.Fatalf("second beer: status %d, want 400 (body %s)", w.Code, w.Body.String())
	}

	for _, path := range []string{"/api/users", "/api/leaderboard", "/api/barrel/history"} {
		w := do(t, h, "GET", path, "")
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: status %d body %s", path, w.Code, w.Body.String())
		}
	}
	users := decode[[]participantResponse](t, do(t, h, "GET", "/api/users", ""))
	if len(users) != 1 || users[0].TotalBeer != 1e308 {
		t.Errorf("users = %+v, want total 1e308", users)
	}

	w := do(t, h, "POST", "/api/barrel/start", `{"buyer":"A","price":1e308,"volume":1e-10}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("overflowing start: status %d, want 400", w.Code)
	}
}

func TestOpenWhileOpenConflicts(t *testing.T) {
	_, h := newTestAPI(t)
	do(t, h, "POST", "/api/barrel/start", `{"name":"one","buyer":"A","price":10,"volume":10}`)

	w := do(t, h, "POST", "/api/barrel/start", `{"name":"two","buyer":"B","price":5,"volume":5}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	errResp := decode[ErrorResponse](t, w)
	if errResp.Code != http.StatusConflict || errResp.Error != "Conflict" {
		t.Errorf("error body = %+v", errResp)
	}

	current := decode[sessionResponse](t, do(t, h, "GET", "/api/barrel", ""))
	if current.Name != "one" || current.Buyer != "A" {
		t.Errorf("current session = %+v", current)
	}
	history := decode[[]historyResponse](t, do(t, h, "GET", "/api/barrel/history", ""))
	if len(history) != 1 || history[0].Name != "one" {
		t.Errorf("history = %+v", history)
	}
}

func TestLeaderboardAndRemoval(t *testing.T) {
	_, h := newTestAPI(t)
	a := register(t, h, "A")
	b := register(t, h, "B")
	c := register(t, h, "C")
	do(t, h, "POST", "/api/beer", `{"userId":"`+b.ID+`","amount":1}`)
	do(t, h, "POST", "/api/beer", `{"userId":"`+c.ID+`","amount":1}`)

	board := decode[[]participantResponse](t, do(t, h, "GET", "/api/leaderboard", ""))
	if len(board) != 3 || board[0].ID != b.ID || board[1].ID != c.ID || board[2].ID != a.ID {
		t.Errorf("leaderboard = %+v", board)
	}

	for i := 0; i < 2; i++ {
		if w := do(t, h, "DELETE", "/api/users/"+b.ID, ""); w.Code != http.StatusOK {
			t.Errorf("delete #%d status = %d", i+1, w.Code)
		}
	}
	users := decode[[]participantResponse](t, do(t, h, "GET", "/api/users", ""))
	if len(users) != 2 || users[0].ID != a.ID || users[1].ID != c.ID {
		t.Errorf("users = %+v", users)
	}
}

func TestReset(t *testing.T) {
	_, h := newTestAPI(t)
	register(t, h, "A")
	do(t, h, "POST", "/api/barrel/start", `{"name":"one","buyer":"A","price":10,"volume":10}`)

	if w := do(t, h, "POST", "/api/reset", ""); w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}
	if users := decode[[]participantResponse](t, do(t, h, "GET", "/api/users", "")); len(users) != 0 {
		t.Errorf("users = %+v", users)
	}
	if history := decode[[]historyResponse](t, do(t, h, "GET", "/api/barrel/history", "")); len(history) != 0 {
		t.Errorf("history = %+v", history)
	}
	if cur := decode[noSessionResponse](t, do(t, h, "GET", "/api/barrel", "")); cur.Open {
		t.Error("session survived reset")
	}
}

func TestOperationalEndpoints(t *testing.T) {
	_, h := newTestAPI(t)

	w := do(t, h, "GET", "/healthz", "")
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("healthz = %d %q", w.Code, w.Body.String())
	}

	w = do(t, h, "GET", "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "taru_http_requests_total") {
		t.Errorf("metrics endpoint missing collectors: %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestAPI(t)

	req := httptest.NewRequest("OPTIONS", "/api/users", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestNumberValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: `1.5`, want: 1.5},
		{in: `"2"`, want: 2},
		{in: `" 0.25 "`, want: 0.25},
		{in: `"abc"`, wantErr: true},
		{in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		var v numberValue
		err := v.UnmarshalJSON([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalJSON(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && float64(v) != tt.want {
			t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.in, float64(v), tt.want)
		}
	}
}
