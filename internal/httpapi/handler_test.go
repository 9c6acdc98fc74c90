package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"github.com/xtding233/plinko-backend/internal/engine"
	"github.com/xtding233/plinko-backend/internal/plinko"
	"github.com/xtding233/plinko-backend/internal/table"
	"github.com/xtding233/plinko-backend/internal/wallet"
)

func newServer(t *testing.T, balance plinko.Amount) (*httptest.Server, *table.Table, *wallet.Account) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	acct := wallet.NewAccount(balance)
	eng, err := engine.New(engine.Config{
		Board:  plinko.BoardConfig{Rows: 8, Risk: plinko.RiskLow},
		Wallet: acct,
		RNG:    plinko.NewSeededRNG(7),
		Log:    log,
	})
	if err != nil {
		t.Fatal(err)
	}
	tb := table.New(eng, table.Options{Log: log, Limits: table.Limits{Min: 10, Max: 100_000}})
	srv := httptest.NewServer(New(log, tb, acct).Router())
	t.Cleanup(srv.Close)
	return srv, tb, acct
}

func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return res.StatusCode
}

func settle(t *testing.T, tb *table.Table) {
	t.Helper()
	for i := 0; tb.Falling() > 0; i++ {
		if i > 5000 {
			t.Fatal("never settled")
		}
		tb.Tick(16 * time.Millisecond)
	}
}

func TestGetBoard(t *testing.T) {
	srv, _, _ := newServer(t, 1000)

	var b BoardResponse
	if code := do(t, http.MethodGet, srv.URL+"/board", "", &b); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	want := []float64{3, 1.5, 0.8, 0.6, 0.6, 0.6, 0.8, 1.5, 3}
	if b.Rows != 8 || b.Risk != plinko.RiskLow || len(b.Table) != len(want) {
		t.Fatalf("board = %+v", b)
	}
	for i := range want {
		if b.Table[i] != want[i] {
			t.Fatalf("table[%d] = %v, want %v", i, b.Table[i], want[i])
		}
	}
	if len(b.Tiers) != 9 || b.Tiers[0] != plinko.TierOf(3) {
		t.Fatalf("tiers = %v", b.Tiers)
	}
	if b.Limits.Min != "0.10" || b.Locked {
		t.Fatalf("limits = %+v locked=%v", b.Limits, b.Locked)
	}
}

func TestPutBoard(t *testing.T) {
	srv, tb, _ := newServer(t, 100_000)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"ok", `{"rows":12,"risk":"HIGH"}`, http.StatusOK},
		{"rows too high", `{"rows":17,"risk":"low"}`, http.StatusBadRequest},
		{"rows too low", `{"rows":7,"risk":"low"}`, http.StatusBadRequest},
		{"missing risk", `{"rows":10}`, http.StatusBadRequest},
		{"bad risk", `{"rows":10,"risk":"extreme"}`, http.StatusBadRequest},
		{"bad json", `{"rows":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp Response
			if code := do(t, http.MethodPut, srv.URL+"/board", tt.body, &resp); code != tt.code {
				t.Fatalf("status %d, want %d (%s)", code, tt.code, resp.Error)
			}
			if resp.Status != tt.code {
				t.Fatalf("body status %d, want %d", resp.Status, tt.code)
			}
		})
	}

	got := tb.Board().Config
	if got.Rows != 12 || got.Risk != plinko.RiskHigh {
		t.Fatalf("board = %+v", got)
	}
}

func TestPutBoardLockedWhileFalling(t *testing.T) {
	srv, tb, _ := newServer(t, 100_000)

	if code := do(t, http.MethodPost, srv.URL+"/drop", `{"amount":"1"}`, nil); code != http.StatusCreated {
		t.Fatalf("drop status %d", code)
	}
	var resp Response
	if code := do(t, http.MethodPut, srv.URL+"/board", `{"rows":10,"risk":"low"}`, &resp); code != http.StatusConflict {
		t.Fatalf("status %d, want 409 (%s)", code, resp.Error)
	}

	settle(t, tb)
	if code := do(t, http.MethodPut, srv.URL+"/board", `{"rows":10,"risk":"low"}`, nil); code != http.StatusOK {
		t.Fatalf("status %d after settling", code)
	}
}

func TestDrop(t *testing.T) {
	srv, tb, acct := newServer(t, 1000)

	tests := []struct {
		name   string
		amount string
		code   int
	}{
		{"ok", `"2.50"`, http.StatusCreated},
		{"below limit", `"0.05"`, http.StatusBadRequest},
		{"not a number", `"abc"`, http.StatusBadRequest},
		{"negative", `"-1"`, http.StatusBadRequest},
		{"too many decimals", `"1.001"`, http.StatusBadRequest},
		{"insufficient", `"50"`, http.StatusPaymentRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]any
			code := do(t, http.MethodPost, srv.URL+"/drop", `{"amount":`+tt.amount+`}`, &raw)
			if code != tt.code {
				t.Fatalf("status %d, want %d (%v)", code, tt.code, raw)
			}
			if code == http.StatusCreated {
				if raw["wager"] != "2.50" || raw["balance"] != "7.50" {
					t.Fatalf("body = %v", raw)
				}
				if _, leaked := raw["target"]; leaked {
					t.Fatalf("drop response exposes the target: %v", raw)
				}
			}
		})
	}

	settle(t, tb)
	if acct.InFlight() != 0 {
		t.Fatalf("in flight = %d", acct.InFlight())
	}
}

func TestBalanceAndDeposit(t *testing.T) {
	srv, _, _ := newServer(t, 1000)

	var b BalanceResponse
	if code := do(t, http.MethodPost, srv.URL+"/deposit", `{"amount":"5.25"}`, &b); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if b.Balance != "15.25" {
		t.Fatalf("balance = %s", b.Balance)
	}
	if code := do(t, http.MethodPost, srv.URL+"/deposit", `{"amount":"0"}`, nil); code != http.StatusBadRequest {
		t.Fatalf("zero deposit status %d", code)
	}
	if code := do(t, http.MethodGet, srv.URL+"/balance", "", &b); code != http.StatusOK || b.Balance != "15.25" {
		t.Fatalf("status %d balance %s", code, b.Balance)
	}
}

func TestBallsHideTarget(t *testing.T) {
	srv, _, _ := newServer(t, 1000)
	if code := do(t, http.MethodPost, srv.URL+"/drop", `{"amount":"1"}`, nil); code != http.StatusCreated {
		t.Fatalf("drop status %d", code)
	}

	var raw struct {
		Balls []map[string]any `json:"balls"`
	}
	if code := do(t, http.MethodGet, srv.URL+"/balls", "", &raw); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(raw.Balls) != 1 {
		t.Fatalf("balls = %v", raw.Balls)
	}
	if _, ok := raw.Balls[0]["target"]; ok {
		t.Fatalf("ball exposes target: %v", raw.Balls[0])
	}
	if raw.Balls[0]["state"] != "falling" {
		t.Fatalf("state = %v", raw.Balls[0]["state"])
	}
}

func TestStatsAfterSettle(t *testing.T) {
	srv, tb, acct := newServer(t, 10_000)
	for range 5 {
		if code := do(t, http.MethodPost, srv.URL+"/drop", `{"amount":"1"}`, nil); code != http.StatusCreated {
			t.Fatalf("drop status %d", code)
		}
	}
	settle(t, tb)

	var s StatsResponse
	if code := do(t, http.MethodGet, srv.URL+"/stats", "", &s); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if s.Drops != 5 || s.Wagered != 500 {
		t.Fatalf("stats = %+v", s.RoundStats)
	}
	if acct.Balance() != 10_000-500+s.Paid {
		t.Fatalf("balance %d does not match paid %d", acct.Balance(), s.Paid)
	}
}

func TestRTP(t *testing.T) {
	srv, _, _ := newServer(t, 1000)

	var a RTPResponse
	if code := do(t, http.MethodGet, srv.URL+"/rtp?rows=16&risk=medium", "", &a); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if a.Rows != 16 || a.Risk != plinko.RiskMedium || len(a.Table) != 17 {
		t.Fatalf("analysis = %+v", a.Analysis)
	}
	if a.SelectorRTP <= 0 || a.SelectorRTP >= 1 {
		t.Fatalf("selector rtp = %v", a.SelectorRTP)
	}

	// second call is served from the cache and must agree
	var b RTPResponse
	do(t, http.MethodGet, srv.URL+"/rtp?rows=16&risk=medium", "", &b)
	if b.SelectorRTP != a.SelectorRTP {
		t.Fatalf("cached rtp %v != %v", b.SelectorRTP, a.SelectorRTP)
	}

	var d RTPResponse
	if code := do(t, http.MethodGet, srv.URL+"/rtp", "", &d); code != http.StatusOK || d.Rows != 8 || d.Risk != plinko.RiskLow {
		t.Fatalf("default rtp: status %d %+v", code, d.Analysis)
	}

	for _, q := range []string{"rows=20", "rows=x", "risk=wild"} {
		if code := do(t, http.MethodGet, srv.URL+"/rtp?"+q, "", nil); code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", q, code)
		}
	}
}

func TestWatchStreamsUpdates(t *testing.T) {
	srv, tb, _ := newServer(t, 1000)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// the subscription is registered after the upgrade; keep dropping until
	// the first update arrives
	if code := do(t, http.MethodPost, srv.URL+"/drop", `{"amount":"1"}`, nil); code != http.StatusCreated {
		t.Fatalf("drop status %d", code)
	}
	go func() {
		for range 400 {
			tb.Tick(16 * time.Millisecond)
			time.Sleep(time.Millisecond)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var u table.Update
	for len(u.Frames) == 0 {
		if err := conn.ReadJSON(&u); err != nil {
			t.Fatal(err)
		}
	}
	if u.Frames[0].Bucket != -1 && u.Frames[0].State == engine.Falling {
		t.Fatalf("falling frame carries a bucket: %+v", u.Frames[0])
	}
}
