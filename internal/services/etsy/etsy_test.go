package etsy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xelth-com/shopdeskgo/internal/config"
	"github.com/xelth-com/shopdeskgo/internal/models"
	"github.com/xelth-com/shopdeskgo/internal/store/storetest"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// fakeEtsy emulates the token endpoint and the Open API v3 routes used by the client
type fakeEtsy struct {
	t   *testing.T
	srv *httptest.Server

	mu            sync.Mutex
	listings      []map[string]interface{}
	refreshCalls  atomic.Int32
	exchangeCalls atomic.Int32
	failRefresh   bool
	refreshDelay  time.Duration
}

func newFakeEtsy(t *testing.T) *fakeEtsy {
	t.Helper()
	f := &fakeEtsy{t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", f.handleToken)
	mux.HandleFunc("/v3/application/shops", f.authorized(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":   1,
			"results": []map[string]interface{}{{"shop_id": 555, "shop_name": "Sweet Wick"}},
		})
	}))
	mux.HandleFunc("/v3/application/shops/555/listings/active", f.authorized(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":   len(f.listings),
			"results": f.listings,
		})
	}))

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeEtsy) config() config.EtsyConfig {
	return config.EtsyConfig{
		APIKey:      "key",
		APISecret:   "secret",
		RedirectURI: "https://app.example/etsy-callback",
		AuthURL:     f.srv.URL + "/connect",
		TokenURL:    f.srv.URL + "/token",
		APIBaseURL:  f.srv.URL + "/v3/application",
	}
}

func (f *fakeEtsy) setListings(listings ...map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings = listings
}

func (f *fakeEtsy) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		f.t.Errorf("bad token request: %v", err)
	}
	if got := r.PostForm.Get("client_id"); got != "key" {
		f.t.Errorf("client_id = %q, want key", got)
	}

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		f.exchangeCalls.Add(1)
		if r.PostForm.Get("redirect_uri") != "https://app.example/etsy-callback" {
			f.t.Errorf("redirect_uri = %q", r.PostForm.Get("redirect_uri"))
		}
		if r.PostForm.Get("code") != "abc" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "code was already redeemed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": "T1", "refresh_token": "R1", "expires_in": 3600, "token_type": "Bearer",
		})
	case "refresh_token":
		f.refreshCalls.Add(1)
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		if f.failRefresh || r.PostForm.Get("refresh_token") != "R1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_grant"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": "T2", "refresh_token": "R2", "expires_in": 3600, "token_type": "Bearer",
		})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func (f *fakeEtsy) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "missing api key"})
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer T1", "Bearer T2":
			next(w, r)
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func listingJSON(id int64, title string, amount, divisor int64, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"listing_id":  id,
		"title":       title,
		"description": title + " description",
		"price":       map[string]interface{}{"amount": amount, "divisor": divisor, "currency_code": "USD"},
		"quantity":    quantity,
		"state":       "active",
		"url":         "https://www.etsy.com/listing/" + title,
	}
}

type fixture struct {
	provider  *fakeEtsy
	mem       *storetest.Memory
	connector *Connector
	sync      *SyncService
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		provider: newFakeEtsy(t),
		mem:      storetest.New(),
		now:      testNow,
	}
	fx.connector = NewConnector(NewClient(fx.provider.config()), fx.mem).WithClock(func() time.Time { return fx.now })
	fx.sync = NewSyncService(fx.connector, fx.mem, 0)
	return fx
}

// connected stores an active connection for user-1 / shop 555
func (fx *fixture) connected(expiresAt time.Time) *models.ShopConnection {
	return fx.mem.AddConnection(models.ShopConnection{
		UserID:       "user-1",
		ShopID:       "555",
		ShopName:     "Sweet Wick",
		AccessToken:  "T1",
		RefreshToken: "R1",
		ExpiresAt:    expiresAt,
		IsActive:     true,
	})
}
