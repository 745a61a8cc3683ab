package clob

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/howardpen9/polysqueeze/pkg/auth"
	"github.com/howardpen9/polysqueeze/pkg/types"
)

const testPrivateKey = "0x1234567890123456789012345678901234567890123456789012345678901234"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	signer, err := auth.NewSigner(testPrivateKey)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return NewClient(srv.URL, signer, testLogger()), srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestCreateApiKeyFresh(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/api-key", func(w http.ResponseWriter, r *http.Request) {
		for _, h := range []string{"poly_address", "poly_signature", "poly_timestamp", "poly_nonce"} {
			if r.Header.Get(h) == "" {
				t.Errorf("missing L1 header %s", h)
			}
		}
		if len(r.Header.Get("poly_signature")) != 132 {
			t.Errorf("poly_signature length = %d, want 132", len(r.Header.Get("poly_signature")))
		}
		writeJSON(t, w, http.StatusOK, types.ApiCredentials{
			ApiKey: "key-1", Secret: "c2VjcmV0", Passphrase: "phrase-1",
		})
	})

	c, _ := newTestClient(t, mux)

	creds, err := c.CreateOrDeriveApiKey(context.Background(), nil)
	if err != nil {
		t.Fatalf("CreateOrDeriveApiKey: %v", err)
	}
	if creds.ApiKey != "key-1" || creds.Secret != "c2VjcmV0" || creds.Passphrase != "phrase-1" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if got := c.Credentials(); got != creds {
		t.Errorf("credentials not cached: %+v", got)
	}
}

func TestCreateApiKeyFallsBackToDerive(t *testing.T) {
	t.Parallel()

	var createCalled, deriveCalled bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/api-key", func(w http.ResponseWriter, r *http.Request) {
		createCalled = true
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"error": "creds already exist"})
	})
	mux.HandleFunc("GET /auth/derive-api-key", func(w http.ResponseWriter, r *http.Request) {
		deriveCalled = true
		if r.Header.Get("poly_address") == "" {
			t.Error("derive call missing L1 headers")
		}
		writeJSON(t, w, http.StatusOK, types.ApiCredentials{
			ApiKey: "key-derived", Secret: "c2VjcmV0", Passphrase: "phrase-d",
		})
	})

	c, _ := newTestClient(t, mux)

	creds, err := c.CreateOrDeriveApiKey(context.Background(), nil)
	if err != nil {
		t.Fatalf("CreateOrDeriveApiKey: %v", err)
	}
	if !createCalled || !deriveCalled {
		t.Errorf("create=%v derive=%v, want both called", createCalled, deriveCalled)
	}
	if creds.ApiKey != "key-derived" {
		t.Errorf("ApiKey = %s, want key-derived", creds.ApiKey)
	}
}

func TestCreateApiKeyAuthRejection(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/api-key", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "bad signature"})
	})

	c, _ := newTestClient(t, mux)

	_, err := c.CreateOrDeriveApiKey(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !types.IsKind(err, types.KindAuth) {
		t.Errorf("error kind = %v, want auth", err)
	}
}

func TestCreateApiKeyMalformedResponse(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/api-key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	})

	c, _ := newTestClient(t, mux)

	_, err := c.CreateOrDeriveApiKey(context.Background(), nil)
	if !types.IsKind(err, types.KindParse) {
		t.Errorf("error kind = %v, want parse", err)
	}
}

func TestGetApiKeys(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/api-keys", func(w http.ResponseWriter, r *http.Request) {
		for _, h := range []string{"poly_address", "poly_signature", "poly_timestamp", "poly_api_key", "poly_passphrase"} {
			if r.Header.Get(h) == "" {
				t.Errorf("missing L2 header %s", h)
			}
		}
		if r.Header.Get("poly_api_key") != "key-1" {
			t.Errorf("poly_api_key = %s, want key-1", r.Header.Get("poly_api_key"))
		}
		writeJSON(t, w, http.StatusOK, types.ApiKeysResponse{ApiKeys: []string{"key-1", "key-2"}})
	})

	c, _ := newTestClient(t, mux)
	c.SetCredentials(types.ApiCredentials{ApiKey: "key-1", Secret: "c2VjcmV0", Passphrase: "p"})

	keys, err := c.GetApiKeys(context.Background())
	if err != nil {
		t.Fatalf("GetApiKeys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "key-1" {
		t.Errorf("keys = %v", keys)
	}
}

func TestGetApiKeysWithoutCredentials(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.NewServeMux())

	_, err := c.GetApiKeys(context.Background())
	if !types.IsKind(err, types.KindValidation) {
		t.Errorf("error kind = %v, want validation", err)
	}
}

func TestGetBalanceAllowance(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /balance-allowance", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("asset_type"); got != "COLLATERAL" {
			t.Errorf("asset_type = %s, want COLLATERAL", got)
		}
		writeJSON(t, w, http.StatusOK, types.BalanceAllowanceResponse{
			Balance: "123450000", Allowance: "999999999",
		})
	})

	c, _ := newTestClient(t, mux)
	c.SetCredentials(types.ApiCredentials{ApiKey: "k", Secret: "c2VjcmV0", Passphrase: "p"})

	resp, err := c.GetBalanceAllowance(context.Background(), types.BalanceAllowanceParams{
		AssetType: types.AssetCollateral,
	})
	if err != nil {
		t.Fatalf("GetBalanceAllowance: %v", err)
	}
	if resp.Balance != "123450000" {
		t.Errorf("Balance = %s", resp.Balance)
	}
}

func TestGetBalanceAllowanceValidation(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.NewServeMux())
	c.SetCredentials(types.ApiCredentials{ApiKey: "k", Secret: "c2VjcmV0", Passphrase: "p"})

	tests := []struct {
		name   string
		params types.BalanceAllowanceParams
	}{
		{"missing asset type", types.BalanceAllowanceParams{}},
		{"conditional without token", types.BalanceAllowanceParams{AssetType: types.AssetConditional}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := c.GetBalanceAllowance(context.Background(), tt.params)
			if !types.IsKind(err, types.KindValidation) {
				t.Errorf("error kind = %v, want validation", err)
			}
		})
	}
}

func TestGetL2AuthRejection(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/api-keys", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]string{"error": "expired"})
	})

	c, _ := newTestClient(t, mux)
	c.SetCredentials(types.ApiCredentials{ApiKey: "k", Secret: "c2VjcmV0", Passphrase: "p"})

	_, err := c.GetApiKeys(context.Background())
	if !types.IsKind(err, types.KindAuth) {
		t.Errorf("error kind = %v, want auth", err)
	}
}
