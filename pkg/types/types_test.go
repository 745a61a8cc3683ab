package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMarketBookDecoding(t *testing.T) {
	t.Parallel()

	frame := `{"event_type":"book","asset_id":"A","market":"0xc1","hash":"h1",
		"bids":[{"price":"0.45","size":"100"}],"asks":[{"price":"0.55","size":"200"}],
		"some_future_field":true}`

	var book MarketBook
	if err := json.Unmarshal([]byte(frame), &book); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if book.AssetID != "A" || book.Hash != "h1" {
		t.Errorf("book = %+v", book)
	}
	if !book.Bids[0].Price.Equal(decimal.RequireFromString("0.45")) {
		t.Errorf("bid price = %s, want 0.45", book.Bids[0].Price)
	}
	if !book.Asks[0].Size.Equal(decimal.RequireFromString("200")) {
		t.Errorf("ask size = %s, want 200", book.Asks[0].Size)
	}
}

func TestPriceChangeDecoding(t *testing.T) {
	t.Parallel()

	frame := `{"event_type":"price_change","market":"0xc1","price_changes":[
		{"asset_id":"A","price":"0.46","size":"0","side":"SELL","hash":"h2","best_bid":"0.45","best_ask":"0.46"}]}`

	var msg PriceChangeMessage
	if err := json.Unmarshal([]byte(frame), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(msg.PriceChanges) != 1 {
		t.Fatalf("changes = %d, want 1", len(msg.PriceChanges))
	}
	pc := msg.PriceChanges[0]
	if pc.Hash != "h2" || pc.Side != SELL {
		t.Errorf("entry = %+v", pc)
	}
	if !pc.Size.IsZero() {
		t.Errorf("size = %s, want 0 (level removed)", pc.Size)
	}
}

func TestCredentialsComplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		creds ApiCredentials
		want  bool
	}{
		{"all set", ApiCredentials{ApiKey: "k", Secret: "s", Passphrase: "p"}, true},
		{"missing secret", ApiCredentials{ApiKey: "k", Passphrase: "p"}, false},
		{"empty", ApiCredentials{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.creds.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewInternalError("reading socket", cause)

	if !IsKind(err, KindInternal) {
		t.Error("IsKind(internal) = false")
	}
	if IsKind(err, KindAuth) {
		t.Error("IsKind(auth) = true for internal error")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause lost")
	}

	// Kinds survive another layer of wrapping.
	wrapped := fmt.Errorf("outer context: %w", err)
	if !IsKind(wrapped, KindInternal) {
		t.Error("kind lost through fmt.Errorf wrapping")
	}
}

func TestErrorMessageRendering(t *testing.T) {
	t.Parallel()

	if got := NewValidationError("empty asset list").Error(); got != "validation: empty asset list" {
		t.Errorf("Error() = %q", got)
	}

	withCause := NewNetworkError("dial", errors.New("refused")).Error()
	if withCause != "network: dial: refused" {
		t.Errorf("Error() = %q", withCause)
	}
}
