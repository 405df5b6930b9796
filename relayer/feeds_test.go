package relayer

import (
	"strings"
	"testing"
)

func TestDefaultFeedIDs(t *testing.T) {
	ids := DefaultFeedIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 built-in feeds, got %d", len(ids))
	}

	if ids[0].Hex() != FeedIDHexETHUSD {
		t.Errorf("first built-in feed = %s; want %s", ids[0].Hex(), FeedIDHexETHUSD)
	}
	if ids[1].Hex() != FeedIDHexBTCUSD {
		t.Errorf("second built-in feed = %s; want %s", ids[1].Hex(), FeedIDHexBTCUSD)
	}

	for _, id := range ids {
		if !strings.HasPrefix(id.Hex(), "0x") {
			t.Errorf("feed ID hex form must carry the 0x marker: %s", id.Hex())
		}
	}
}

func TestParseFeedConfig(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "valid config",
			body: `
symbol = "SOL/USD"
feedID = "0xef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d"
`,
		},
		{
			name: "feed ID without marker",
			body: `
symbol = "SOL/USD"
feedID = "ef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d"
`,
		},
		{
			name: "missing symbol",
			body: `
feedID = "0xef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d"
`,
			wantErr: true,
		},
		{
			name: "feed ID too short",
			body: `
symbol = "SOL/USD"
feedID = "0xef0d8b"
`,
			wantErr: true,
		},
		{
			name:    "not TOML",
			body:    `{"symbol": "SOL/USD"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseFeedConfig([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got config %+v", cfg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Symbol != "SOL/USD" {
				t.Errorf("symbol = %s; want SOL/USD", cfg.Symbol)
			}
			if got := cfg.FeedID().Hex(); got != "0xef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d" {
				t.Errorf("feed ID = %s", got)
			}
		})
	}
}

func TestFeedConfigHash(t *testing.T) {
	a := &FeedConfig{Symbol: "SOL/USD", FeedIDHex: "aa"}
	b := &FeedConfig{Symbol: "SOL/USD", FeedIDHex: "bb"}

	if a.Hash() == b.Hash() {
		t.Error("distinct configs must not collide")
	}
	if a.Hash() != (&FeedConfig{Symbol: "SOL/USD", FeedIDHex: "aa"}).Hash() {
		t.Error("hash must be deterministic")
	}
}
