package relayer

import (
	"crypto/sha256"
	"encoding/hex"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Built-in feeds relayed by default. The identifiers are assigned by the
// attestation service and shared with the on-chain verifier.
const (
	FeedIDHexETHUSD = "0xff61491a931112ddf1bd8147cd1b641375f79f5825126d665480874634fd0ace"
	FeedIDHexBTCUSD = "0xe62df6c8b4a85fe1a67db44dc12de5db330f7ac66b72dc658afedf0f4a415b43"
)

// DefaultFeedIDs returns the fixed feed set used when no feed configs are
// supplied.
func DefaultFeedIDs() []FeedID {
	ids := make([]FeedID, 0, 2)
	for _, s := range []string{FeedIDHexETHUSD, FeedIDHexBTCUSD} {
		id, err := FeedIDFromHex(s)
		if err != nil {
			panic(err)
		}
		ids = append(ids, id)
	}
	return ids
}

// FeedConfig defines one extra price feed to relay, loaded from a TOML file.
type FeedConfig struct {
	Symbol    string `toml:"symbol"`
	FeedIDHex string `toml:"feedID"`
}

func ParseFeedConfig(body []byte) (*FeedConfig, error) {
	var config FeedConfig
	if err := toml.Unmarshal(body, &config); err != nil {
		err = errors.Wrap(err, "failed to unmarshal TOML config")
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *FeedConfig) Validate() error {
	var errSymbol, errFeedID error

	if len(c.Symbol) == 0 {
		errSymbol = errors.New("feed symbol is empty")
	}
	if _, err := FeedIDFromHex(c.FeedIDHex); err != nil {
		errFeedID = errors.Wrap(err, "feed ID invalid")
	}

	return multierr.Combine(errSymbol, errFeedID)
}

func (c *FeedConfig) FeedID() FeedID {
	id, err := FeedIDFromHex(c.FeedIDHex)
	if err != nil {
		panic(err)
	}
	return id
}

func (c *FeedConfig) Hash() string {
	h := sha256.New()

	_, _ = h.Write([]byte(c.Symbol))
	_, _ = h.Write([]byte(c.FeedIDHex))

	return hex.EncodeToString(h.Sum(nil))
}
