package relayer

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// priceDecimals is the scaling convention of the oracle contract: stored
// prices are integers scaled by 10^18.
const priceDecimals = 18

// FeedID is a 32-byte key naming a price series tracked by the attestation
// service and the oracle.
type FeedID [32]byte

func FeedIDFromHex(s string) (FeedID, error) {
	var id FeedID

	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return id, errors.Wrapf(err, "feed ID is not valid hex: %s", s)
	} else if len(raw) != len(id) {
		return id, errors.Errorf("feed ID must be %d bytes, got %d: %s", len(id), len(raw), s)
	}

	copy(id[:], raw)
	return id, nil
}

func (id FeedID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// SubmissionResult reports one confirmed price update transaction.
type SubmissionResult struct {
	// CycleID identifies the submission cycle that produced the transaction.
	CycleID string

	// TxHash of the confirmed update transaction.
	TxHash string

	// BlockNumber where the first confirmation was observed.
	BlockNumber uint64

	// Fee paid to the verifier contract, in native currency wei.
	Fee *big.Int
}

// PriceResult holds a stored oracle price both as the raw contract integer
// and scaled down by the 18-decimal convention for display.
type PriceResult struct {
	Raw   *big.Int
	Price decimal.Decimal
}

func newPriceResult(raw *big.Int) *PriceResult {
	return &PriceResult{
		Raw:   raw,
		Price: decimal.NewFromBigInt(raw, -priceDecimals),
	}
}
