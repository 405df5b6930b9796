package relayer

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI fragments of the on-chain surface this relayer consumes. The oracle
// contract stores prices for money-market assets and accepts signed update
// blobs; the verifier (resolved via pyth()) validates blobs and quotes the
// native-currency fee required to accept them.

const priceOracleABI = `[
	{"type":"function","name":"pyth","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"updateFeeds","stateMutability":"payable","inputs":[{"name":"priceUpdateData","type":"bytes[]"}],"outputs":[]},
	{"type":"function","name":"getUnderlyingPrice","stateMutability":"view","inputs":[{"name":"pToken","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"assetPrices","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const pythVerifierABI = `[
	{"type":"function","name":"getUpdateFee","stateMutability":"view","inputs":[{"name":"updateData","type":"bytes[]"}],"outputs":[{"name":"feeAmount","type":"uint256"}]}
]`

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

var (
	oracleABI   = mustParseABI(priceOracleABI)
	verifierABI = mustParseABI(pythVerifierABI)
)
