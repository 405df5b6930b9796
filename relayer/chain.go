package relayer

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	log "github.com/InjectiveLabs/suplog"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/InjectiveLabs/metrics"
)

// ChainClient is the on-chain surface consumed by the relayer: fee quoting,
// payable update submission and the two read-only price accessors.
type ChainClient interface {
	// VerifierAddress resolves the verifier contract address from the oracle.
	VerifierAddress(ctx context.Context) (common.Address, error)

	// UpdateFee asks the verifier how much native currency the supplied
	// update blobs require.
	UpdateFee(ctx context.Context, verifier common.Address, updates [][]byte) (*big.Int, error)

	// SignerBalance returns the native currency balance of the signing key.
	SignerBalance(ctx context.Context) (*big.Int, error)

	// SubmitUpdates sends the payable update transaction and blocks until one
	// confirmation is observed.
	SubmitUpdates(ctx context.Context, updates [][]byte, fee *big.Int) (*SubmissionReceipt, error)

	// UnderlyingPrice reads the stored price for a derived-asset address.
	UnderlyingPrice(ctx context.Context, pToken common.Address) (*big.Int, error)

	// AssetPrice reads the stored price for a raw asset address.
	AssetPrice(ctx context.Context, asset common.Address) (*big.Int, error)

	Close()
}

// SubmissionReceipt is the confirmation of one update transaction.
type SubmissionReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
}

var _ ChainClient = &ethChain{}

type ethChain struct {
	client *ethclient.Client
	oracle *bind.BoundContract

	key    *ecdsa.PrivateKey
	auth   *bind.TransactOpts
	sender common.Address

	logger  log.Logger
	svcTags metrics.Tags
}

// NewChainClient dials the RPC endpoint and binds the oracle contract with
// the given signing key. Handles are fresh per construction, nothing is
// shared between instances.
func NewChainClient(
	ctx context.Context,
	rpcEndpoint string,
	oracleAddress common.Address,
	privKeyHex string,
) (ChainClient, error) {
	if len(privKeyHex) == 0 {
		return nil, configErrorf("signing key is required (set RELAYER_EVM_PK)")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privKeyHex, "0x"))
	if err != nil {
		return nil, &ConfigError{cause: errors.Wrap(err, "failed to parse signing key")}
	}

	client, err := ethclient.DialContext(ctx, rpcEndpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial EVM RPC at %s", rpcEndpoint)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to query chain ID")
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to init transactor")
	}

	return &ethChain{
		client: client,
		oracle: bind.NewBoundContract(oracleAddress, oracleABI, client, client, client),

		key:    key,
		auth:   auth,
		sender: crypto.PubkeyToAddress(key.PublicKey),

		logger: log.WithFields(log.Fields{
			"svc":      "relayer",
			"chain_id": chainID.String(),
		}),
		svcTags: metrics.Tags{
			"svc": "eth_chain",
		},
	}, nil
}

func (c *ethChain) VerifierAddress(ctx context.Context) (common.Address, error) {
	metrics.ReportFuncCall(c.svcTags)
	doneFn := metrics.ReportFuncTiming(c.svcTags)
	defer doneFn()

	var out []interface{}
	if err := c.oracle.Call(&bind.CallOpts{Context: ctx}, &out, "pyth"); err != nil {
		metrics.ReportFuncError(c.svcTags)
		return common.Address{}, errors.Wrap(err, "failed to resolve verifier address")
	}

	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (c *ethChain) UpdateFee(ctx context.Context, verifier common.Address, updates [][]byte) (*big.Int, error) {
	metrics.ReportFuncCall(c.svcTags)
	doneFn := metrics.ReportFuncTiming(c.svcTags)
	defer doneFn()

	bound := bind.NewBoundContract(verifier, verifierABI, c.client, c.client, c.client)

	var out []interface{}
	if err := bound.Call(&bind.CallOpts{Context: ctx}, &out, "getUpdateFee", updates); err != nil {
		metrics.ReportFuncError(c.svcTags)
		return nil, errors.Wrap(err, "getUpdateFee call failed")
	}

	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (c *ethChain) SignerBalance(ctx context.Context) (*big.Int, error) {
	metrics.ReportFuncCall(c.svcTags)
	doneFn := metrics.ReportFuncTiming(c.svcTags)
	defer doneFn()

	balance, err := c.client.BalanceAt(ctx, c.sender, nil)
	if err != nil {
		metrics.ReportFuncError(c.svcTags)
		return nil, errors.Wrap(err, "failed to query signer balance")
	}

	return balance, nil
}

func (c *ethChain) SubmitUpdates(ctx context.Context, updates [][]byte, fee *big.Int) (*SubmissionReceipt, error) {
	metrics.ReportFuncCall(c.svcTags)
	doneFn := metrics.ReportFuncTiming(c.svcTags)
	defer doneFn()

	opts := *c.auth
	opts.Context = ctx
	opts.Value = fee

	tx, err := c.oracle.Transact(&opts, "updateFeeds", updates)
	if err != nil {
		metrics.ReportFuncError(c.svcTags)
		return nil, errors.Wrap(err, "failed to send update transaction")
	}

	c.logger.WithField("hash", tx.Hash().Hex()).Debugln("waiting for update transaction confirmation")

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		metrics.ReportFuncError(c.svcTags)
		return nil, errors.Wrapf(err, "failed to await confirmation of tx %s", tx.Hash().Hex())
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		metrics.ReportFuncError(c.svcTags)
		return nil, errors.Errorf("update transaction %s reverted on-chain", tx.Hash().Hex())
	}

	return &SubmissionReceipt{
		TxHash:      tx.Hash(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

func (c *ethChain) UnderlyingPrice(ctx context.Context, pToken common.Address) (*big.Int, error) {
	metrics.ReportFuncCall(c.svcTags)
	doneFn := metrics.ReportFuncTiming(c.svcTags)
	defer doneFn()

	var out []interface{}
	if err := c.oracle.Call(&bind.CallOpts{Context: ctx}, &out, "getUnderlyingPrice", pToken); err != nil {
		metrics.ReportFuncError(c.svcTags)
		return nil, errors.Wrapf(err, "getUnderlyingPrice call failed for %s", pToken.Hex())
	}

	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (c *ethChain) AssetPrice(ctx context.Context, asset common.Address) (*big.Int, error) {
	metrics.ReportFuncCall(c.svcTags)
	doneFn := metrics.ReportFuncTiming(c.svcTags)
	defer doneFn()

	var out []interface{}
	if err := c.oracle.Call(&bind.CallOpts{Context: ctx}, &out, "assetPrices", asset); err != nil {
		metrics.ReportFuncError(c.svcTags)
		return nil, errors.Wrapf(err, "assetPrices call failed for %s", asset.Hex())
	}

	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (c *ethChain) Close() {
	c.client.Close()
}
