package relayer

import (
	"context"
	"runtime/debug"

	log "github.com/InjectiveLabs/suplog"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/InjectiveLabs/metrics"
)

// Service runs the update-submission workflow against injected collaborators.
// Each operation returns a typed error from the taxonomy in errors.go, never
// a partial result.
type Service interface {
	// RunCycle performs one full submission cycle: fetch attestations, quote
	// the fee, submit the payable update transaction and await confirmation.
	RunCycle(ctx context.Context) (*SubmissionResult, error)

	// ReadUnderlyingPrice queries the stored price by derived-asset address.
	ReadUnderlyingPrice(ctx context.Context, address string) (*PriceResult, error)

	// ReadAssetPrice queries the stored price by raw asset address.
	ReadAssetPrice(ctx context.Context, address string) (*PriceResult, error)

	Close()
}

type relayerSvc struct {
	attestation AttestationClient
	chain       ChainClient
	feedIDs     []FeedID

	logger  log.Logger
	svcTags metrics.Tags
}

func NewService(
	attestation AttestationClient,
	chain ChainClient,
	feedIDs []FeedID,
) (Service, error) {
	if len(feedIDs) == 0 {
		return nil, configErrorf("no feed IDs configured")
	}

	svc := &relayerSvc{
		attestation: attestation,
		chain:       chain,
		feedIDs:     feedIDs,

		logger: log.WithField("svc", "relayer"),
		svcTags: metrics.Tags{
			"svc": "price_relayer",
		},
	}

	svc.logger.Infof("initialized relayer with %d price feeds", len(feedIDs))
	return svc, nil
}

func (s *relayerSvc) RunCycle(ctx context.Context) (result *SubmissionResult, err error) {
	metrics.ReportFuncCall(s.svcTags)
	doneFn := metrics.ReportFuncTiming(s.svcTags)
	defer doneFn()
	defer s.panicRecover(&err)

	cycleID := uuid.NewV4().String()
	cycleLog := s.logger.WithField("cycle_id", cycleID)

	updates, err := s.attestation.LatestUpdates(ctx, s.feedIDs)
	if err != nil {
		metrics.ReportFuncError(s.svcTags)
		return nil, err
	}

	if len(updates) < len(s.feedIDs) {
		cycleLog.WithFields(log.Fields{
			"requested": len(s.feedIDs),
			"received":  len(updates),
		}).Warningln("attestation service returned fewer update blobs than requested feeds")
	}

	verifier, err := s.chain.VerifierAddress(ctx)
	if err != nil {
		metrics.ReportFuncError(s.svcTags)
		return nil, feeQueryError(err, "failed to resolve verifier")
	}

	fee, err := s.chain.UpdateFee(ctx, verifier, updates)
	if err != nil {
		metrics.ReportFuncError(s.svcTags)
		return nil, feeQueryError(err, "failed to quote update fee")
	}

	balance, err := s.chain.SignerBalance(ctx)
	if err != nil {
		metrics.ReportFuncError(s.svcTags)
		return nil, submissionError(err, "failed to check signer balance")
	} else if balance.Cmp(fee) < 0 {
		metrics.ReportFuncError(s.svcTags)
		return nil, submissionErrorf("insufficient signer balance: have %s wei, fee requires %s wei", balance.String(), fee.String())
	}

	receipt, err := s.chain.SubmitUpdates(ctx, updates, fee)
	if err != nil {
		metrics.ReportFuncError(s.svcTags)
		return nil, submissionError(err, "failed to submit price updates")
	}

	cycleLog.WithFields(log.Fields{
		"hash":   receipt.TxHash.Hex(),
		"height": receipt.BlockNumber,
		"fee":    fee.String(),
	}).Infoln("submitted price updates")

	return &SubmissionResult{
		CycleID:     cycleID,
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber,
		Fee:         fee,
	}, nil
}

func (s *relayerSvc) ReadUnderlyingPrice(ctx context.Context, address string) (*PriceResult, error) {
	metrics.ReportFuncCall(s.svcTags)
	doneFn := metrics.ReportFuncTiming(s.svcTags)
	defer doneFn()

	pToken, err := parseAddress(address)
	if err != nil {
		metrics.ReportFuncError(s.svcTags)
		return nil, &QueryError{cause: err}
	}

	raw, err := s.chain.UnderlyingPrice(ctx, pToken)
	if err != nil {
		metrics.ReportFuncError(s.svcTags)
		return nil, queryError(err, "failed to read underlying price")
	}

	return newPriceResult(raw), nil
}

func (s *relayerSvc) ReadAssetPrice(ctx context.Context, address string) (*PriceResult, error) {
	metrics.ReportFuncCall(s.svcTags)
	doneFn := metrics.ReportFuncTiming(s.svcTags)
	defer doneFn()

	asset, err := parseAddress(address)
	if err != nil {
		metrics.ReportFuncError(s.svcTags)
		return nil, &QueryError{cause: err}
	}

	raw, err := s.chain.AssetPrice(ctx, asset)
	if err != nil {
		metrics.ReportFuncError(s.svcTags)
		return nil, queryError(err, "failed to read asset price")
	}

	return newPriceResult(raw), nil
}

func parseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, errors.Errorf("not a valid EVM address: %s", address)
	}

	return common.HexToAddress(address), nil
}

func (s *relayerSvc) panicRecover(err *error) {
	if r := recover(); r != nil {
		*err = errors.Errorf("%v", r)

		if e, ok := r.(error); ok {
			s.logger.WithError(e).Errorln("submission cycle panicked with an error")
			s.logger.Debugln(string(debug.Stack()))
		} else {
			s.logger.Errorln(r)
		}
	}
}

func (s *relayerSvc) Close() {
	s.chain.Close()
}
