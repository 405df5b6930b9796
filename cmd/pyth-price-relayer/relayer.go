package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/InjectiveLabs/suplog"
	"github.com/ethereum/go-ethereum/common"
	cli "github.com/jawher/mow.cli"
	"github.com/pkg/errors"
	"github.com/xlab/closer"

	"github.com/arcas-finance/pyth-price-relayer/relayer"
)

// newRelayerService wires the attestation client and the chain client into
// a relayer service from the process configuration.
func newRelayerService(ctx context.Context) (relayer.Service, error) {
	feedIDs, err := collectFeedIDs()
	if err != nil {
		return nil, err
	}

	if !common.IsHexAddress(*oracleAddress) {
		return nil, errors.Errorf("oracle contract address is invalid: %s", *oracleAddress)
	}

	attestation := relayer.NewAttestationClient(&relayer.AttestationEndpointConfig{
		BaseURL: *attestationURL,
	})

	chain, err := relayer.NewChainClient(ctx, *evmRPC, common.HexToAddress(*oracleAddress), *evmPK)
	if err != nil {
		return nil, err
	}

	return relayer.NewService(attestation, chain, feedIDs)
}

// collectFeedIDs merges the built-in feed set with IDs supplied via the
// feed-ids option and TOML files from the feeds dir.
func collectFeedIDs() ([]relayer.FeedID, error) {
	feedIDs := relayer.DefaultFeedIDs()
	seen := make(map[relayer.FeedID]struct{}, len(feedIDs))
	for _, id := range feedIDs {
		seen[id] = struct{}{}
	}

	appendID := func(id relayer.FeedID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		feedIDs = append(feedIDs, id)
	}

	if len(*extraFeedIDs) > 0 {
		for _, idHex := range strings.Split(*extraFeedIDs, ",") {
			id, err := relayer.FeedIDFromHex(strings.TrimSpace(idHex))
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse feed-ids option")
			}
			appendID(id)
		}
	}

	if len(*feedsDir) > 0 {
		err := filepath.WalkDir(*feedsDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			} else if d.IsDir() {
				return nil
			} else if filepath.Ext(path) != ".toml" {
				return nil
			}

			cfgBody, err := os.ReadFile(path)
			if err != nil {
				err = errors.Wrapf(err, "failed to read feed config")
				return err
			}

			feedCfg, err := relayer.ParseFeedConfig(cfgBody)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{
					"filename": d.Name(),
				}).Errorln("failed to parse feed config")
				return nil
			}

			appendID(feedCfg.FeedID())

			return nil
		})

		if err != nil {
			return nil, errors.Wrapf(err, "feeds dir is specified, but failed to read from it: %s", *feedsDir)
		}
	}

	return feedIDs, nil
}

// relayOnce performs exactly one submission cycle and exits.
//
// $ pyth-price-relayer
func relayOnce() {
	// ensure a clean exit
	defer closer.Close()

	startMetricsGathering(
		statsdPrefix,
		statsdAddr,
		statsdStuckDur,
		statsdMocking,
		statsdDisabled,
	)

	ctx := context.Background()

	svc, err := newRelayerService(ctx)
	if err != nil {
		log.WithError(err).Fatalln("failed to initialize relayer")
		return
	}
	closer.Bind(svc.Close)

	result, err := svc.RunCycle(ctx)
	if err != nil {
		log.WithError(err).Fatalln("submission cycle failed")
		return
	}

	log.WithFields(log.Fields{
		"hash":   result.TxHash,
		"height": result.BlockNumber,
	}).Infoln("submission cycle complete")
}

// continuousCmd action runs the scheduled submission loop
//
// $ pyth-price-relayer continuous
func continuousCmd(cmd *cli.Cmd) {
	cmd.Action = func() {
		// ensure a clean exit
		defer closer.Close()

		startMetricsGathering(
			statsdPrefix,
			statsdAddr,
			statsdStuckDur,
			statsdMocking,
			statsdDisabled,
		)

		ctx, cancel := context.WithCancel(context.Background())
		closer.Bind(cancel)

		svc, err := newRelayerService(ctx)
		if err != nil {
			log.WithError(err).Fatalln("failed to initialize relayer")
			return
		}
		closer.Bind(svc.Close)

		sched := relayer.NewScheduler(svc)

		go func() {
			if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorln(err)

				// signal there that the app failed
				os.Exit(1)
			}
		}()

		closer.Hold()
	}
}
