package main

import (
	"context"
	"fmt"

	log "github.com/InjectiveLabs/suplog"
	cli "github.com/jawher/mow.cli"
	"github.com/xlab/closer"

	"github.com/arcas-finance/pyth-price-relayer/relayer"
)

// priceCmd action reads the stored price for a derived-asset address.
//
// $ pyth-price-relayer price <ADDRESS>
func priceCmd(cmd *cli.Cmd) {
	address := cmd.StringArg("ADDRESS", "", "Derived-asset (market) address to query")

	cmd.Action = func() {
		readPrice(*address, false)
	}
}

// assetPriceCmd action reads the stored price for a raw asset address.
//
// $ pyth-price-relayer asset-price <ADDRESS>
func assetPriceCmd(cmd *cli.Cmd) {
	address := cmd.StringArg("ADDRESS", "", "Raw asset address to query")

	cmd.Action = func() {
		readPrice(*address, true)
	}
}

func readPrice(address string, rawAsset bool) {
	// ensure a clean exit
	defer closer.Close()

	ctx := context.Background()

	svc, err := newRelayerService(ctx)
	if err != nil {
		log.WithError(err).Fatalln("failed to initialize relayer")
		return
	}
	closer.Bind(svc.Close)

	var result *relayer.PriceResult
	if rawAsset {
		result, err = svc.ReadAssetPrice(ctx, address)
	} else {
		result, err = svc.ReadUnderlyingPrice(ctx, address)
	}
	if err != nil {
		log.WithError(err).Fatalln("failed to read price")
		return
	}

	fmt.Println(result.Price.String())
}
