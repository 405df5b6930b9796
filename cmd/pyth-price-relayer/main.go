package main

import (
	"fmt"
	"os"

	log "github.com/InjectiveLabs/suplog"
	cli "github.com/jawher/mow.cli"

	"github.com/arcas-finance/pyth-price-relayer/version"
)

var app = cli.App("pyth-price-relayer", "Relays signed price attestations to the on-chain oracle.")

var (
	envName     *string
	appLogLevel *string

	// EVM params
	evmRPC        *string
	oracleAddress *string
	evmPK         *string

	// Attestation service params
	attestationURL *string
	extraFeedIDs   *string
	feedsDir       *string
	websocketURL   *string

	// Metrics
	statsdPrefix   *string
	statsdAddr     *string
	statsdStuckDur *string
	statsdMocking  *string
	statsdDisabled *string
)

func panicIf(err error, msg ...interface{}) {
	if err != nil {
		log.WithError(err).Errorln(msg...)
		panic(err)
	}
}

func main() {
	initGlobalOptions(
		&envName,
		&appLogLevel,
	)

	initEVMOptions(
		&evmRPC,
		&oracleAddress,
		&evmPK,
	)

	initAttestationOptions(
		&attestationURL,
		&extraFeedIDs,
		&feedsDir,
		&websocketURL,
	)

	initStatsdOptions(
		&statsdPrefix,
		&statsdAddr,
		&statsdStuckDur,
		&statsdMocking,
		&statsdDisabled,
	)

	app.Before = func() {
		log.DefaultLogger.SetLevel(logLevel(*appLogLevel))
	}

	app.Command("continuous", "Runs the submission cycle on a fixed interval until stopped.", continuousCmd)
	app.Command("price", "Reads the stored price by derived-asset address.", priceCmd)
	app.Command("asset-price", "Reads the stored price by raw asset address.", assetPriceCmd)
	app.Command("invoke", "Dispatches a structured invocation event, printing the structured result.", invokeCmd)
	app.Command("watch", "Streams live price updates from the attestation service.", watchCmd)
	app.Command("version", "Print the version information and exit.", versionCmd)

	// bare invocation runs exactly one submission cycle
	app.Action = relayOnce

	_ = app.Run(os.Args)
}

func versionCmd(c *cli.Cmd) {
	c.Action = func() {
		fmt.Println(version.Version())
	}
}
