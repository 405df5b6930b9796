package main

import cli "github.com/jawher/mow.cli"

// initGlobalOptions defines some global CLI options, that are useful for most parts of the app.
func initGlobalOptions(
	envName **string,
	appLogLevel **string,
) {
	*envName = app.String(cli.StringOpt{
		Name:   "e env",
		Desc:   "The environment name this app runs in. Used for metrics and error reporting.",
		EnvVar: "RELAYER_ENV",
		Value:  "local",
	})

	*appLogLevel = app.String(cli.StringOpt{
		Name:   "l log-level",
		Desc:   "Available levels: error, warn, info, debug.",
		EnvVar: "RELAYER_LOG_LEVEL",
		Value:  "info",
	})
}

func initEVMOptions(
	evmRPC **string,
	oracleAddress **string,
	evmPK **string,
) {
	*evmRPC = app.String(cli.StringOpt{
		Name:   "evm-rpc",
		Desc:   "EVM JSON-RPC querying endpoint",
		EnvVar: "RELAYER_EVM_RPC",
		Value:  "http://localhost:8545",
	})

	*oracleAddress = app.String(cli.StringOpt{
		Name:   "oracle-address",
		Desc:   "Address of the price oracle contract.",
		EnvVar: "RELAYER_ORACLE_ADDRESS",
		Value:  "0x3f7d2b8b8cf4b3e6b0c1d69127531f6ba738f0b2",
	})

	*evmPK = app.String(cli.StringOpt{
		Name:   "evm-pk",
		Desc:   "Provide a raw EVM account private key in hex, used to sign update transactions.",
		EnvVar: "RELAYER_EVM_PK",
	})
}

func initAttestationOptions(
	attestationURL **string,
	extraFeedIDs **string,
	feedsDir **string,
	websocketURL **string,
) {
	*attestationURL = app.String(cli.StringOpt{
		Name:   "attestation-url",
		Desc:   "Price attestation service base URL",
		EnvVar: "RELAYER_ATTESTATION_URL",
		Value:  "https://hermes.pyth.network",
	})

	*extraFeedIDs = app.String(cli.StringOpt{
		Name:   "feed-ids",
		Desc:   "Comma-separated 32-byte feed IDs to relay in addition to the built-in set.",
		EnvVar: "RELAYER_FEED_IDS",
	})

	*feedsDir = app.String(cli.StringOpt{
		Name:   "feeds",
		Desc:   "Path to extra feed configuration files in TOML format",
		EnvVar: "RELAYER_FEEDS_DIR",
	})

	*websocketURL = app.String(cli.StringOpt{
		Name:   "websocket-url",
		Desc:   "Price attestation service streaming endpoint (watch command)",
		EnvVar: "RELAYER_WEBSOCKET_URL",
		Value:  "wss://hermes.pyth.network/ws",
	})
}

// initStatsdOptions sets options for StatsD metrics.
func initStatsdOptions(
	statsdPrefix **string,
	statsdAddr **string,
	statsdStuckDur **string,
	statsdMocking **string,
	statsdDisabled **string,
) {
	*statsdPrefix = app.String(cli.StringOpt{
		Name:   "statsd-prefix",
		Desc:   "Specify StatsD compatible metrics prefix.",
		EnvVar: "RELAYER_STATSD_PREFIX",
		Value:  "relayer",
	})

	*statsdAddr = app.String(cli.StringOpt{
		Name:   "statsd-addr",
		Desc:   "UDP address of a StatsD compatible metrics aggregator.",
		EnvVar: "RELAYER_STATSD_ADDR",
		Value:  "localhost:8125",
	})

	*statsdStuckDur = app.String(cli.StringOpt{
		Name:   "statsd-stuck-func",
		Desc:   "Sets a duration to consider a function to be stuck (e.g. in deadlock).",
		EnvVar: "RELAYER_STATSD_STUCK_DUR",
		Value:  "5m",
	})

	*statsdMocking = app.String(cli.StringOpt{
		Name:   "statsd-mocking",
		Desc:   "If enabled replaces statsd client with a mock one that simply logs values.",
		EnvVar: "RELAYER_STATSD_MOCKING",
		Value:  "false",
	})

	*statsdDisabled = app.String(cli.StringOpt{
		Name:   "statsd-disabled",
		Desc:   "Force disabling statsd reporting completely.",
		EnvVar: "RELAYER_STATSD_DISABLED",
		Value:  "true",
	})
}
