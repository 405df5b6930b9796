package main

import (
	"context"

	log "github.com/InjectiveLabs/suplog"
	cli "github.com/jawher/mow.cli"
	"github.com/xlab/closer"

	"github.com/arcas-finance/pyth-price-relayer/relayer"
)

// watchCmd action streams live price updates for the configured feeds from
// the attestation service websocket.
//
// $ pyth-price-relayer watch
func watchCmd(cmd *cli.Cmd) {
	cmd.Action = func() {
		// ensure a clean exit
		defer closer.Close()

		ctx, cancel := context.WithCancel(context.Background())
		closer.Bind(cancel)

		feedIDs, err := collectFeedIDs()
		if err != nil {
			log.WithError(err).Fatalln("failed to collect feed IDs")
			return
		}

		conn, err := relayer.ConnectWebSocket(ctx, *websocketURL, relayer.MaxRetriesConnectWebSocket)
		if err != nil {
			log.WithError(err).Fatalln("failed to connect to attestation service websocket")
			return
		}

		watcher := relayer.NewPriceWatcher(conn, feedIDs)

		go func() {
			if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Errorln("price stream terminated")
			}
			closer.Close()
		}()

		closer.Hold()
	}
}
