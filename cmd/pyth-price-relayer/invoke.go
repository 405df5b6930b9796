package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	log "github.com/InjectiveLabs/suplog"
	cli "github.com/jawher/mow.cli"
	"github.com/xlab/closer"

	"github.com/arcas-finance/pyth-price-relayer/relayer"
)

// invokeCmd action dispatches a structured invocation event the same way a
// managed-function host would, printing the structured result.
//
// $ pyth-price-relayer invoke '{"command":"price","address":"0x..."}'
func invokeCmd(cmd *cli.Cmd) {
	cmd.Spec = "[EVENT]"

	eventJSON := cmd.StringArg("EVENT", "{}", "Invocation event as a JSON object")

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

		ctx := context.Background()

		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(*eventJSON), &raw); err != nil {
			log.WithError(err).Fatalln("event is not a JSON object")
			return
		}

		event, err := relayer.DecodeEvent(raw)
		if err != nil {
			log.WithError(err).Fatalln("failed to decode event")
			return
		}

		svc, err := newRelayerService(ctx)
		if err != nil {
			log.WithError(err).Fatalln("failed to initialize relayer")
			return
		}
		closer.Bind(svc.Close)

		// no host to call back from the CLI, rescheduling is a no-op
		handler := relayer.NewHandler(svc, relayer.NopRescheduler{})

		resp := handler.Invoke(ctx, event)

		out, err := json.Marshal(resp)
		panicIf(err, "failed to marshal invocation response")
		fmt.Println(string(out))

		if resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
	}
}
