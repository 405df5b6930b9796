package main

import (
	"os"
	"strings"
	"time"

	log "github.com/InjectiveLabs/suplog"
	"github.com/xlab/closer"

	"github.com/InjectiveLabs/metrics"
)

func startMetricsGathering(
	statsdPrefix *string,
	statsdAddr *string,
	statsdStuckDur *string,
	statsdMocking *string,
	statsdDisabled *string,
) {
	if toBool(*statsdDisabled) {
		// initializes statsd client with a mock one with no-op enabled
		metrics.Disable()
		return
	}

	go func() {
		for {
			hostname, _ := os.Hostname()
			err := metrics.Init(*statsdAddr, checkStatsdPrefix(*statsdPrefix), &metrics.StatterConfig{
				EnvName:              *envName,
				HostName:             hostname,
				StuckFunctionTimeout: duration(*statsdStuckDur, 5*time.Minute),
				MockingEnabled:       toBool(*statsdMocking) || *envName == "local",
			})
			if err != nil {
				log.WithError(err).Warningln("metrics init failed, will retry in 1 min")
				time.Sleep(time.Minute)
				continue
			}
			break
		}

		closer.Bind(func() {
			metrics.Close()
		})
	}()
}

func checkStatsdPrefix(s string) string {
	if !strings.HasSuffix(s, ".") {
		return s + "."
	}
	return s
}

func logLevel(s string) log.Level {
	switch s {
	case "1", "error":
		return log.ErrorLevel
	case "2", "warn":
		return log.WarnLevel
	case "3", "info":
		return log.InfoLevel
	case "4", "debug":
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

func toBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "t", "yes":
		return true
	default:
		return false
	}
}

func duration(s string, defaults time.Duration) time.Duration {
	dur, err := time.ParseDuration(s)
	if err != nil {
		dur = defaults
	}
	return dur
}
