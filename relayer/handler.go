package relayer

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	log "github.com/InjectiveLabs/suplog"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	null "gopkg.in/guregu/null.v4"

	"github.com/InjectiveLabs/metrics"
)

// Event is the structured payload delivered by an invocation-style host.
// Both fields are optional: an empty command means one submission cycle.
type Event struct {
	Command      null.String `json:"command" mapstructure:"command"`
	Address      null.String `json:"address" mapstructure:"address"`
	NoReschedule bool        `json:"noReschedule" mapstructure:"noReschedule"`
}

// DecodeEvent converts a loosely-typed host payload into an Event. Unknown
// fields are ignored, hosts are free to attach their own metadata.
func DecodeEvent(raw map[string]interface{}) (Event, error) {
	var event Event

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: nullStringHook,
		Result:     &event,
	})
	if err != nil {
		return event, errors.Wrap(err, "failed to init event decoder")
	}

	if err := decoder.Decode(raw); err != nil {
		return event, errors.Wrap(err, "failed to decode event")
	}

	return event, nil
}

var nullStringType = reflect.TypeOf(null.String{})

func nullStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != nullStringType || from.Kind() != reflect.String {
		return data, nil
	}

	return null.StringFrom(data.(string)), nil
}

// Response is the structured invocation result handed back to the host.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Rescheduler asks the hosting environment to invoke the relayer again after
// the given duration. Non-hosted drivers pass NopRescheduler.
type Rescheduler interface {
	Reschedule(ctx context.Context, after time.Duration) error
}

type NopRescheduler struct{}

func (NopRescheduler) Reschedule(_ context.Context, _ time.Duration) error { return nil }

// Handler dispatches host invocations to the relayer service, mirroring the
// CLI command surface.
type Handler struct {
	svc         Service
	rescheduler Rescheduler

	logger  log.Logger
	svcTags metrics.Tags
}

func NewHandler(svc Service, rescheduler Rescheduler) *Handler {
	if rescheduler == nil {
		rescheduler = NopRescheduler{}
	}

	return &Handler{
		svc:         svc,
		rescheduler: rescheduler,

		logger: log.WithField("svc", "handler"),
		svcTags: metrics.Tags{
			"svc": "handler",
		},
	}
}

type responseBody struct {
	Success     bool   `json:"success"`
	Hash        string `json:"hash,omitempty"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	Price       string `json:"price,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Invoke runs the operation named by the event. Uncaught failures become a
// 500 response, never a raised fault.
func (h *Handler) Invoke(ctx context.Context, event Event) Response {
	metrics.ReportFuncCall(h.svcTags)
	doneFn := metrics.ReportFuncTiming(h.svcTags)
	defer doneFn()

	switch command := event.Command.ValueOrZero(); command {
	case "", "update":
		return h.invokeCycle(ctx, event)

	case "price":
		result, err := h.svc.ReadUnderlyingPrice(ctx, event.Address.ValueOrZero())
		return h.priceResponse(result, err)

	case "asset-price":
		result, err := h.svc.ReadAssetPrice(ctx, event.Address.ValueOrZero())
		return h.priceResponse(result, err)

	default:
		metrics.ReportFuncError(h.svcTags)
		return failureResponse(errors.Errorf("unknown command: %s", command))
	}
}

func (h *Handler) invokeCycle(ctx context.Context, event Event) Response {
	result, err := h.svc.RunCycle(ctx)
	if err != nil {
		metrics.ReportFuncError(h.svcTags)
		return failureResponse(err)
	}

	if !event.NoReschedule {
		if err := h.rescheduler.Reschedule(ctx, CycleInterval); err != nil {
			// the cycle itself succeeded, the host just won't call back
			h.logger.WithError(err).Warningln("failed to request rescheduling from host")
		}
	}

	return successResponse(responseBody{
		Success:     true,
		Hash:        result.TxHash,
		BlockNumber: result.BlockNumber,
	})
}

func (h *Handler) priceResponse(result *PriceResult, err error) Response {
	if err != nil {
		metrics.ReportFuncError(h.svcTags)
		return failureResponse(err)
	}

	return successResponse(responseBody{
		Success: true,
		Price:   result.Price.String(),
	})
}

func successResponse(body responseBody) Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       marshalBody(body),
	}
}

func failureResponse(err error) Response {
	return Response{
		StatusCode: http.StatusInternalServerError,
		Body: marshalBody(responseBody{
			Success: false,
			Error:   err.Error(),
		}),
	}
}

func marshalBody(body responseBody) string {
	out, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return string(out)
}
