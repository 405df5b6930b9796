package relayer

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	null "gopkg.in/guregu/null.v4"
)

type stubService struct {
	result   *SubmissionResult
	cycleErr error

	price   *PriceResult
	readErr error

	cycles     int
	readCalls  int
	assetCalls int
}

func (s *stubService) RunCycle(_ context.Context) (*SubmissionResult, error) {
	s.cycles++
	if s.cycleErr != nil {
		return nil, s.cycleErr
	}
	return s.result, nil
}

func (s *stubService) ReadUnderlyingPrice(_ context.Context, _ string) (*PriceResult, error) {
	s.readCalls++
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.price, nil
}

func (s *stubService) ReadAssetPrice(_ context.Context, _ string) (*PriceResult, error) {
	s.assetCalls++
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.price, nil
}

func (s *stubService) Close() {}

type fakeRescheduler struct {
	calls []time.Duration
	err   error
}

func (r *fakeRescheduler) Reschedule(_ context.Context, after time.Duration) error {
	r.calls = append(r.calls, after)
	return r.err
}

func decodeBody(t *testing.T, resp Response) responseBody {
	t.Helper()

	var body responseBody
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return body
}

func TestHandlerPriceCommand(t *testing.T) {
	svc := &stubService{price: newPriceResult(big.NewInt(2_500_000_000_000_000_000))}
	handler := NewHandler(svc, nil)

	resp := handler.Invoke(context.Background(), Event{
		Command: null.StringFrom("price"),
		Address: null.StringFrom("0x8f3cf7ad23cd3cadbd9735aff958023239c6a063"),
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, "2.5", body.Price)
	assert.Empty(t, body.Error)
	assert.Equal(t, 1, svc.readCalls)
	assert.Zero(t, svc.assetCalls)
}

func TestHandlerPriceCommandFailure(t *testing.T) {
	svc := &stubService{readErr: queryError(errors.New("execution reverted"), "failed to read underlying price")}
	handler := NewHandler(svc, nil)

	resp := handler.Invoke(context.Background(), Event{
		Command: null.StringFrom("price"),
		Address: null.StringFrom("0x8f3cf7ad23cd3cadbd9735aff958023239c6a063"),
	})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "execution reverted")
}

func TestHandlerAssetPriceCommand(t *testing.T) {
	svc := &stubService{price: newPriceResult(big.NewInt(1_000_000_000_000_000_000))}
	handler := NewHandler(svc, nil)

	resp := handler.Invoke(context.Background(), Event{
		Command: null.StringFrom("asset-price"),
		Address: null.StringFrom("0x8f3cf7ad23cd3cadbd9735aff958023239c6a063"),
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", decodeBody(t, resp).Price)
	assert.Equal(t, 1, svc.assetCalls)
	assert.Zero(t, svc.readCalls)
}

func TestHandlerCycleReschedules(t *testing.T) {
	svc := &stubService{result: &SubmissionResult{
		CycleID:     "c1",
		TxHash:      "0xffaa",
		BlockNumber: 42,
	}}
	rescheduler := &fakeRescheduler{}
	handler := NewHandler(svc, rescheduler)

	resp := handler.Invoke(context.Background(), Event{})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, "0xffaa", body.Hash)
	assert.Equal(t, uint64(42), body.BlockNumber)

	assert.Equal(t, 1, svc.cycles)
	require.Len(t, rescheduler.calls, 1)
	assert.Equal(t, CycleInterval, rescheduler.calls[0])
}

func TestHandlerCycleNoReschedule(t *testing.T) {
	svc := &stubService{result: &SubmissionResult{TxHash: "0x01"}}
	rescheduler := &fakeRescheduler{}
	handler := NewHandler(svc, rescheduler)

	resp := handler.Invoke(context.Background(), Event{NoReschedule: true})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, rescheduler.calls)
}

func TestHandlerCycleFailure(t *testing.T) {
	svc := &stubService{cycleErr: submissionErrorf("insufficient signer balance")}
	rescheduler := &fakeRescheduler{}
	handler := NewHandler(svc, rescheduler)

	resp := handler.Invoke(context.Background(), Event{})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "insufficient signer balance")

	// a failed cycle never asks the host to call back early
	assert.Empty(t, rescheduler.calls)
}

func TestHandlerRescheduleFailureIsNotFatal(t *testing.T) {
	svc := &stubService{result: &SubmissionResult{TxHash: "0x01"}}
	rescheduler := &fakeRescheduler{err: errors.New("host quota exceeded")}
	handler := NewHandler(svc, rescheduler)

	resp := handler.Invoke(context.Background(), Event{})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody(t, resp).Success)
}

func TestHandlerUnknownCommand(t *testing.T) {
	handler := NewHandler(&stubService{}, nil)

	resp := handler.Invoke(context.Background(), Event{Command: null.StringFrom("reboot")})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp).Error, "unknown command")
}

func TestDecodeEvent(t *testing.T) {
	event, err := DecodeEvent(map[string]interface{}{
		"command":       "price",
		"address":       "0xAAA0000000000000000000000000000000000001",
		"noReschedule":  true,
		"hostRequestId": "ignored-extra-field",
	})
	require.NoError(t, err)

	assert.Equal(t, "price", event.Command.ValueOrZero())
	assert.Equal(t, "0xAAA0000000000000000000000000000000000001", event.Address.ValueOrZero())
	assert.True(t, event.NoReschedule)
}

func TestDecodeEventDefaults(t *testing.T) {
	event, err := DecodeEvent(map[string]interface{}{})
	require.NoError(t, err)

	assert.False(t, event.Command.Valid)
	assert.False(t, event.Address.Valid)
	assert.False(t, event.NoReschedule)
}
