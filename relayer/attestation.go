package relayer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/InjectiveLabs/suplog"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/InjectiveLabs/metrics"
)

const (
	maxRespTime        = 15 * time.Second
	maxRespHeadersTime = 15 * time.Second
	maxRespBytes       = 10 * 1024 * 1024
)

// AttestationClient fetches signed price-update payloads for a set of feeds
// from the remote attestation service.
type AttestationClient interface {
	// LatestUpdates returns one binary update blob per feed reported by the
	// service, decoded from the normalized 0x-prefixed hex form.
	LatestUpdates(ctx context.Context, ids []FeedID) ([][]byte, error)
}

type AttestationEndpointConfig struct {
	BaseURL string
}

func checkAttestationConfig(cfg *AttestationEndpointConfig) *AttestationEndpointConfig {
	if cfg == nil {
		cfg = &AttestationEndpointConfig{}
	}

	if len(cfg.BaseURL) == 0 {
		cfg.BaseURL = "https://hermes.pyth.network"
	}

	return cfg
}

var _ AttestationClient = &attestationClient{}

// NewAttestationClient returns a client for the price-attestation HTTP
// service at the configured base URL.
func NewAttestationClient(endpointConfig *AttestationEndpointConfig) AttestationClient {
	return &attestationClient{
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: maxRespHeadersTime,
			},
			Timeout: maxRespTime,
		},
		config: checkAttestationConfig(endpointConfig),

		logger: log.WithFields(log.Fields{
			"svc":      "relayer",
			"provider": "attestation",
		}),
		svcTags: metrics.Tags{
			"provider": "attestation",
		},
	}
}

type attestationClient struct {
	client *http.Client
	config *AttestationEndpointConfig

	logger  log.Logger
	svcTags metrics.Tags
}

// latestUpdateResponse is the service's response envelope. Shape is enforced
// explicitly: a body without the binary data array is a fetch failure.
type latestUpdateResponse struct {
	Binary struct {
		Encoding string   `json:"encoding"`
		Data     []string `json:"data"`
	} `json:"binary"`
}

func (c *attestationClient) LatestUpdates(ctx context.Context, ids []FeedID) ([][]byte, error) {
	metrics.ReportFuncCall(c.svcTags)
	doneFn := metrics.ReportFuncTiming(c.svcTags)
	defer doneFn()

	u, err := url.ParseRequestURI(urlJoin(c.config.BaseURL, "v2", "updates", "price", "latest"))
	if err != nil {
		metrics.ReportFuncError(c.svcTags)
		c.logger.WithError(err).Fatalln("failed to parse URL")
	}

	q := make(url.Values)
	for _, id := range ids {
		q.Add("ids[]", id.Hex())
	}
	u.RawQuery = q.Encode()
	reqURL := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		metrics.ReportFuncError(c.svcTags)
		c.logger.WithError(err).Fatalln("failed to create HTTP request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ReportFuncError(c.svcTags)
		return nil, fetchError(err, "failed to fetch price updates from "+reqURL)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxRespBytes))
	if err != nil {
		metrics.ReportFuncError(c.svcTags)
		_ = resp.Body.Close()
		return nil, fetchError(err, "failed to read response body from "+reqURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ReportFuncError(c.svcTags)
		c.logger.WithField("url", reqURL).Warningln(string(respBody))
		return nil, fetchError(errors.Errorf("unexpected HTTP status %d", resp.StatusCode), "attestation service error")
	}

	var updateResp latestUpdateResponse
	if err = json.Unmarshal(respBody, &updateResp); err != nil {
		metrics.ReportFuncError(c.svcTags)
		c.logger.WithField("url", reqURL).Warningln(string(respBody))
		return nil, fetchError(err, "failed to unmarshal response body")
	} else if len(updateResp.Binary.Data) == 0 {
		metrics.ReportFuncError(c.svcTags)
		return nil, fetchError(errors.New("binary data array is missing or empty"), "unexpected response shape")
	}

	updates, err := decodeUpdateData(updateResp.Binary.Data)
	if err != nil {
		metrics.ReportFuncError(c.svcTags)
		return nil, fetchError(err, "failed to decode binary data array")
	}

	return updates, nil
}

// decodeUpdateData normalizes each hex element to carry the 0x marker, then
// decodes it into the binary blob submitted on-chain.
func decodeUpdateData(data []string) ([][]byte, error) {
	updates := make([][]byte, 0, len(data))
	for _, blobHex := range data {
		blob, err := hexutil.Decode(ensureHexPrefix(blobHex))
		if err != nil {
			return nil, errors.Wrapf(err, "update blob is not valid hex: %s", blobHex)
		}
		updates = append(updates, blob)
	}

	return updates, nil
}
