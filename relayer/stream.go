package relayer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	log "github.com/InjectiveLabs/suplog"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/InjectiveLabs/metrics"
)

const MaxRetriesConnectWebSocket = 5

// ConnectWebSocket dials the attestation service's streaming endpoint,
// retrying up to maxRetries times with a flat 5s pause.
func ConnectWebSocket(ctx context.Context, websocketURL string, maxRetries int) (conn *websocket.Conn, err error) {
	dialer := websocket.DefaultDialer
	dialer.EnableCompression = true

	retries := 0
	for {
		conn, _, err = dialer.DialContext(ctx, websocketURL, nil)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		} else if err != nil {
			log.Infof("Failed to connect to WebSocket server: %v", err)
			retries++
			if retries > maxRetries {
				log.Infof("Reached maximum retries (%d), exiting...", maxRetries)
				return nil, errors.New("reached maximum retries")
			}
			log.Infof("Retrying connect %dth in 5s...", retries)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.NewTimer(5 * time.Second).C:
			}
		} else {
			log.Infof("Connected to WebSocket server")
			return
		}
	}
}

// PriceWatcher subscribes to the attestation service's live price stream for
// a fixed set of feeds and logs every reported price. Read-only companion to
// the submission workflow, nothing observed here is submitted on-chain.
type PriceWatcher struct {
	conn    *websocket.Conn
	feedIDs []FeedID

	logger  log.Logger
	svcTags metrics.Tags
}

func NewPriceWatcher(conn *websocket.Conn, feedIDs []FeedID) *PriceWatcher {
	return &PriceWatcher{
		conn:    conn,
		feedIDs: feedIDs,

		logger: log.WithFields(log.Fields{
			"svc":      "relayer",
			"provider": "priceWatcher",
		}),
		svcTags: metrics.Tags{
			"provider": "priceWatcher",
		},
	}
}

type streamSubscribeMessage struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

type streamMessage struct {
	Type      string `json:"type"`
	PriceFeed struct {
		ID    string `json:"id"`
		Price struct {
			Price       string `json:"price"`
			Conf        string `json:"conf"`
			Expo        int32  `json:"expo"`
			PublishTime int64  `json:"publish_time"`
		} `json:"price"`
	} `json:"price_feed"`
}

// Start sends the subscription message and reads price updates until ctx is
// cancelled or the connection drops.
func (w *PriceWatcher) Start(ctx context.Context) error {
	metrics.ReportFuncCall(w.svcTags)

	if err := w.subscribe(); err != nil {
		metrics.ReportFuncError(w.svcTags)
		return err
	}

	return w.startReadingMessages(ctx)
}

func (w *PriceWatcher) subscribe() error {
	if len(w.feedIDs) == 0 {
		w.logger.Errorf("no feeds to subscribe to")
		return errors.New("no feeds to subscribe to")
	}

	ids := make([]string, 0, len(w.feedIDs))
	for _, id := range w.feedIDs {
		ids = append(ids, id.Hex())
	}

	w.logger.Debugln("subscribing to feeds:", strings.Join(ids, ","))

	err := w.conn.WriteJSON(streamSubscribeMessage{
		Type: "subscribe",
		IDs:  ids,
	})
	if err != nil {
		w.logger.Warningln("error writing subscription message:", err)
		return err
	}

	return nil
}

func (w *PriceWatcher) startReadingMessages(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			w.conn.Close()
			return ctx.Err()
		}

		_, messageRead, err := w.conn.ReadMessage()
		if err != nil {
			w.logger.Warningln("error reading message:", err)
			w.conn.Close()
			return err
		}

		var msg streamMessage
		if err = json.Unmarshal(messageRead, &msg); err != nil {
			w.logger.Warningln("error unmarshalling stream message:", err)
			continue
		}

		switch msg.Type {
		case "response":
			w.logger.Infof("subscribed to %d feeds", len(w.feedIDs))
		case "price_update":
			price, err := scaleStreamPrice(msg.PriceFeed.Price.Price, msg.PriceFeed.Price.Expo)
			if err != nil {
				w.logger.Warningln("error parsing streamed price:", err)
				continue
			}

			w.logger.WithFields(log.Fields{
				"feed_id":      ensureHexPrefix(msg.PriceFeed.ID),
				"conf":         msg.PriceFeed.Price.Conf,
				"publish_time": time.Unix(msg.PriceFeed.Price.PublishTime, 0).UTC().Format(time.RFC3339),
			}).Infof("price update: %s", price.String())
		default:
			w.logger.Warningln("received unknown message type:", msg.Type)
		}
	}
}

func scaleStreamPrice(raw string, expo int32) (decimal.Decimal, error) {
	mantissa, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "price mantissa is not an integer: %s", raw)
	}

	return mantissa.Shift(expo), nil
}
