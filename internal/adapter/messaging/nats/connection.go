package nats

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
)

const (
	connectWait   = 10 * time.Second
	maxReconnects = -1
	reconnectWait = 2 * time.Second
)

// Connect dials NATS with reconnects enabled and logs connection state changes.
func Connect(url, appName string, log *logger.Logger) (*nats.Conn, error) {
	log.Info("NATS: connecting", "url", url)

	opts := []nats.Option{
		nats.Name(appName),
		nats.Timeout(connectWait),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS: async error", "subject", subject, "error", err.Error())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS: disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS: reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATS: connection closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATS: connected", "url", conn.ConnectedUrl())
	return conn, nil
}

// headerCarrier lets the OpenTelemetry propagator read and write NATS headers.
type headerCarrier nats.Header

func (c headerCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c headerCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
