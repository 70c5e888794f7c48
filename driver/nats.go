package driver

import (
	"time"

	"github.com/nats-io/nats.go"
)

const (
	natsConnectTimeout = 5 * time.Second
	natsReconnectWait  = 2 * time.Second
	natsMaxReconnects  = 10
)

// ConnectNATS connects to the NATS server carrying payment events.
func ConnectNATS(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Timeout(natsConnectTimeout),
		nats.ReconnectWait(natsReconnectWait),
		nats.MaxReconnects(natsMaxReconnects),
	)
}
