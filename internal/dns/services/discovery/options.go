package discovery

import (
	"math/rand/v2"
	"time"

	"github.com/haukened/rr-mdns/internal/dns/common/clock"
	"github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/common/metrics"
	"github.com/haukened/rr-mdns/internal/dns/gateways/wire"
)

// DefaultTimeout is the collection window of one round.
const DefaultTimeout = 3 * time.Second

// IDGenerator returns the message ID for the next round. It must not return 0.
type IDGenerator func() uint16

// RandomID draws a uniformly random non-zero ID.
func RandomID() uint16 {
	return uint16(rand.IntN(0xFFFF)) + 1
}

// Options defines configuration parameters for a Query.
type Options struct {
	// Timeout bounds the receive loop; 0 means DefaultTimeout.
	Timeout time.Duration
	// UnicastResponse sets the QU bit on the question.
	UnicastResponse bool

	// options to inject for testing purposes
	Codec  wire.MessageCodec
	Logger log.Logger
	// Clock times rounds for metrics and logs; the receive window itself is
	// a context deadline on wall time.
	Clock   clock.Clock
	Metrics metrics.Recorder
	NewID   IDGenerator
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewNoopLogger()
	}
	if o.Codec == nil {
		o.Codec = wire.NewUDPCodec(o.Logger)
	}
	if o.Clock == nil {
		o.Clock = clock.RealClock{}
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Nop{}
	}
	if o.NewID == nil {
		o.NewID = RandomID
	}
	return o
}
