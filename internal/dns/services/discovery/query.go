// Package discovery runs DNS-SD query rounds: it sends one question over a
// transport, collects answers until the round's timeout, and joins the
// records into service instances.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/haukened/rr-mdns/internal/dns/common/clock"
	"github.com/haukened/rr-mdns/internal/dns/common/metrics"
	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/gateways/transport"
)

// State is the lifecycle of a Query.
type State int

const (
	// StateBuilt is a query that has not run yet.
	StateBuilt State = iota
	// StateExecuted is a query that finished at least one round.
	StateExecuted
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateExecuted:
		return "executed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Query asks for the instances of one service in one domain.
// A Query may be run again to re-query; each run is an independent snapshot.
type Query struct {
	service  domain.Service
	domain   domain.Name
	question domain.Question
	opts     Options

	mu     sync.Mutex
	state  State
	lastID uint16
}

// NewQuery binds service and dom into a PTR question.
func NewQuery(service domain.Service, dom domain.Name, opts Options) (*Query, error) {
	name, err := service.QueryName(dom)
	if err != nil {
		return nil, fmt.Errorf("query name for %s in %s: %w", service, dom, err)
	}
	q, err := domain.NewQuestion(name, domain.RRTypePTR, domain.RRClassIN)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	q.UnicastResponse = opts.UnicastResponse

	return &Query{
		service:  service,
		domain:   dom,
		question: q,
		opts:     opts,
	}, nil
}

// Question returns the question the query sends.
func (q *Query) Question() domain.Question { return q.question }

// Service returns the queried service.
func (q *Query) Service() domain.Service { return q.service }

// State returns the lifecycle state.
func (q *Query) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// LastID returns the message ID used by the most recent round, 0 before the first.
func (q *Query) LastID() uint16 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastID
}

// RunOnce sends the question over tr and collects responses until the round
// timeout elapses, then returns the instances found.
//
// Datagrams that fail to decode, or that are not responses to this query, are
// skipped. A send or receive failure of tr aborts the round with an error
// wrapping domain.ErrTransport. If ctx is cancelled before the timeout, the
// instances gathered so far are returned together with ctx.Err().
// No answers is not an error: the result is then empty.
func (q *Query) RunOnce(ctx context.Context, tr transport.Transport) ([]domain.Instance, error) {
	id := q.opts.NewID()
	q.mu.Lock()
	q.lastID = id
	q.mu.Unlock()

	payload, err := q.opts.Codec.EncodeQuery(id, q.question)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", q.question, err)
	}

	started := q.opts.Clock.Now()
	if err := tr.Send(payload); err != nil {
		return nil, err
	}
	svc := q.question.Name.String()
	q.opts.Metrics.QuerySent(svc)
	q.opts.Logger.Debug(map[string]any{
		"id":       id,
		"question": q.question.String(),
		"timeout":  q.opts.Timeout.String(),
	}, "query sent")

	roundCtx, cancel := context.WithTimeout(ctx, q.opts.Timeout)
	defer cancel()

	var records []domain.Record
	received := 0
	for {
		dg, err := tr.Receive(roundCtx)
		if err != nil {
			if roundCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			return nil, err
		}
		received++
		records = q.accept(dg, id, records)
	}

	instances := Aggregate(q.question.Name, q.domain, records)

	q.mu.Lock()
	q.state = StateExecuted
	q.mu.Unlock()

	elapsed := clock.Since(q.opts.Clock, started)
	q.opts.Metrics.RoundFinished(svc, len(instances), elapsed)
	q.opts.Logger.Debug(map[string]any{
		"id":        id,
		"question":  svc,
		"datagrams": received,
		"records":   len(records),
		"instances": len(instances),
		"elapsed":   elapsed.String(),
	}, "query round finished")

	if err := ctx.Err(); err != nil {
		return instances, err
	}
	return instances, nil
}

// accept decodes one datagram and appends its records when it answers query id.
func (q *Query) accept(dg transport.Datagram, id uint16, records []domain.Record) []domain.Record {
	fields := map[string]any{
		"size": len(dg.Payload),
	}
	if dg.Source != nil {
		fields["source"] = dg.Source.String()
	}

	msg, err := q.opts.Codec.DecodeMessage(dg.Payload)
	if err != nil {
		fields["error"] = err.Error()
		q.opts.Metrics.DatagramReceived(metrics.OutcomeMalformed)
		q.opts.Logger.Debug(fields, "dropping malformed datagram")
		return records
	}
	if reason := rejectReason(msg, id); reason != "" {
		fields["reason"] = reason
		fields["message"] = msg.String()
		q.opts.Metrics.DatagramReceived(metrics.OutcomeIgnored)
		q.opts.Logger.Debug(fields, "ignoring datagram")
		return records
	}

	q.opts.Metrics.DatagramReceived(metrics.OutcomeAccepted)
	return append(records, msg.Records()...)
}

// rejectReason returns why msg is not an answer to query id, or "" if it is.
// Multicast responses carry ID 0 (RFC 6762 §18.1); unicast replies to a
// legacy query echo the query ID.
func rejectReason(msg domain.Message, id uint16) string {
	switch {
	case !msg.Flags.Response:
		return "not a response"
	case msg.Flags.Opcode != 0:
		return "non-zero opcode"
	case msg.Flags.RCode != domain.RCodeNoError:
		return "non-zero rcode"
	case msg.ID != 0 && msg.ID != id:
		return "id mismatch"
	default:
		return ""
	}
}
