// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package fabric

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kornia/bubbaloop/internal/config"
)

// DefaultEndpoint is used when no endpoint override is set anywhere.
const DefaultEndpoint = "tcp/127.0.0.1:7447"

// Sample is one fabric publication or queryable reply.
type Sample struct {
	Key       string
	Payload   []byte
	SourceID  *string
	Timestamp *time.Time
}

// Session is one client connection to the fabric.
type Session struct {
	conn    *nats.Conn
	breaker *gobreaker.CircuitBreaker[any]
	cfg     config.FabricConfig
}

// ResolveEndpoint applies the endpoint resolution order: ZENOH_ENDPOINT,
// then BUBBALOOP_ZENOH_ENDPOINT, then the explicit argument, then
// DefaultEndpoint. getenv defaults to os.Getenv when nil.
func ResolveEndpoint(getenv func(string) string, explicit string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("ZENOH_ENDPOINT"); v != "" {
		return v
	}
	if v := getenv("BUBBALOOP_ZENOH_ENDPOINT"); v != "" {
		return v
	}
	if explicit != "" {
		return explicit
	}
	return DefaultEndpoint
}

// natsURL translates a Zenoh-style endpoint ("tcp/host:port") into a NATS
// connection URL ("nats://host:port"). An endpoint already bearing a
// recognized NATS scheme passes through unchanged.
func natsURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "nats://") || strings.HasPrefix(endpoint, "tls://") {
		return endpoint
	}
	if rest, ok := strings.CutPrefix(endpoint, "tcp/"); ok {
		return "nats://" + rest
	}
	return "nats://" + endpoint
}

// topicToSubject translates a "/"-joined fabric topic (per internal/naming)
// into a "."-joined NATS subject, so "/" segments become NATS's hierarchy
// separator and internal/naming's "**" multi-segment wildcard becomes
// NATS's ">" wildcard. NATS only treats "." as a token boundary and accepts
// ">" only as the last token, so a trailing "**" works but an infix one
// (bubbaloop/**/schema) does not; see this package's doc comment.
func topicToSubject(topic string) string {
	s := strings.ReplaceAll(topic, "**", ">")
	return strings.ReplaceAll(s, "/", ".")
}

// subjectToTopic is the inverse of topicToSubject, applied to subjects
// observed on the wire (e.g. msg.Subject) before surfacing them as a
// Sample.Key in fabric topic form.
func subjectToTopic(subject string) string {
	s := strings.ReplaceAll(subject, ">", "**")
	return strings.ReplaceAll(s, ".", "/")
}

// Open resolves the fabric endpoint and dials it in client-only mode.
// Failure here is fatal: the caller is expected to abort startup.
func Open(ctx context.Context, cfg config.FabricConfig, getenv func(string) string) (*Session, error) {
	endpoint := ResolveEndpoint(getenv, cfg.Endpoint)

	opts := []nats.Option{
		nats.Name("bubbaloop"),
		nats.Timeout(cfg.ConnectTimeout),
		nats.RetryOnFailedConnect(false),
	}

	conn, err := nats.Connect(natsURL(endpoint), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrFabric, endpoint, err)
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "fabric-declare",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.BreakerFailureRatio
		},
	})

	return &Session{conn: conn, breaker: breaker, cfg: cfg}, nil
}

// Close drains and closes the underlying connection.
func (s *Session) Close() {
	if s == nil || s.conn == nil {
		return
	}
	_ = s.conn.Drain()
	s.conn.Close()
}

// Publisher holds a declared publish target.
type Publisher struct {
	conn  *nats.Conn
	topic string
}

// DeclarePublisher returns a Publisher bound to topic. Declaring a
// publisher never touches the network, so it is not breaker-guarded.
func (s *Session) DeclarePublisher(topic string) *Publisher {
	return &Publisher{conn: s.conn, topic: topic}
}

// Publish sends payload to the publisher's topic.
func (p *Publisher) Publish(payload []byte) error {
	if err := p.conn.Publish(topicToSubject(p.topic), payload); err != nil {
		return fmt.Errorf("%w: publish %s: %v", ErrFabric, p.topic, err)
	}
	return nil
}

// Subscription delivers Samples received on a declared subscriber's topic.
type Subscription struct {
	sub *nats.Subscription
	ch  chan Sample
}

// Samples returns the channel of received samples. The channel is closed
// when the Subscription is unsubscribed.
func (sub *Subscription) Samples() <-chan Sample {
	return sub.ch
}

// Unsubscribe stops delivery and closes the sample channel.
func (sub *Subscription) Unsubscribe() error {
	err := sub.sub.Unsubscribe()
	close(sub.ch)
	if err != nil {
		return fmt.Errorf("%w: unsubscribe: %v", ErrFabric, err)
	}
	return nil
}

// DeclareSubscriber subscribes to topic and is guarded by the session's
// circuit breaker: repeated subscribe failures trip the breaker instead of
// being retried forever by a caller loop.
func (s *Session) DeclareSubscriber(topic string) (*Subscription, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		ch := make(chan Sample, 64)
		natsSub, err := s.conn.Subscribe(topicToSubject(topic), func(msg *nats.Msg) {
			ch <- Sample{Key: subjectToTopic(msg.Subject), Payload: msg.Data}
		})
		if err != nil {
			return nil, err
		}
		return &Subscription{sub: natsSub, ch: ch}, nil
	})
	if err != nil {
		return nil, declareErr(topic, err)
	}
	return result.(*Subscription), nil
}

// QueryableHandler answers one request, replying zero or more times via
// reply before returning. Replying zero times is valid: the caller of
// Query simply sees no samples from this responder. topic is the concrete
// fabric topic the request arrived on, translated back from the wire
// subject — callers that declare a wildcard queryable use it to recover
// the segments the wildcard matched.
type QueryableHandler func(ctx context.Context, topic string, payload []byte, reply func([]byte))

// Queryable is a declared server-side responder.
type Queryable struct {
	sub *nats.Subscription
}

// DeclareQueryable binds handler to topic. Unlike a plain NATS request
// responder, a Queryable's handler may call reply multiple times (or zero
// times), matching the fabric's "replies with zero or more samples"
// queryable semantics — the opposite of NATS's own single-Respond
// convention, which only one Query relies on.
func (s *Session) DeclareQueryable(topic string, handler QueryableHandler) (*Queryable, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		natsSub, err := s.conn.Subscribe(topicToSubject(topic), func(msg *nats.Msg) {
			if msg.Reply == "" {
				return
			}
			reply := func(payload []byte) {
				_ = s.conn.Publish(msg.Reply, payload)
			}
			handler(context.Background(), subjectToTopic(msg.Subject), msg.Data, reply)
		})
		if err != nil {
			return nil, err
		}
		return &Queryable{sub: natsSub}, nil
	})
	if err != nil {
		return nil, declareErr(topic, err)
	}
	return result.(*Queryable), nil
}

// Undeclare stops the queryable from handling further requests.
func (q *Queryable) Undeclare() error {
	if err := q.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("%w: undeclare queryable: %v", ErrFabric, err)
	}
	return nil
}

// Query sends payload to topic and collects every reply that arrives
// before timeout elapses, or before ctx is done, whichever comes first.
func (s *Session) Query(ctx context.Context, topic string, payload []byte, timeout time.Duration) ([]Sample, error) {
	inbox := nats.NewInbox()
	ch := make(chan *nats.Msg, 64)

	sub, err := s.conn.ChanSubscribe(inbox, ch)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrFabric, topic, err)
	}
	defer sub.Unsubscribe()

	if err := s.conn.PublishRequest(topicToSubject(topic), inbox, payload); err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrFabric, topic, err)
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var samples []Sample
	for {
		select {
		case msg := <-ch:
			samples = append(samples, Sample{Key: subjectToTopic(msg.Subject), Payload: msg.Data})
		case <-deadline.C:
			return samples, nil
		case <-ctx.Done():
			return samples, ctx.Err()
		}
	}
}

func declareErr(topic string, err error) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return fmt.Errorf("%w: declare %s: %v", ErrBreakerOpen, topic, err)
	}
	return fmt.Errorf("%w: declare %s: %v", ErrFabric, topic, err)
}
