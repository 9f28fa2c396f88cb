// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package fabric maintains one client connection to the pub/sub + query
overlay bubbaloop processes coordinate over, and declares publishers,
subscribers, and queryables against it.

github.com/nats-io/nats.go is the transport: a NATS subject maps directly
onto a fabric topic, NATS publish/subscribe covers publishers/subscribers,
and NATS request/reply (extended to collect replies until a deadline,
rather than stopping at the first) covers queryables.

# Endpoint Resolution

Open resolves the fabric endpoint in this order, first non-empty wins:

  1. ZENOH_ENDPOINT
  2. BUBBALOOP_ZENOH_ENDPOINT
  3. the endpoint passed in FabricConfig
  4. "tcp/127.0.0.1:7447"

This intentionally does not live in internal/config — it is a connection
concern of this package, not an application setting.

# Topic-to-Subject Translation

internal/naming builds "/"-joined topics; NATS subjects are "."-joined with
"*" matching exactly one token and ">" matching the rest of the subject
(only legal as the last token). Every declare/publish/query call in this
package translates a topic via topicToSubject before it touches the wire.
A trailing "**" becomes ">"; single "*" segments pass through unchanged,
since bubbaloop's topics have fixed, known depth (scope/machine/node are
always exactly one segment each) — an infix "**" like the spec's informal
schema discovery pattern ("bubbaloop", then "**", then "schema") is
expressed as the equivalent fixed-depth pattern, with one "*" segment each
for scope, machine and node between "bubbaloop" and "schema", rather than a
true infix wildcard, which NATS subjects cannot express.

# Client-Only Mode

Open always dials one explicit URL via nats.Connect; there is no multicast
scouting or gossip discovery to disable, so the "client mode is mandatory"
requirement holds by construction rather than by a feature flag.

# Declare Operations and the Circuit Breaker

DeclarePublisher, DeclareSubscriber, and DeclareQueryable are individually
retryable by the caller, but repeated failures (a subject a broker
consistently refuses, for instance) are guarded by a
github.com/sony/gobreaker/v2 circuit breaker so a caller that retries in a
tight loop doesn't hammer a connection that is already failing.

# Usage Example

	sess, err := fabric.Open(ctx, cfg.Fabric, os.Getenv)
	if err != nil {
	    log.Fatal(err)
	}
	defer sess.Close()

	pub := sess.DeclarePublisher("bubbaloop/local/jetson_orin_nano/daemon/nodes")
	pub.Publish(view.Marshal())

	sub, err := sess.DeclareSubscriber("bubbaloop/local/jetson_orin_nano/health/*")
	for sample := range sub.Samples() {
	    fmt.Println(sample.Key, string(sample.Payload))
	}
*/
package fabric
