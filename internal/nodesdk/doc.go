// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

// Package nodesdk is the host-side scaffold every bubble-node links
// against: a fabric session, scoped topic naming, a health heartbeat, a
// schema-discovery queryable, and cooperative shutdown.
//
// Run mirrors the shape of the original bubbaloop-node-sdk crate
// (zenoh_session.rs, health.rs, schema.rs, shutdown.rs, context.rs):
// acquire a fabric.Session, arm a signaling.Broadcast on SIGINT/SIGTERM,
// spawn a 5-second health heartbeat publishing the literal bytes "ok" to
// health/<node>, declare a schema queryable on <node>/schema, then invoke
// the caller's entry point with a Context exposing all of it.
//
// The schema queryable intentionally never stops responding on its own
// "complete" condition — Zenoh's wildcard discovery query bubbaloop/**/schema
// (expressed here as the fixed-depth bubbaloop/*/*/*/schema, see
// internal/fabric's doc comment) expects every live responder to answer,
// not just the first.
package nodesdk
