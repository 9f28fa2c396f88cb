// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

// Package naming builds the deterministic fabric topics bubbaloop processes
// use to address each other: bubbaloop/<scope>/<machine>/<suffix>.
//
// Sanitization (replacing "-" with "_") happens exactly once, when the
// machine id is resolved, never when a topic is built from it — downstream
// key-expression matchers treat "-" as a segment character, so a hyphenated
// hostname like "jetson-orin-nano" would otherwise produce keys that glob
// patterns can't target.
package naming
