// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package fabric

import "errors"

// ErrFabric is the sentinel wrapped by every error this package returns, so
// callers can test with errors.Is(err, fabric.ErrFabric) regardless of the
// specific operation (open, declare, publish, query) that failed.
var ErrFabric = errors.New("fabric error")

// ErrBreakerOpen is returned by a declare operation when the circuit
// breaker has tripped from repeated declare failures.
var ErrBreakerOpen = errors.New("fabric: circuit breaker open")
