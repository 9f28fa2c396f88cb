// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package launchfile parses a declarative, version-stamped launch
description and resolves its $(arg NAME) substitutions against
command-line overrides and argument defaults.

Parsing uses gopkg.in/yaml.v3's yaml.Node so unknown top-level keys are
rejected: the document is first decoded into a map[string]yaml.Node,
checked against an allow-list (version, args, nodes), then each section
is decoded into its typed struct.

Substitution is a single regex pre-pass over every string-valued field —
executable, args, env, cwd — for $(arg NAME) tokens; there is no nested
substitution (a default value containing another $(arg ...) token is
left as a literal string, matching the spec's "no nested substitution
support" note). version: "1.0" is the only header value accepted today.

Validate runs after substitution: every node's resolved executable must
exist on PATH or as an absolute path (exec.LookPath), and every
depends_on target must name another node in the same file.
*/
package launchfile
