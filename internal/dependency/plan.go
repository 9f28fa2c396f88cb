// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package dependency

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kornia/bubbaloop/internal/launchfile"
)

// ErrPlan wraps every error this package returns.
var ErrPlan = errors.New("dependency: plan error")

// UnsatisfiedDependencyError reports a retained node whose dependency
// was explicitly disabled rather than merely filtered out by groups.
type UnsatisfiedDependencyError struct {
	Node       string
	Dependency string
}

func (e *UnsatisfiedDependencyError) Error() string {
	return fmt.Sprintf("%v: node %q depends on disabled node %q", ErrPlan, e.Node, e.Dependency)
}

func (e *UnsatisfiedDependencyError) Unwrap() error { return ErrPlan }

// CycleError reports the remainder of nodes that could not be ordered
// because they form (or depend transitively on) a cycle.
type CycleError struct {
	Names []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: cycle among nodes %v", ErrPlan, e.Names)
}

func (e *CycleError) Unwrap() error { return ErrPlan }

// Filter selects which nodes participate in a launch.
type Filter struct {
	Groups  []string
	Enable  []string
	Disable []string
}

// Plan is the final, ordered set of nodes a launch invocation will
// start, in startup order. ShutdownOrder is simply Order reversed.
type Plan struct {
	Nodes map[string]launchfile.ResolvedNode
	Order []string
}

// ShutdownOrder returns Order reversed, for tearing processes down in
// the opposite order they were started.
func (p Plan) ShutdownOrder() []string {
	out := make([]string, len(p.Order))
	for i, name := range p.Order {
		out[len(p.Order)-1-i] = name
	}
	return out
}

// Build applies filter, re-adds transitively required dependencies, and
// produces a deterministic topological order.
func Build(nodes map[string]launchfile.ResolvedNode, filter Filter) (*Plan, error) {
	disabled := toSet(filter.Disable)
	enabled := toSet(filter.Enable)
	groups := toSet(filter.Groups)

	retained := make(map[string]bool)
	for name, node := range nodes {
		if disabled[name] {
			continue
		}
		switch {
		case enabled[name]:
			retained[name] = true
		case len(groups) > 0:
			if groups[node.Group] {
				retained[name] = true
			}
		default:
			retained[name] = true
		}
	}

	if err := closeDependencies(nodes, retained, disabled); err != nil {
		return nil, err
	}

	order, err := topoSort(nodes, retained)
	if err != nil {
		return nil, err
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no nodes selected after filtering", ErrPlan)
	}

	planNodes := make(map[string]launchfile.ResolvedNode, len(retained))
	for name := range retained {
		planNodes[name] = nodes[name]
	}

	return &Plan{Nodes: planNodes, Order: order}, nil
}

// closeDependencies repeatedly re-adds any dependency of a retained node
// until the retained set is transitively closed, failing if a retained
// node's dependency was explicitly disabled.
func closeDependencies(nodes map[string]launchfile.ResolvedNode, retained, disabled map[string]bool) error {
	for {
		added := false
		for name := range retained {
			for _, dep := range nodes[name].DependsOn {
				if disabled[dep] {
					return &UnsatisfiedDependencyError{Node: name, Dependency: dep}
				}
				if !retained[dep] {
					retained[dep] = true
					added = true
				}
			}
		}
		if !added {
			return nil
		}
	}
}

// topoSort runs Kahn's algorithm over the retained subset of nodes,
// breaking ties between simultaneously-ready nodes lexicographically.
func topoSort(nodes map[string]launchfile.ResolvedNode, retained map[string]bool) ([]string, error) {
	indegree := make(map[string]int, len(retained))
	dependents := make(map[string][]string, len(retained))

	for name := range retained {
		indegree[name] = 0
	}
	for name := range retained {
		for _, dep := range nodes[name].DependsOn {
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(order) != len(retained) {
		var stuck []string
		for name := range retained {
			if indegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, &CycleError{Names: stuck}
	}

	return order, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
