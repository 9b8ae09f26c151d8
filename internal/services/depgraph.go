package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/obligo-backend/internal/rules"
	"github.com/yungbote/obligo-backend/internal/types"
)

// depEdge is a directed dependency edge (obligation -> prerequisite).
type depEdge struct {
	from uuid.UUID
	to   uuid.UUID
}

// findDeadlocked returns the obligations that sit on or upstream of a
// dependency cycle. A cycle A -> B -> A means neither side can ever verify,
// and anything that reaches the cycle is poisoned too. Overridden edges are
// excluded: an override breaks the cycle from that direction.
//
// All traversal state is local to the call. Nothing is shared across users
// or requests.
func findDeadlocked(edges []depEdge, overridden map[depEdge]struct{}) map[uuid.UUID]struct{} {
	graph := make(map[uuid.UUID][]uuid.UUID)
	nodes := make(map[uuid.UUID]struct{})
	for _, e := range edges {
		if _, ok := overridden[e]; ok {
			continue
		}
		graph[e.from] = append(graph[e.from], e.to)
		nodes[e.from] = struct{}{}
		nodes[e.to] = struct{}{}
	}

	deadlocked := make(map[uuid.UUID]struct{})
	visited := make(map[uuid.UUID]struct{})
	inStack := make(map[uuid.UUID]struct{})

	var dfs func(node uuid.UUID) bool
	dfs = func(node uuid.UUID) bool {
		visited[node] = struct{}{}
		inStack[node] = struct{}{}
		reachesCycle := false
		for _, dep := range graph[node] {
			if _, onStack := inStack[dep]; onStack {
				// Back edge: cycle.
				deadlocked[dep] = struct{}{}
				deadlocked[node] = struct{}{}
				reachesCycle = true
				continue
			}
			if _, seen := visited[dep]; !seen {
				if dfs(dep) {
					deadlocked[node] = struct{}{}
					reachesCycle = true
				}
				continue
			}
			if _, dead := deadlocked[dep]; dead {
				deadlocked[node] = struct{}{}
				reachesCycle = true
			}
		}
		delete(inStack, node)
		return reachesCycle
	}

	for node := range nodes {
		if _, seen := visited[node]; !seen {
			dfs(node)
		}
	}
	return deadlocked
}

// ChainLink is one hop on the path from a stuck obligation toward its root
// blocker.
type ChainLink struct {
	ObligationID uuid.UUID              `json:"obligation_id"`
	Type         types.ObligationType   `json:"type"`
	Title        string                 `json:"title"`
	Status       types.ObligationStatus `json:"status"`
	IsCycleBack  bool                   `json:"is_cycle_back"`
}

// traceChain follows the first unmet, non-overridden dependency at each
// level until it reaches the root blocker, revisits a node (cycle), or hits
// the depth bound.
func traceChain(start uuid.UUID, depGraph map[uuid.UUID][]uuid.UUID, overridden map[depEdge]struct{}, byID map[uuid.UUID]*types.Obligation) []ChainLink {
	var chain []ChainLink
	seen := map[uuid.UUID]struct{}{}
	current := start

	for len(chain) < rules.ChainMaxDepth {
		if _, revisit := seen[current]; revisit {
			break
		}
		seen[current] = struct{}{}

		var unmet *types.Obligation
		for _, depID := range depGraph[current] {
			if _, ok := overridden[depEdge{from: current, to: depID}]; ok {
				continue
			}
			dep := byID[depID]
			if dep != nil && dep.Status != types.StatusVerified {
				unmet = dep
				break
			}
		}
		if unmet == nil {
			break
		}

		_, isCycle := seen[unmet.ID]
		chain = append(chain, ChainLink{
			ObligationID: unmet.ID,
			Type:         unmet.Type,
			Title:        unmet.Title,
			Status:       unmet.Status,
			IsCycleBack:  isCycle,
		})
		if isCycle {
			break
		}
		current = unmet.ID
	}
	return chain
}
