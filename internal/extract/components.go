package extract

import (
	"sort"

	"github.com/ludo-technologies/jsboard/domain"
)

// circularGraph is the subgraph of module edges the tool flagged circular
type circularGraph map[string][]string

func newCircularGraph(modules []domain.DepModule) circularGraph {
	g := make(circularGraph)
	for _, m := range modules {
		for _, d := range m.Dependencies {
			if d.Circular && d.Resolved != "" && !d.CoreModule && !d.CouldNotResolve {
				g[m.Source] = append(g[m.Source], d.Resolved)
			}
		}
	}
	return g
}

// components returns the strongly connected components with more than one
// member, each sorted, in order of their smallest member
func (g circularGraph) components() [][]string {
	t := &tarjan{
		graph:    g,
		indices:  make(map[string]int),
		lowlinks: make(map[string]int),
		onStack:  make(map[string]bool),
	}

	nodes := make([]string, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	for _, n := range nodes {
		if _, visited := t.indices[n]; !visited {
			t.strongconnect(n)
		}
	}

	sort.Slice(t.sccs, func(i, j int) bool { return t.sccs[i][0] < t.sccs[j][0] })
	return t.sccs
}

type tarjan struct {
	graph    circularGraph
	index    int
	stack    []string
	indices  map[string]int
	lowlinks map[string]int
	onStack  map[string]bool
	sccs     [][]string
}

func (t *tarjan) strongconnect(v string) {
	t.indices[v] = t.index
	t.lowlinks[v] = t.index
	t.index++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph[v] {
		if _, visited := t.indices[w]; !visited {
			t.strongconnect(w)
			t.lowlinks[v] = min(t.lowlinks[v], t.lowlinks[w])
		} else if t.onStack[w] {
			t.lowlinks[v] = min(t.lowlinks[v], t.indices[w])
		}
	}

	if t.lowlinks[v] != t.indices[v] {
		return
	}
	var scc []string
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == v {
			break
		}
	}
	if len(scc) > 1 {
		sort.Strings(scc)
		t.sccs = append(t.sccs, scc)
	}
}
