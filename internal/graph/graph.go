// Package graph derives undirected relationship graphs over customers:
// who bought the same products, and who lives in the same city.
package graph

import "sort"

// Node is a customer vertex attributed with name and city.
type Node struct {
	ID   int64
	Name string
	City string
}

// Edge is an undirected edge between two customers. A always holds the lower
// customer id. Weight counts distinct shared products in a shared-purchase
// graph; City tags the shared city in a shared-city graph.
type Edge struct {
	A      int64
	B      int64
	Weight int
	City   string
}

type edgeKey struct {
	a, b int64
}

func keyFor(a, b int64) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// Graph is an undirected graph with customer nodes and weighted or tagged
// edges.
type Graph struct {
	nodes map[int64]Node
	edges map[edgeKey]*Edge
}

func newGraph() *Graph {
	return &Graph{
		nodes: make(map[int64]Node),
		edges: make(map[edgeKey]*Edge),
	}
}

func (g *Graph) addNode(n Node) {
	g.nodes[n.ID] = n
}

func (g *Graph) incrementEdge(a, b int64) {
	k := keyFor(a, b)
	if e, ok := g.edges[k]; ok {
		e.Weight++
		return
	}
	g.edges[k] = &Edge{A: k.a, B: k.b, Weight: 1}
}

func (g *Graph) tagEdge(a, b int64, city string) {
	k := keyFor(a, b)
	g.edges[k] = &Edge{A: k.a, B: k.b, City: city}
}

// Nodes returns all nodes ordered by customer id.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns all edges ordered by their endpoint pair.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Density returns 2e / (n * (n-1)), the fraction of possible edges present.
// Graphs with fewer than two nodes have density 0.
func (g *Graph) Density() float64 {
	n := len(g.nodes)
	if n <= 1 {
		return 0
	}
	return 2 * float64(len(g.edges)) / (float64(n) * float64(n-1))
}

// DegreeCentrality returns each node's edge count normalized by n-1, the
// maximum possible degree. Single-node graphs report 0.
func (g *Graph) DegreeCentrality() map[int64]float64 {
	out := make(map[int64]float64, len(g.nodes))
	for id := range g.nodes {
		out[id] = 0
	}
	if len(g.nodes) <= 1 {
		return out
	}

	norm := float64(len(g.nodes) - 1)
	for _, e := range g.edges {
		out[e.A] += 1 / norm
		out[e.B] += 1 / norm
	}
	return out
}

// MostConnected returns the node with the highest degree centrality and its
// centrality. Ties resolve to the lowest customer id so the answer is
// reproducible. ok is false for an empty graph.
func (g *Graph) MostConnected() (node Node, centrality float64, ok bool) {
	if len(g.nodes) == 0 {
		return Node{}, 0, false
	}

	centralities := g.DegreeCentrality()
	best := int64(-1)
	for _, n := range g.Nodes() {
		if best == -1 || centralities[n.ID] > centralities[best] {
			best = n.ID
		}
	}
	return g.nodes[best], centralities[best], true
}
