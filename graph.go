package gridsheet

import "sort"

// NodeRef identifies a formula-graph vertex: one cell on one sheet.
type NodeRef struct {
	SheetID uint32
	Key     CellKey
}

// formulaNode is a dependency-graph vertex. nodes exist only for cells with
// formulas, plus bare value cells that some formula depends on.
type formulaNode struct {
	formula string // formula text, "" for non-formula cells

	dependencies map[NodeRef]struct{} // cells this cell reads
	dependents   map[NodeRef]struct{} // cells that read this cell

	value Value // cached calculated value
	dirty bool  // whether the cached value may be stale
}

// FormulaGraph tracks dependency/dependents adjacency per formula cell,
// dirty flags, and cached values. the two adjacency maps stay exact
// inverses of each other: every edge is written and torn down in both
// directions in the same call.
type FormulaGraph struct {
	nodes map[NodeRef]*formulaNode
}

// NewFormulaGraph creates an empty graph.
func NewFormulaGraph() *FormulaGraph {
	return &FormulaGraph{
		nodes: make(map[NodeRef]*formulaNode),
	}
}

func (g *FormulaGraph) getOrCreate(ref NodeRef) *formulaNode {
	if node, exists := g.nodes[ref]; exists {
		return node
	}
	node := &formulaNode{
		dependencies: make(map[NodeRef]struct{}),
		dependents:   make(map[NodeRef]struct{}),
	}
	g.nodes[ref] = node
	return node
}

// AddFormula registers a formula cell, replacing any prior edges for ref
// with the new dependency set. both directions of the adjacency are
// updated: ref's dependencies, and ref added to each dependency's
// dependents.
func (g *FormulaGraph) AddFormula(ref NodeRef, formula string, deps []NodeRef) {
	g.clearDependencies(ref)

	node := g.getOrCreate(ref)
	node.formula = formula
	node.dirty = true

	for _, dep := range deps {
		node.dependencies[dep] = struct{}{}
		g.getOrCreate(dep).dependents[ref] = struct{}{}
	}
}

// RemoveFormula tears down both directions of ref's edges and drops the
// node unless another formula still depends on it.
func (g *FormulaGraph) RemoveFormula(ref NodeRef) {
	node, exists := g.nodes[ref]
	if !exists {
		return
	}
	g.clearDependencies(ref)
	node.formula = ""
	node.value = nil
	node.dirty = false
	g.cleanupIfEmpty(ref)
}

// clearDependencies removes ref's outgoing edges and the matching inverse
// edges from its dependencies.
func (g *FormulaGraph) clearDependencies(ref NodeRef) {
	node, exists := g.nodes[ref]
	if !exists {
		return
	}
	for dep := range node.dependencies {
		if depNode, ok := g.nodes[dep]; ok {
			delete(depNode.dependents, ref)
			g.cleanupIfEmpty(dep)
		}
	}
	node.dependencies = make(map[NodeRef]struct{})
}

// cleanupIfEmpty drops a node with no formula and no remaining edges.
func (g *FormulaGraph) cleanupIfEmpty(ref NodeRef) {
	node, exists := g.nodes[ref]
	if !exists {
		return
	}
	if node.formula != "" || len(node.dependencies) > 0 || len(node.dependents) > 0 {
		return
	}
	delete(g.nodes, ref)
}

// HasFormula reports whether ref is a registered formula cell.
func (g *FormulaGraph) HasFormula(ref NodeRef) bool {
	node, exists := g.nodes[ref]
	return exists && node.formula != ""
}

// Formula returns the registered formula text for ref.
func (g *FormulaGraph) Formula(ref NodeRef) (string, bool) {
	if node, exists := g.nodes[ref]; exists && node.formula != "" {
		return node.formula, true
	}
	return "", false
}

// Invalidate marks the node dirty only. it does not cascade by itself;
// cascading is driven externally by walking Dependents and re-evaluating
// each in turn.
func (g *FormulaGraph) Invalidate(ref NodeRef) {
	if node, exists := g.nodes[ref]; exists {
		node.dirty = true
	}
}

// IsDirty reports whether the node's cached value may be stale.
func (g *FormulaGraph) IsDirty(ref NodeRef) bool {
	node, exists := g.nodes[ref]
	return exists && node.dirty
}

// MarkClean stores the cached value and clears the dirty flag.
func (g *FormulaGraph) MarkClean(ref NodeRef, value Value) {
	if node, exists := g.nodes[ref]; exists {
		node.value = value
		node.dirty = false
	}
}

// CachedValue returns the cached value for ref, valid only while the node
// is not dirty.
func (g *FormulaGraph) CachedValue(ref NodeRef) (Value, bool) {
	if node, exists := g.nodes[ref]; exists {
		return node.value, true
	}
	return nil, false
}

// Dependents returns the cells that directly depend on ref, in
// deterministic order.
func (g *FormulaGraph) Dependents(ref NodeRef) []NodeRef {
	node, exists := g.nodes[ref]
	if !exists {
		return nil
	}
	return sortedRefs(node.dependents)
}

// Dependencies returns the cells ref directly depends on, in deterministic
// order.
func (g *FormulaGraph) Dependencies(ref NodeRef) []NodeRef {
	node, exists := g.nodes[ref]
	if !exists {
		return nil
	}
	return sortedRefs(node.dependencies)
}

// AllDependents returns the transitive closure of cells affected by ref.
func (g *FormulaGraph) AllDependents(ref NodeRef) []NodeRef {
	visited := make(map[NodeRef]struct{})
	var result []NodeRef
	g.collectDependents(ref, visited, &result)
	return result
}

func (g *FormulaGraph) collectDependents(ref NodeRef, visited map[NodeRef]struct{}, result *[]NodeRef) {
	if _, seen := visited[ref]; seen {
		return
	}
	visited[ref] = struct{}{}

	node, exists := g.nodes[ref]
	if !exists {
		return
	}
	for dep := range node.dependents {
		if _, seen := visited[dep]; !seen {
			*result = append(*result, dep)
			g.collectDependents(dep, visited, result)
		}
	}
}

// DirtyCells returns every formula cell currently flagged dirty, sorted for
// deterministic bulk-recalculation sweeps.
func (g *FormulaGraph) DirtyCells() []NodeRef {
	var result []NodeRef
	for ref, node := range g.nodes {
		if node.dirty && node.formula != "" {
			result = append(result, ref)
		}
	}
	sortRefSlice(result)
	return result
}

// FormulaCells returns every registered formula cell in sorted order.
func (g *FormulaGraph) FormulaCells() []NodeRef {
	var result []NodeRef
	for ref, node := range g.nodes {
		if node.formula != "" {
			result = append(result, ref)
		}
	}
	sortRefSlice(result)
	return result
}

// NodeCount returns the number of nodes in the graph.
func (g *FormulaGraph) NodeCount() int {
	return len(g.nodes)
}

// Clear removes all nodes and edges.
func (g *FormulaGraph) Clear() {
	g.nodes = make(map[NodeRef]*formulaNode)
}

func sortedRefs(set map[NodeRef]struct{}) []NodeRef {
	result := make([]NodeRef, 0, len(set))
	for ref := range set {
		result = append(result, ref)
	}
	sortRefSlice(result)
	return result
}

func sortRefSlice(refs []NodeRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].SheetID != refs[j].SheetID {
			return refs[i].SheetID < refs[j].SheetID
		}
		return refs[i].Key < refs[j].Key
	})
}

// evalGuard is the reentrancy guard used for dynamic cycle detection: a set
// of cell keys currently being evaluated. a formula whose key is already in
// the set has recursed into itself, possibly through another sheet.
type evalGuard struct {
	evaluating map[NodeRef]struct{}
}

func newEvalGuard() *evalGuard {
	return &evalGuard{evaluating: make(map[NodeRef]struct{})}
}

// enter adds ref to the guard. callers pair it with defer g.exit(ref) so no
// exit path, error or otherwise, can leak a stuck entry.
func (g *evalGuard) enter(ref NodeRef) {
	g.evaluating[ref] = struct{}{}
}

func (g *evalGuard) exit(ref NodeRef) {
	delete(g.evaluating, ref)
}

func (g *evalGuard) active(ref NodeRef) bool {
	_, exists := g.evaluating[ref]
	return exists
}
