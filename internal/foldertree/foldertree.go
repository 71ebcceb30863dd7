// Package foldertree builds and incrementally updates an immutable,
// in-memory view of a library's folder hierarchy (spec.md §4.5). Every
// operation returns a new tree value; callers never see a partially
// applied mutation.
package foldertree

import (
	"sort"

	"github.com/omniscope/omniscope/internal/model"
)

// Node is one folder in the tree, plus its resolved children.
type Node struct {
	Folder   model.Folder
	Children []*Node
}

// Tree is an immutable snapshot of a library's folder hierarchy.
type Tree struct {
	roots []*Node
	byID  map[string]*Node
}

// Roots returns the top-level nodes, sorted by (SortOrder, Name).
func (t *Tree) Roots() []*Node { return t.roots }

// Get returns the node for id, or nil if absent.
func (t *Tree) Get(id string) *Node {
	if t == nil {
		return nil
	}
	return t.byID[id]
}

// Build constructs a Tree from a flat list of folders: it links parents to
// children, promotes orphans (a non-empty ParentID with no matching folder)
// to roots, and sorts sibling lists by (SortOrder, Name).
func Build(folders []model.Folder) *Tree {
	byID := make(map[string]*Node, len(folders))
	for _, f := range folders {
		byID[f.ID] = &Node{Folder: f}
	}

	var roots []*Node
	for _, f := range folders {
		n := byID[f.ID]
		if f.ParentID == "" {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[f.ParentID]
		if !ok {
			roots = append(roots, n) // orphan promoted to root
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortSiblings(roots)
	for _, n := range byID {
		sortSiblings(n.Children)
	}

	return &Tree{roots: roots, byID: byID}
}

func sortSiblings(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Folder, nodes[j].Folder
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name < b.Name
	})
}

// ChangeKind distinguishes the three kinds of incremental update.
type ChangeKind int

const (
	Added ChangeKind = iota
	Updated
	Deleted
)

// Change describes one incremental mutation to apply to a Tree.
type Change struct {
	Kind   ChangeKind
	Folder model.Folder // new/updated folder data; for Deleted only ID is read
}

// flatten walks t back into a flat folder list, used as the staging ground
// for Apply so the whole rebuild reuses Build's linking/sorting logic.
func (t *Tree) flatten() []model.Folder {
	var out []model.Folder
	var walk func(*Node)
	walk = func(n *Node) {
		out = append(out, n.Folder)
		for _, c := range n.Children {
			walk(c)
		}
	}
	if t != nil {
		for _, r := range t.roots {
			walk(r)
		}
	}
	return out
}

// Apply returns a new Tree with change applied.
//
//   - Added inserts the folder (linking it under its parent, or as a root
//     if the parent is missing) and resorts the affected sibling list.
//   - Updated replaces the node's data; if ParentID changed it relinks,
//     otherwise it just resorts the current parent's children.
//   - Deleted removes the node, unlinking it from its parent and reparenting
//     its children as roots (ParentID cleared).
func (t *Tree) Apply(c Change) *Tree {
	flat := t.flatten()

	switch c.Kind {
	case Added:
		flat = append(flat, c.Folder)

	case Updated:
		for i, f := range flat {
			if f.ID == c.Folder.ID {
				flat[i] = c.Folder
				break
			}
		}

	case Deleted:
		var kept []model.Folder
		for _, f := range flat {
			if f.ID == c.Folder.ID {
				continue
			}
			if f.ParentID == c.Folder.ID {
				f.ParentID = ""
			}
			kept = append(kept, f)
		}
		flat = kept
	}

	return Build(flat)
}
