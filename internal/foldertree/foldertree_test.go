package foldertree

import (
	"testing"

	"github.com/omniscope/omniscope/internal/model"
)

func folder(id, parent, name string, order int) model.Folder {
	return model.Folder{ID: id, ParentID: parent, Name: name, SortOrder: order}
}

func TestBuildSortsSiblingsAndLinksChildren(t *testing.T) {
	tr := Build([]model.Folder{
		folder("b", "", "Bravo", 1),
		folder("a", "", "Alpha", 0),
		folder("c", "a", "Charlie", 0),
	})

	roots := tr.Roots()
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}
	if roots[0].Folder.ID != "a" || roots[1].Folder.ID != "b" {
		t.Errorf("roots not sorted by (sort_order, name): %v, %v", roots[0].Folder.ID, roots[1].Folder.ID)
	}
	if len(roots[0].Children) != 1 || roots[0].Children[0].Folder.ID != "c" {
		t.Errorf("child not linked under parent a")
	}
}

func TestBuildPromotesOrphans(t *testing.T) {
	tr := Build([]model.Folder{
		folder("x", "missing-parent", "X", 0),
	})
	if len(tr.Roots()) != 1 || tr.Roots()[0].Folder.ID != "x" {
		t.Errorf("orphan should be promoted to root")
	}
}

func TestApplyAdded(t *testing.T) {
	tr := Build([]model.Folder{folder("a", "", "Alpha", 0)})
	tr2 := tr.Apply(Change{Kind: Added, Folder: folder("b", "a", "Beta", 0)})

	if len(tr2.Roots()) != 1 {
		t.Fatalf("got %d roots", len(tr2.Roots()))
	}
	if len(tr2.Roots()[0].Children) != 1 {
		t.Fatalf("expected new child under root a")
	}
}

func TestApplyDeletedReparentsChildrenAsRoots(t *testing.T) {
	tr := Build([]model.Folder{
		folder("a", "", "Alpha", 0),
		folder("c", "a", "Charlie", 0),
	})
	tr2 := tr.Apply(Change{Kind: Deleted, Folder: folder("a", "", "Alpha", 0)})

	roots := tr2.Roots()
	if len(roots) != 1 || roots[0].Folder.ID != "c" {
		t.Fatalf("expected orphaned child promoted to root, got %+v", roots)
	}
	if roots[0].Folder.ParentID != "" {
		t.Errorf("reparented child should have cleared ParentID")
	}
}

func TestApplyUpdatedResorts(t *testing.T) {
	tr := Build([]model.Folder{
		folder("a", "", "Alpha", 0),
		folder("b", "", "Beta", 1),
	})
	updated := folder("b", "", "Beta", -1)
	tr2 := tr.Apply(Change{Kind: Updated, Folder: updated})

	roots := tr2.Roots()
	if roots[0].Folder.ID != "b" {
		t.Errorf("expected b first after sort_order change, got %+v", roots)
	}
}
