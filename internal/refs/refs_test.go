package refs

import "testing"

func TestReferenceSectionLocatesHeadingAndTruncates(t *testing.T) {
	text := "Intro text\n\nReferences\n\n[1] Alice, Some Paper, 2020. 10.1234/abcd.5678\n\n[2] Bob, Another Work, a very long citation string here\n\nAppendix\n\nA.1 Extra stuff"
	out := referenceSection(text)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(out), out)
	}
	if out[0] == "" || out[1] == "" {
		t.Errorf("unexpected empty candidate: %+v", out)
	}
}

func TestReferenceSectionMissingHeadingReturnsNil(t *testing.T) {
	if out := referenceSection("no heading anywhere in this body text"); out != nil {
		t.Errorf("expected nil, got %+v", out)
	}
}

func TestResolveDirectExtractsDOI(t *testing.T) {
	ref := resolveDirect("Smith J. Deep Learning Survey. 2021. https://doi.org/10.1234/abcd.5678")
	if ref.ResolutionMethod != DirectDOI {
		t.Fatalf("expected DirectDOI, got %v", ref.ResolutionMethod)
	}
	if ref.DOI != "10.1234/abcd.5678" {
		t.Errorf("unexpected DOI: %q", ref.DOI)
	}
	if ref.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", ref.Confidence)
	}
}

func TestResolveDirectExtractsArxiv(t *testing.T) {
	ref := resolveDirect("Vaswani et al. Attention Is All You Need. arXiv:1706.03762, 2017.")
	if ref.ResolutionMethod != DirectArxiv {
		t.Fatalf("expected DirectArxiv, got %v", ref.ResolutionMethod)
	}
	if ref.ArxivID != "1706.03762" {
		t.Errorf("unexpected arxiv id: %q", ref.ArxivID)
	}
}

func TestResolveDirectUnresolvedWhenNoIdentifier(t *testing.T) {
	ref := resolveDirect("Some citation with no identifiable identifier at all here")
	if ref.ResolutionMethod != Unresolved {
		t.Errorf("expected Unresolved, got %v", ref.ResolutionMethod)
	}
}

func TestSplitOnMarkersUsesNumberedList(t *testing.T) {
	section := "[1] First reference text goes here\n[2] Second reference text goes here too"
	markers := numberedMarkerRe.FindAllStringIndex(section, -1)
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	out := splitOnMarkers(section, markers)
	if len(out) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(out), out)
	}
}
