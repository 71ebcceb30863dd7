package sources

import "testing"

func TestSciHubPDFLinkRegexMatchesEmbed(t *testing.T) {
	html := `<html><body><embed type="application/pdf" src="//sci-hub.se/downloads/2020/paper.pdf" id="pdf"></embed></body></html>`
	m := sciHubPDFLinkRe.FindStringSubmatch(html)
	if m == nil {
		t.Fatal("expected a match")
	}
	link := m[1]
	if link == "" {
		link = m[2]
	}
	if link != "//sci-hub.se/downloads/2020/paper.pdf" {
		t.Errorf("unexpected link: %q", link)
	}
}

func TestSciHubPDFLinkRegexMatchesLocationRedirect(t *testing.T) {
	html := `<script>location.href='//sci-hub.se/downloads/2021/x.pdf?download=true'</script>`
	m := sciHubPDFLinkRe.FindStringSubmatch(html)
	if m == nil || m[1] == "" {
		t.Fatalf("expected location.href match, got %+v", m)
	}
}

func TestResolveRelativeProtocolRelative(t *testing.T) {
	got := resolveRelative("https://sci-hub.se", "//sci-hub.se/x.pdf")
	if got != "https://sci-hub.se/x.pdf" {
		t.Errorf("unexpected resolved url: %q", got)
	}
}

func TestResolveRelativeRootPath(t *testing.T) {
	got := resolveRelative("https://sci-hub.se", "/downloads/x.pdf")
	if got != "https://sci-hub.se/downloads/x.pdf" {
		t.Errorf("unexpected resolved url: %q", got)
	}
}

func TestResolveRelativeAbsolute(t *testing.T) {
	got := resolveRelative("https://sci-hub.se", "https://cdn.example.com/x.pdf")
	if got != "https://cdn.example.com/x.pdf" {
		t.Errorf("unexpected resolved url: %q", got)
	}
}
