package sources

import "testing"

func TestAnnasResultRegexExtractsMD5AndTitle(t *testing.T) {
	html := `<a href="/md5/abcdef0123456789abcdef0123456789abcdef01">The Great Book Title</a>`
	m := annasResultRe.FindStringSubmatch(html)
	if m == nil {
		t.Fatal("expected a match")
	}
	if md5FromPath(m[1]) != "abcdef0123456789abcdef0123456789abcdef01" {
		t.Errorf("unexpected md5: %q", m[1])
	}
	if m[2] != "The Great Book Title" {
		t.Errorf("unexpected title: %q", m[2])
	}
}

func TestAnnasDownloadLinkRegexMatchesPartnerLink(t *testing.T) {
	html := `<a href="https://mirror.example.com/file.pdf">🚀 Fast Partner Server #1</a>`
	m := annasDownloadLinkRe.FindStringSubmatch(html)
	if m == nil || m[1] != "https://mirror.example.com/file.pdf" {
		t.Fatalf("unexpected match: %+v", m)
	}
}

func TestMD5FromPathStripsPrefix(t *testing.T) {
	if got := md5FromPath("/md5/deadbeef"); got != "deadbeef" {
		t.Errorf("unexpected: %q", got)
	}
}
