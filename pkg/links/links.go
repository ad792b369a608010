// Package links discovers same-origin outgoing links in parsed HTML
// documents.
//
// Resolution follows RFC 3986 base-URI rules only; fragments, query
// strings and trailing slashes are left intact, so /page#a and /page#b
// are distinct results. That can waste crawl budget on what is
// effectively the same resource, which is a known limitation.
package links

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Discover returns the same-origin absolute URLs reachable from the
// document's anchor elements. Each non-empty href is resolved against
// base; only URLs whose scheme, host and port all match origin are kept.
// The result preserves document order with duplicates removed at first
// occurrence. Filtering against any visited set is the caller's job.
func Discover(doc *html.Node, base, origin *url.URL) []string {
	var found []string
	seen := make(map[string]bool)

	goquery.NewDocumentFromNode(doc).Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if !SameOrigin(resolved, origin) {
			return
		}
		abs := resolved.String()
		if !seen[abs] {
			seen[abs] = true
			found = append(found, abs)
		}
	})

	return found
}

// SameOrigin reports whether two URLs share a (scheme, host, port)
// triple. Host comparison is exact: a URL spelling out a default port is
// a different origin from one that omits it.
func SameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host
}
