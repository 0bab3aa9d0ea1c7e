package crawl

import (
	"net/url"
	"path"
	"strings"
)

// NormalizeURL canonicalizes an absolute http(s) URL for deduplication:
// lowercase scheme and host, default port and fragment dropped, empty path
// turned into "/". Returns false for other schemes or unparseable input.
func NormalizeURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	if port := u.Port(); port != "" && !(u.Scheme == "http" && port == "80") && !(u.Scheme == "https" && port == "443") {
		host += ":" + port
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), true
}

// extension returns the lowercase path extension of rawURL.
func extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}

// pathAndQuery returns the part of rawURL matched by exclusion patterns.
func pathAndQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

// resolve joins p to the root of base.
func resolve(base, p string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(p)
	if err != nil {
		return "", false
	}
	return NormalizeURL(b.ResolveReference(ref).String())
}
