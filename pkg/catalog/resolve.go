// pkg/catalog/resolve.go - turning stored asset references into fetchable URLs.

package catalog

import (
	"net/url"
	"path"
	"strings"
)

const (
	DownloadRoute = "download"
	LogoRoute     = "logos"
)

// Resolver rewrites stored download and logo references into absolute URLs
// under a single base location.
//
// Absolute http(s) URLs and data: URIs are returned unchanged, so resolving
// twice yields the same result. Any other reference (bare filename, relative
// or storage path) is reduced to its final path element and served from
// <base>/<route>/<name>.
type Resolver struct {
	base string
}

func NewResolver(baseURL string) *Resolver {
	return &Resolver{base: strings.TrimRight(baseURL, "/")}
}

// Resolve returns the absolute URL for ref under route.
func (r *Resolver) Resolve(ref, route string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if IsAbsoluteURL(ref) || isDataURI(ref) {
		return ref
	}
	name := AssetName(ref)
	if name == "" {
		return ""
	}
	return r.base + "/" + route + "/" + url.PathEscape(name)
}

// Entry returns a copy of e with DownloadURL and LogoRef resolved.
func (r *Resolver) Entry(e *SoftwareEntry) *SoftwareEntry {
	out := *e
	out.DownloadURL = r.Resolve(e.DownloadURL, DownloadRoute)
	out.LogoRef = r.Resolve(e.LogoRef, LogoRoute)
	return &out
}

// IsAbsoluteURL reports whether ref is an http or https URL with a host.
func IsAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isDataURI(ref string) bool {
	return len(ref) > 5 && strings.EqualFold(ref[:5], "data:")
}

// AssetName returns the final element of a stored path or URL path, accepting
// both slash styles. Query strings and fragments are dropped.
func AssetName(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.ReplaceAll(ref, `\`, "/")
	name := path.Base(ref)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}
