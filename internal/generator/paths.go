package generator

import (
	"path"
	"strings"
)

// routeOutputPath maps a site-relative route onto its artifact path, one
// index.html per route so published URLs stay extension-free.
func routeOutputPath(route string) string {
	clean := strings.Trim(strings.TrimSpace(route), "/")
	if clean == "" {
		return "index.html"
	}
	return path.Join(clean, "index.html")
}

func joinOutputPath(base string, rel string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimLeft(rel, "/")
	}
	return path.Join(strings.Trim(base, "/"), rel)
}

func absoluteURL(base, route string) string {
	target := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return target
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return target + normalized
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}
