package docs

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// pagePrefixes maps a path summary kind to the docs.rs page file prefix.
var pagePrefixes = map[string]string{
	"struct":         "struct",
	"enum":           "enum",
	"union":          "union",
	"trait":          "trait",
	"trait_alias":    "traitalias",
	"function":       "fn",
	"type_alias":     "type",
	"constant":       "constant",
	"static":         "static",
	"macro":          "macro",
	"proc_attribute": "attr",
	"proc_derive":    "derive",
	"primitive":      "primitive",
	"extern_type":    "foreigntype",
	"keyword":        "keyword",
}

// anchorPages maps member kinds to the parent page prefix and anchor prefix.
var anchorPages = map[string][2]string{
	"variant":      {"enum", "variant"},
	"struct_field": {"struct", "structfield"},
	"assoc_type":   {"trait", "associatedtype"},
	"assoc_const":  {"trait", "associatedconstant"},
}

// DocLinks resolves an item's intra-doc links to page URLs under baseURL,
// keyed by the link text rustdoc recorded. Unresolvable targets are omitted.
func DocLinks(crate *RustdocCrate, item *RustdocItem, baseURL, crateName, version string) map[string]string {
	if len(item.Links) == 0 {
		return nil
	}
	resolved := make(map[string]string, len(item.Links))
	for target, id := range item.Links {
		if u := ItemURL(crate, id, baseURL, crateName, version); u != "" {
			resolved[target] = u
		}
	}
	if len(resolved) == 0 {
		return nil
	}
	return resolved
}

// ItemURL builds the page URL for an item under baseURL (DefaultBaseURL when
// empty). Items from dependencies link to their own html_root_url, or to
// their latest release under baseURL when the dependency recorded none.
// Returns "" if the item can't be resolved.
func ItemURL(crate *RustdocCrate, id ID, baseURL, crateName, version string) string {
	summary, ok := crate.Paths[id]
	if !ok || len(summary.Path) == 0 {
		return ""
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	var root string
	if summary.CrateID == 0 {
		root = fmt.Sprintf("%s/%s/%s/", baseURL, url.PathEscape(crateName), url.PathEscape(version))
	} else {
		ext, ok := crate.ExternalCrates[summary.CrateID]
		if !ok {
			return ""
		}
		root = ext.HTMLRootURL
		if root == "" {
			root = fmt.Sprintf("%s/%s/latest/", baseURL, url.PathEscape(crate.ExternalCrateName(summary.CrateID)))
		}
		if !strings.HasSuffix(root, "/") {
			root += "/"
		}
	}

	return root + pagePath(summary)
}

func pagePath(summary RustdocSummary) string {
	path := summary.Path
	last := path[len(path)-1]
	dirs := func(p []string) string {
		if len(p) == 0 {
			return ""
		}
		return strings.Join(p, "/") + "/"
	}

	switch summary.Kind {
	case "module":
		return dirs(path) + "index.html"
	}
	if prefix, ok := pagePrefixes[summary.Kind]; ok {
		return dirs(path[:len(path)-1]) + prefix + "." + last + ".html"
	}
	if anchor, ok := anchorPages[summary.Kind]; ok && len(path) >= 2 {
		parent := path[len(path)-2]
		return dirs(path[:len(path)-2]) + anchor[0] + "." + parent + ".html#" + anchor[1] + "." + last
	}
	return dirs(path[:len(path)-1]) + "index.html"
}

// ExternalCrateName looks up the Cargo package name for a dependency by crate_id.
// Prefers the name extracted from html_root_url (e.g. "https://docs.rs/tracing-core/0.1.36/...")
// since the Name field uses the Rust lib name (underscores) which may differ from the
// Cargo name (hyphens). Falls back to the lib name if no docs.rs URL is present.
func (c *RustdocCrate) ExternalCrateName(crateID uint32) string {
	ext, ok := c.ExternalCrates[crateID]
	if !ok {
		return ""
	}
	if name := extractDocsRsCrateName(ext.HTMLRootURL); name != "" {
		return name
	}
	return ext.Name
}

// docsRsCrateNameRe extracts the crate name from a docs.rs html_root_url.
// Example: "https://docs.rs/tracing-core/0.1.36/x86_64-unknown-linux-gnu/" → "tracing-core"
var docsRsCrateNameRe = regexp.MustCompile(`^https?://docs\.rs/([^/]+)/`)

func extractDocsRsCrateName(rootURL string) string {
	m := docsRsCrateNameRe.FindStringSubmatch(rootURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
