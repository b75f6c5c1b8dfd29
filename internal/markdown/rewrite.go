package markdown

import (
	"fmt"
	"sort"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// RewriteLinks rewrites markdown link destinations using the provided link map.
// It parses the markdown to AST to find all link destinations, then performs
// targeted string replacements to preserve original formatting.
func RewriteLinks(src string, linkMap map[string]string) string {
	if len(linkMap) == 0 {
		return src
	}

	type replacement struct {
		oldDest string
		newDest string
	}
	var replacements []replacement
	for _, dest := range linkDestinations(src) {
		if newDest, ok := linkMap[dest]; ok {
			replacements = append(replacements, replacement{dest, newDest})
		}
	}
	if len(replacements) == 0 {
		return src
	}

	result := src

	// Inline links: [text](destination)
	for _, r := range replacements {
		result = strings.ReplaceAll(result, "]("+r.oldDest+")", "]("+r.newDest+")")
	}

	// Reference-style definitions: [ref]: destination
	refMap := make(map[string]string, len(replacements))
	for _, r := range replacements {
		refMap["]: "+r.oldDest] = "]: " + r.newDest
	}
	lines := strings.Split(result, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		for oldSuffix, newSuffix := range refMap {
			if strings.HasSuffix(trimmed, oldSuffix) {
				lines[i] = strings.Replace(line, oldSuffix, newSuffix, 1)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// ResolveLinks rewrites rustdoc intra-doc links to absolute URLs. links maps
// the link text rustdoc recorded (a destination such as "crate::Foo" or a
// shortcut label such as "`Foo`") to its URL.
//
// Destinations are rewritten in place. Shortcut links like [`Foo`] have no
// destination in the source, so a reference definition is appended for
// every label that occurs in src and is not already defined.
func ResolveLinks(src string, links map[string]string) string {
	if len(links) == 0 {
		return src
	}

	result := RewriteLinks(src, links)

	used := make(map[string]bool)
	for _, dest := range linkDestinations(src) {
		used[dest] = true
	}

	labels := make([]string, 0, len(links))
	for label := range links {
		if used[label] {
			continue
		}
		if !strings.Contains(src, "["+label+"]") || strings.Contains(src, "["+label+"]:") {
			continue
		}
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return result
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString(strings.TrimRight(result, "\n"))
	b.WriteString("\n\n")
	for _, label := range labels {
		fmt.Fprintf(&b, "[%s]: %s\n", label, links[label])
	}
	return b.String()
}

// linkDestinations returns the unique link destinations in src in document order.
func linkDestinations(src string) []string {
	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))

	seen := make(map[string]bool)
	var dests []string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if link, ok := node.(*ast.Link); ok {
			dest := string(link.Destination)
			if !seen[dest] {
				seen[dest] = true
				dests = append(dests, dest)
			}
		}
		return ast.GoToNext
	})
	return dests
}
