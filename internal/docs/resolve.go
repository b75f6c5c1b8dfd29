package docs

import (
	"slices"
	"strings"
)

// SplitPath splits an item path on "::" or ".". Empty segments are dropped.
func SplitPath(path string) []string {
	path = strings.ReplaceAll(path, "::", ".")
	var segs []string
	for _, s := range strings.Split(path, ".") {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// ResolveModulePath walks module children from the crate root. An empty
// path resolves to the root module.
func ResolveModulePath(crate *RustdocCrate, path string) (ID, bool) {
	current := crate.Root
	for _, seg := range SplitPath(path) {
		child, ok := findChild(crate, current, seg)
		if !ok {
			return 0, false
		}
		current = child
	}
	return current, true
}

// ResolveItemPath finds an item by path. It first walks the module tree,
// where the last segment may name any kind of item. If that fails it scans
// every local item with a matching name, accepting a candidate whose
// canonical path ends with the requested segments.
func ResolveItemPath(crate *RustdocCrate, path string) (*RustdocItem, bool) {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return nil, false
	}
	if item, ok := walkItemPath(crate, crate.Root, segs); ok {
		return item, true
	}
	return scanItemPath(crate, segs)
}

// walkItemPath descends through modules named by segs. When several
// children share a name, each module among them is tried in order.
func walkItemPath(crate *RustdocCrate, module ID, segs []string) (*RustdocItem, bool) {
	parent, ok := crate.Index[module]
	if !ok {
		return nil, false
	}
	mod, ok := parent.Inner.(Module)
	if !ok {
		return nil, false
	}
	for _, id := range mod.Items {
		child, ok := crate.Index[id]
		if !ok || child.Name == nil || *child.Name != segs[0] {
			continue
		}
		if len(segs) == 1 {
			return child, true
		}
		if _, isMod := child.Inner.(Module); isMod {
			if found, ok := walkItemPath(crate, id, segs[1:]); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// findChild returns the first direct child module of module named name.
// Children missing from the index are skipped.
func findChild(crate *RustdocCrate, module ID, name string) (ID, bool) {
	parent, ok := crate.Index[module]
	if !ok {
		return 0, false
	}
	mod, ok := parent.Inner.(Module)
	if !ok {
		return 0, false
	}
	for _, id := range mod.Items {
		child, ok := crate.Index[id]
		if !ok || child.Name == nil || *child.Name != name {
			continue
		}
		if _, isMod := child.Inner.(Module); isMod {
			return id, true
		}
	}
	return 0, false
}

// scanItemPath visits local items in ascending ID order.
func scanItemPath(crate *RustdocCrate, segs []string) (*RustdocItem, bool) {
	name := segs[len(segs)-1]
	for _, id := range sortedIDs(crate) {
		item := crate.Index[id]
		if item.CrateID != 0 || item.Name == nil || *item.Name != name {
			continue
		}
		if len(segs) == 1 {
			return item, true
		}
		if summary, ok := crate.Paths[id]; ok && hasSuffix(summary.Path, segs) {
			return item, true
		}
	}
	return nil, false
}

func hasSuffix(path, suffix []string) bool {
	if len(suffix) > len(path) {
		return false
	}
	return slices.Equal(path[len(path)-len(suffix):], suffix)
}

func sortedIDs(crate *RustdocCrate) []ID {
	ids := make([]ID, 0, len(crate.Index))
	for id := range crate.Index {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
