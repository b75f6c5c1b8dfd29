package docs

import (
	"fmt"
	"strings"
)

// maxDocLines caps the documentation appended to an item detail.
const maxDocLines = 200

// FormatModuleListing renders the public children of a module grouped by
// kind. A missing or non-module ID yields a short diagnostic.
func FormatModuleListing(crate *RustdocCrate, module ID) string {
	item, ok := crate.Index[module]
	if !ok {
		return "Module not found in index."
	}
	mod, ok := item.Inner.(Module)
	if !ok {
		return "Item is not a module."
	}

	name := "(root)"
	if item.Name != nil {
		name = *item.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Module `%s`\n\n", name)
	if summary := FirstSentence(item.docs()); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	var (
		modules, traits, structs, enums, functions []*RustdocItem
		aliases, constants, macros, other          []*RustdocItem
	)
	for _, id := range mod.Items {
		child, ok := crate.Index[id]
		if !ok || !child.IsPublic() {
			continue
		}
		switch child.Inner.(type) {
		case Module:
			modules = append(modules, child)
		case Trait:
			traits = append(traits, child)
		case Struct:
			structs = append(structs, child)
		case Enum:
			enums = append(enums, child)
		case Function:
			functions = append(functions, child)
		case TypeAlias:
			aliases = append(aliases, child)
		case Constant:
			constants = append(constants, child)
		case Macro, ProcMacro:
			macros = append(macros, child)
		case Use, ExternCrate:
		default:
			other = append(other, child)
		}
	}

	writeSection(&b, "Modules", modules)
	writeSection(&b, "Traits", traits)
	writeSection(&b, "Structs", structs)
	writeSection(&b, "Enums", enums)
	writeSection(&b, "Functions", functions)
	writeSection(&b, "Type Aliases", aliases)
	writeSection(&b, "Constants", constants)
	writeSection(&b, "Macros", macros)
	writeSection(&b, "Other", other)

	return b.String()
}

func writeSection(b *strings.Builder, heading string, items []*RustdocItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, item := range items {
		if summary := FirstSentence(item.docs()); summary != "" {
			fmt.Fprintf(b, "- `%s` -- %s\n", item.DisplayName(), summary)
		} else {
			fmt.Fprintf(b, "- `%s`\n", item.DisplayName())
		}
	}
	b.WriteByte('\n')
}

// FormatItemDetail renders a heading, a declaration block and the full
// documentation of an item.
func FormatItemDetail(crate *RustdocCrate, item *RustdocItem) string {
	name := item.DisplayName()
	var b strings.Builder

	switch inner := item.Inner.(type) {
	case Function:
		fmt.Fprintf(&b, "# Function `%s`\n\n", name)
		writeCodeBlock(&b, FormatFunctionSignature(name, inner))
	case Struct:
		fmt.Fprintf(&b, "# Struct `%s`\n\n", name)
		writeCodeBlock(&b, formatStructDefinition(crate, name, inner))
		writeStructMethods(&b, crate, inner)
	case Enum:
		fmt.Fprintf(&b, "# Enum `%s`\n\n", name)
		writeCodeBlock(&b, formatEnumDefinition(crate, name, inner))
	case Trait:
		fmt.Fprintf(&b, "# Trait `%s`\n\n", name)
		writeCodeBlock(&b, formatTraitDefinition(crate, name, inner))
	case TypeAlias:
		fmt.Fprintf(&b, "# Type Alias `%s`\n\n", name)
		fmt.Fprintf(&b, "```rust\ntype %s%s = %s;\n```\n\n", name, FormatGenerics(inner.Generics), FormatType(inner.Type))
	case Constant:
		fmt.Fprintf(&b, "# Constant `%s`\n\n", name)
		fmt.Fprintf(&b, "```rust\nconst %s: %s = %s;\n```\n\n", name, FormatType(inner.Type), inner.Const.Expr)
	case Macro:
		fmt.Fprintf(&b, "# Macro `%s`\n\n", name)
		writeCodeBlock(&b, inner.Body)
	default:
		fmt.Fprintf(&b, "# `%s`\n\n", name)
	}

	if item.Docs != nil {
		lines := docLines(*item.Docs)
		if len(lines) > maxDocLines {
			for _, line := range lines[:maxDocLines] {
				b.WriteString(line)
				b.WriteByte('\n')
			}
			b.WriteString("\n... (truncated)\n")
		} else {
			b.WriteString(*item.Docs)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeCodeBlock(b *strings.Builder, code string) {
	b.WriteString("```rust\n")
	b.WriteString(code)
	b.WriteString("\n```\n\n")
}

// docLines splits text into lines, ignoring one trailing newline and any
// carriage returns before line breaks.
func docLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func formatStructDefinition(crate *RustdocCrate, name string, s Struct) string {
	var b strings.Builder
	fmt.Fprintf(&b, "struct %s%s", name, FormatGenerics(s.Generics))
	switch kind := s.Kind.(type) {
	case UnitStruct:
		b.WriteByte(';')
	case TupleStruct:
		b.WriteString("(" + tupleFields(crate, kind.Fields) + ");")
	case PlainStruct:
		b.WriteString(FormatWhereClause(s.Generics))
		b.WriteString(" {\n")
		for _, id := range kind.Fields {
			field, ok := crate.Index[id]
			if !ok {
				continue
			}
			if sf, ok := field.Inner.(StructField); ok {
				fmt.Fprintf(&b, "    pub %s: %s,\n", field.DisplayName(), FormatType(sf.Type))
			}
		}
		b.WriteByte('}')
	}
	return b.String()
}

// tupleFields renders positional fields. Stripped fields show as
// /* private */, non-field items as _.
func tupleFields(crate *RustdocCrate, fields []*ID) string {
	parts := make([]string, len(fields))
	for i, id := range fields {
		parts[i] = "/* private */"
		if id == nil {
			continue
		}
		field, ok := crate.Index[*id]
		if !ok {
			continue
		}
		if sf, ok := field.Inner.(StructField); ok {
			parts[i] = FormatType(sf.Type)
		} else {
			parts[i] = "_"
		}
	}
	return strings.Join(parts, ", ")
}

// writeStructMethods lists public methods from inherent impls only.
func writeStructMethods(b *strings.Builder, crate *RustdocCrate, s Struct) {
	type method struct{ name, sig string }
	var methods []method
	for _, implID := range s.Impls {
		implItem, ok := crate.Index[implID]
		if !ok {
			continue
		}
		impl, ok := implItem.Inner.(Impl)
		if !ok || impl.Trait != nil {
			continue
		}
		for _, id := range impl.Items {
			m, ok := crate.Index[id]
			if !ok || !m.IsPublic() {
				continue
			}
			if fn, ok := m.Inner.(Function); ok {
				methods = append(methods, method{m.DisplayName(), FormatFunctionSignature(m.DisplayName(), fn)})
			}
		}
	}
	if len(methods) == 0 {
		return
	}
	b.WriteString("## Methods\n\n")
	for _, m := range methods {
		fmt.Fprintf(b, "- `%s`\n  ```rust\n  %s\n  ```\n", m.name, m.sig)
	}
	b.WriteByte('\n')
}

func formatEnumDefinition(crate *RustdocCrate, name string, e Enum) string {
	var b strings.Builder
	fmt.Fprintf(&b, "enum %s%s%s {\n", name, FormatGenerics(e.Generics), FormatWhereClause(e.Generics))
	for _, id := range e.Variants {
		item, ok := crate.Index[id]
		if !ok {
			continue
		}
		v, ok := item.Inner.(Variant)
		if !ok {
			continue
		}
		b.WriteString("    " + item.DisplayName())
		switch kind := v.Kind.(type) {
		case PlainVariant:
		case TupleVariant:
			b.WriteString("(" + tupleFields(crate, kind.Fields) + ")")
		case StructVariant:
			b.WriteString(" {\n")
			for _, fid := range kind.Fields {
				field, ok := crate.Index[fid]
				if !ok {
					continue
				}
				if sf, ok := field.Inner.(StructField); ok {
					fmt.Fprintf(&b, "        %s: %s,\n", field.DisplayName(), FormatType(sf.Type))
				}
			}
			b.WriteString("    }")
		}
		b.WriteString(",\n")
	}
	b.WriteByte('}')
	return b.String()
}

func formatTraitDefinition(crate *RustdocCrate, name string, t Trait) string {
	var b strings.Builder
	if t.IsUnsafe {
		b.WriteString("unsafe ")
	}
	fmt.Fprintf(&b, "trait %s%s", name, FormatGenerics(t.Generics))
	if len(t.Bounds) > 0 {
		b.WriteString(": " + FormatBounds(t.Bounds))
	}
	b.WriteString(FormatWhereClause(t.Generics))
	b.WriteString(" {\n")
	for _, id := range t.Items {
		item, ok := crate.Index[id]
		if !ok {
			continue
		}
		iname := item.DisplayName()
		switch inner := item.Inner.(type) {
		case Function:
			sig := FormatFunctionSignature(iname, inner)
			if inner.HasBody {
				fmt.Fprintf(&b, "    %s { ... }\n", sig)
			} else {
				fmt.Fprintf(&b, "    %s;\n", sig)
			}
		case AssocType:
			b.WriteString("    type " + iname)
			if len(inner.Bounds) > 0 {
				b.WriteString(": " + FormatBounds(inner.Bounds))
			}
			if inner.Type != nil {
				b.WriteString(" = " + FormatType(inner.Type))
			}
			b.WriteString(";\n")
		case AssocConst:
			fmt.Fprintf(&b, "    const %s: %s;\n", iname, FormatType(inner.Type))
		}
	}
	b.WriteByte('}')
	return b.String()
}

// FormatSearchResults renders a numbered list of matches. Functions also
// show their signature on a second line.
func FormatSearchResults(crate *RustdocCrate, matches []*RustdocItem) string {
	var b strings.Builder
	for i, item := range matches {
		fmt.Fprintf(&b, "%d. [%s] `%s`", i+1, KindLabel(item.Inner), ItemPath(crate, item.ID))
		if summary := FirstSentence(item.docs()); summary != "" {
			b.WriteString(" -- " + summary)
		}
		b.WriteByte('\n')
		if fn, ok := item.Inner.(Function); ok {
			fmt.Fprintf(&b, "   `%s`\n", strings.TrimSpace(FormatFunctionSignature(item.DisplayName(), fn)))
		}
	}
	return b.String()
}

// ItemPath returns the canonical "::"-joined path of an item, falling back to
// its bare name.
func ItemPath(crate *RustdocCrate, id ID) string {
	if summary, ok := crate.Paths[id]; ok {
		return strings.Join(summary.Path, "::")
	}
	if item, ok := crate.Index[id]; ok {
		return item.DisplayName()
	}
	return "_"
}

// KindLabel returns the short kind name used in search results.
func KindLabel(inner ItemInner) string {
	switch inner.(type) {
	case Module:
		return "mod"
	case Function:
		return "fn"
	case Struct:
		return "struct"
	case Enum:
		return "enum"
	case Trait:
		return "trait"
	case TypeAlias:
		return "type"
	case Constant:
		return "const"
	case Macro:
		return "macro"
	case ProcMacro:
		return "proc_macro"
	case Union:
		return "union"
	case Static:
		return "static"
	case Variant:
		return "variant"
	case StructField:
		return "field"
	case Impl:
		return "impl"
	case Use:
		return "use"
	case ExternCrate:
		return "extern_crate"
	case TraitAlias:
		return "trait_alias"
	case ExternType:
		return "extern_type"
	case AssocConst:
		return "assoc_const"
	case AssocType:
		return "assoc_type"
	case PrimitiveItem:
		return "primitive"
	}
	return "unknown"
}

// FirstSentence returns the first line of text, cut after the first ". "
// when one occurs.
func FirstSentence(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSuffix(line, "\r")
	if i := strings.Index(line, ". "); i >= 0 {
		return line[:i+1]
	}
	return line
}
