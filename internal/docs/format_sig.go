package docs

import "strings"

// FormatFunctionSignature renders a function declaration without a body.
// Example output: "async fn get<T>(&self, key: &str) -> Option<T>"
func FormatFunctionSignature(name string, f Function) string {
	var b strings.Builder

	if f.Header.IsConst {
		b.WriteString("const ")
	}
	if f.Header.IsAsync {
		b.WriteString("async ")
	}
	if f.Header.IsUnsafe {
		b.WriteString("unsafe ")
	}
	b.WriteString("fn ")
	b.WriteString(name)
	b.WriteString(FormatGenerics(f.Generics))

	params := make([]string, 0, len(f.Sig.Inputs)+1)
	for _, p := range f.Sig.Inputs {
		if p.Name == "self" {
			params = append(params, selfShorthand(p.Type))
			continue
		}
		params = append(params, p.Name+": "+FormatType(p.Type))
	}
	if f.Sig.IsCVariadic {
		params = append(params, "...")
	}
	b.WriteByte('(')
	b.WriteString(strings.Join(params, ", "))
	b.WriteByte(')')

	if f.Sig.Output != nil {
		b.WriteString(" -> ")
		b.WriteString(FormatType(f.Sig.Output))
	}
	b.WriteString(FormatWhereClause(f.Generics))
	return b.String()
}

// selfShorthand renders a receiver as self, &self, &mut self or &'a self.
// Receivers of any other type keep the explicit form, e.g. self: Box<Self>.
func selfShorthand(t Type) string {
	switch t := t.(type) {
	case GenericType:
		if t.Name == "Self" {
			return "self"
		}
	case BorrowedRef:
		if g, ok := t.Type.(GenericType); ok && g.Name == "Self" {
			prefix := "&"
			if t.Lifetime != nil {
				prefix += *t.Lifetime + " "
			}
			if t.IsMutable {
				prefix += "mut "
			}
			return prefix + "self"
		}
	}
	return "self: " + FormatType(t)
}
