package docs

import "strings"

// FormatType renders a type expression in compact Rust syntax.
// A nil type renders as "_".
func FormatType(t Type) string {
	switch t := t.(type) {
	case PrimitiveType:
		return t.Name
	case GenericType:
		return t.Name
	case ResolvedPath:
		return formatPath(t.Path)
	case BorrowedRef:
		var b strings.Builder
		b.WriteByte('&')
		if t.Lifetime != nil {
			b.WriteString(*t.Lifetime)
			b.WriteByte(' ')
		}
		if t.IsMutable {
			b.WriteString("mut ")
		}
		b.WriteString(FormatType(t.Type))
		return b.String()
	case Tuple:
		return "(" + joinTypes(t.Elems) + ")"
	case Slice:
		return "[" + FormatType(t.Elem) + "]"
	case Array:
		return "[" + FormatType(t.Elem) + "; " + t.Len + "]"
	case RawPointer:
		if t.IsMutable {
			return "*mut " + FormatType(t.Type)
		}
		return "*const " + FormatType(t.Type)
	case ImplTrait:
		return "impl " + FormatBounds(t.Bounds)
	case DynTrait:
		parts := make([]string, 0, len(t.Traits)+1)
		for _, pt := range t.Traits {
			parts = append(parts, formatPath(pt.Trait))
		}
		if t.Lifetime != nil {
			parts = append(parts, *t.Lifetime)
		}
		return "dyn " + strings.Join(parts, " + ")
	case FunctionPointer:
		inputs := make([]Type, len(t.Sig.Inputs))
		for i, p := range t.Sig.Inputs {
			inputs[i] = p.Type
		}
		s := "fn(" + joinTypes(inputs) + ")"
		if t.Sig.Output != nil {
			s += " -> " + FormatType(t.Sig.Output)
		}
		return s
	case QualifiedPath:
		if t.Trait != nil {
			return "<" + FormatType(t.SelfType) + " as " + formatPath(*t.Trait) + ">::" + t.Name
		}
		return "<" + FormatType(t.SelfType) + ">::" + t.Name
	case Infer:
		return "_"
	case Pat:
		return FormatType(t.Type)
	}
	return "_"
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = FormatType(t)
	}
	return strings.Join(parts, ", ")
}

func formatPath(p Path) string {
	return p.Name + formatGenericArgs(p.Args)
}

func formatGenericArgs(args GenericArgs) string {
	switch a := args.(type) {
	case AngleBracketed:
		parts := make([]string, 0, len(a.Args)+len(a.Constraints))
		for _, arg := range a.Args {
			parts = append(parts, formatGenericArg(arg))
		}
		for _, c := range a.Constraints {
			parts = append(parts, formatConstraint(c))
		}
		if len(parts) == 0 {
			return ""
		}
		return "<" + strings.Join(parts, ", ") + ">"
	case Parenthesized:
		s := "(" + joinTypes(a.Inputs) + ")"
		if a.Output != nil {
			s += " -> " + FormatType(a.Output)
		}
		return s
	case ReturnTypeNotation:
		return "(..)"
	}
	return ""
}

func formatGenericArg(arg GenericArg) string {
	switch a := arg.(type) {
	case LifetimeArg:
		return a.Name
	case TypeArg:
		return FormatType(a.Type)
	case ConstArg:
		return a.Const.Expr
	case InferArg:
		return "_"
	}
	return "_"
}

func formatConstraint(c AssocItemConstraint) string {
	name := c.Name + formatGenericArgs(c.Args)
	if c.Equality != nil {
		return name + " = " + formatTerm(*c.Equality)
	}
	return name + ": " + FormatBounds(c.Bounds)
}

func formatTerm(t Term) string {
	if t.Const != nil {
		return t.Const.Expr
	}
	return FormatType(t.Type)
}

// FormatBounds joins bounds with " + ".
func FormatBounds(bounds []GenericBound) string {
	parts := make([]string, 0, len(bounds))
	for _, b := range bounds {
		switch b := b.(type) {
		case TraitBound:
			var prefix string
			switch b.Modifier {
			case "maybe":
				prefix = "?"
			case "maybe_const":
				prefix = "~const "
			}
			parts = append(parts, prefix+formatPath(b.Trait))
		case OutlivesBound:
			parts = append(parts, b.Lifetime)
		case UseBound:
			parts = append(parts, "use<"+strings.Join(b.Args, ", ")+">")
		}
	}
	return strings.Join(parts, " + ")
}

// FormatGenerics renders a generic parameter list such as <'a, T: Clone>.
// Compiler-synthesized parameters from impl Trait arguments are omitted.
func FormatGenerics(g Generics) string {
	var params []string
	for _, p := range g.Params {
		switch k := p.Kind.(type) {
		case LifetimeParam:
			s := p.Name
			if len(k.Outlives) > 0 {
				s += ": " + strings.Join(k.Outlives, " + ")
			}
			params = append(params, s)
		case TypeParam:
			if k.IsSynthetic {
				continue
			}
			s := p.Name
			if len(k.Bounds) > 0 {
				s += ": " + FormatBounds(k.Bounds)
			}
			if k.Default != nil {
				s += " = " + FormatType(k.Default)
			}
			params = append(params, s)
		case ConstParam:
			s := "const " + p.Name + ": " + FormatType(k.Type)
			if k.Default != nil {
				s += " = " + *k.Default
			}
			params = append(params, s)
		}
	}
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}

// FormatWhereClause renders "\nwhere\n    A: B,\n    C: D", or "" when
// there are no predicates.
func FormatWhereClause(g Generics) string {
	if len(g.WherePredicates) == 0 {
		return ""
	}
	preds := make([]string, 0, len(g.WherePredicates))
	for _, wp := range g.WherePredicates {
		switch wp := wp.(type) {
		case BoundPredicate:
			preds = append(preds, FormatType(wp.Type)+": "+FormatBounds(wp.Bounds))
		case LifetimePredicate:
			preds = append(preds, wp.Lifetime+": "+strings.Join(wp.Outlives, " + "))
		case EqPredicate:
			preds = append(preds, FormatType(wp.LHS)+" = "+formatTerm(wp.RHS))
		}
	}
	return "\nwhere\n    " + strings.Join(preds, ",\n    ")
}
