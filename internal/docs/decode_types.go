package docs

import (
	"encoding/json"
	"fmt"
)

func decodeConstant(raw json.RawMessage) (ConstantExpr, error) {
	var w struct {
		Expr      string  `json:"expr"`
		Value     *string `json:"value"`
		IsLiteral bool    `json:"is_literal"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return ConstantExpr{}, fmt.Errorf("constant: %w", err)
	}
	return ConstantExpr{Expr: w.Expr, Value: w.Value, IsLiteral: w.IsLiteral}, nil
}

// decodeType returns a nil Type for JSON null.
func decodeType(raw json.RawMessage) (Type, error) {
	if isNull(raw) {
		return nil, nil
	}
	tag, body, err := tagged(raw)
	if err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	switch tag {
	case "primitive":
		var name string
		if err := json.Unmarshal(body, &name); err != nil {
			return nil, err
		}
		return PrimitiveType{Name: name}, nil

	case "generic":
		var name string
		if err := json.Unmarshal(body, &name); err != nil {
			return nil, err
		}
		return GenericType{Name: name}, nil

	case "resolved_path":
		p, err := decodePath(body)
		if err != nil {
			return nil, err
		}
		return ResolvedPath{Path: p}, nil

	case "borrowed_ref":
		var w struct {
			Lifetime  *string         `json:"lifetime"`
			IsMutable bool            `json:"is_mutable"`
			Type      json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		return BorrowedRef{Lifetime: w.Lifetime, IsMutable: w.IsMutable, Type: t}, nil

	case "tuple":
		var raws []json.RawMessage
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, err
		}
		elems, err := decodeList(raws, decodeType)
		if err != nil {
			return nil, fmt.Errorf("tuple%w", err)
		}
		return Tuple{Elems: elems}, nil

	case "slice":
		t, err := decodeType(body)
		if err != nil {
			return nil, err
		}
		return Slice{Elem: t}, nil

	case "array":
		var w struct {
			Type json.RawMessage `json:"type"`
			Len  string          `json:"len"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		return Array{Elem: t, Len: w.Len}, nil

	case "raw_pointer":
		var w struct {
			IsMutable bool            `json:"is_mutable"`
			Type      json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		return RawPointer{IsMutable: w.IsMutable, Type: t}, nil

	case "impl_trait":
		var raws []json.RawMessage
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, err
		}
		bounds, err := decodeList(raws, decodeBound)
		if err != nil {
			return nil, fmt.Errorf("impl_trait%w", err)
		}
		return ImplTrait{Bounds: bounds}, nil

	case "dyn_trait":
		var w struct {
			Traits []struct {
				Trait         json.RawMessage   `json:"trait"`
				GenericParams []json.RawMessage `json:"generic_params"`
			} `json:"traits"`
			Lifetime *string `json:"lifetime"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		dyn := DynTrait{Lifetime: w.Lifetime}
		for _, pt := range w.Traits {
			p, err := decodePath(pt.Trait)
			if err != nil {
				return nil, err
			}
			params, err := decodeList(pt.GenericParams, decodeParamDef)
			if err != nil {
				return nil, fmt.Errorf("generic_params%w", err)
			}
			dyn.Traits = append(dyn.Traits, PolyTrait{Trait: p, GenericParams: params})
		}
		return dyn, nil

	case "function_pointer":
		var w struct {
			Sig           json.RawMessage   `json:"sig"`
			GenericParams []json.RawMessage `json:"generic_params"`
			Header        FunctionHeader    `json:"header"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		sig, err := decodeSignature(w.Sig)
		if err != nil {
			return nil, err
		}
		params, err := decodeList(w.GenericParams, decodeParamDef)
		if err != nil {
			return nil, fmt.Errorf("generic_params%w", err)
		}
		return FunctionPointer{Sig: sig, GenericParams: params, Header: w.Header}, nil

	case "qualified_path":
		var w struct {
			Name     string          `json:"name"`
			Args     json.RawMessage `json:"args"`
			SelfType json.RawMessage `json:"self_type"`
			Trait    json.RawMessage `json:"trait"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		qp := QualifiedPath{Name: w.Name}
		if qp.Args, err = decodeGenericArgs(w.Args); err != nil {
			return nil, err
		}
		if qp.SelfType, err = decodeType(w.SelfType); err != nil {
			return nil, err
		}
		if !isNull(w.Trait) {
			p, err := decodePath(w.Trait)
			if err != nil {
				return nil, err
			}
			qp.Trait = &p
		}
		return qp, nil

	case "infer":
		return Infer{}, nil

	case "pat":
		var w struct {
			Type json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		return Pat{Type: t}, nil
	}
	return nil, unknownVariant("type", tag)
}

func decodePath(raw json.RawMessage) (Path, error) {
	var w struct {
		Path string          `json:"path"`
		Name string          `json:"name"`
		ID   ID              `json:"id"`
		Args json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return Path{}, fmt.Errorf("path: %w", err)
	}
	name := w.Path
	if name == "" {
		name = w.Name
	}
	args, err := decodeGenericArgs(w.Args)
	if err != nil {
		return Path{}, err
	}
	return Path{Name: name, ID: w.ID, Args: args}, nil
}

// decodeGenericArgs returns nil GenericArgs for JSON null.
func decodeGenericArgs(raw json.RawMessage) (GenericArgs, error) {
	if isNull(raw) {
		return nil, nil
	}
	tag, body, err := tagged(raw)
	if err != nil {
		return nil, fmt.Errorf("generic args: %w", err)
	}
	switch tag {
	case "angle_bracketed":
		var w struct {
			Args        []json.RawMessage `json:"args"`
			Constraints []json.RawMessage `json:"constraints"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		args, err := decodeList(w.Args, decodeGenericArg)
		if err != nil {
			return nil, fmt.Errorf("args%w", err)
		}
		constraints, err := decodeList(w.Constraints, decodeConstraint)
		if err != nil {
			return nil, fmt.Errorf("constraints%w", err)
		}
		return AngleBracketed{Args: args, Constraints: constraints}, nil

	case "parenthesized":
		var w struct {
			Inputs []json.RawMessage `json:"inputs"`
			Output json.RawMessage   `json:"output"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		inputs, err := decodeList(w.Inputs, decodeType)
		if err != nil {
			return nil, fmt.Errorf("inputs%w", err)
		}
		out, err := decodeType(w.Output)
		if err != nil {
			return nil, err
		}
		return Parenthesized{Inputs: inputs, Output: out}, nil

	case "return_type_notation":
		return ReturnTypeNotation{}, nil
	}
	return nil, unknownVariant("generic args", tag)
}

func decodeGenericArg(raw json.RawMessage) (GenericArg, error) {
	tag, body, err := tagged(raw)
	if err != nil {
		return nil, fmt.Errorf("generic arg: %w", err)
	}
	switch tag {
	case "lifetime":
		var name string
		if err := json.Unmarshal(body, &name); err != nil {
			return nil, err
		}
		return LifetimeArg{Name: name}, nil
	case "type":
		t, err := decodeType(body)
		if err != nil {
			return nil, err
		}
		return TypeArg{Type: t}, nil
	case "const":
		c, err := decodeConstant(body)
		if err != nil {
			return nil, err
		}
		return ConstArg{Const: c}, nil
	case "infer":
		return InferArg{}, nil
	}
	return nil, unknownVariant("generic arg", tag)
}

func decodeConstraint(raw json.RawMessage) (AssocItemConstraint, error) {
	var w struct {
		Name    string          `json:"name"`
		Args    json.RawMessage `json:"args"`
		Binding json.RawMessage `json:"binding"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return AssocItemConstraint{}, err
	}
	c := AssocItemConstraint{Name: w.Name}
	args, err := decodeGenericArgs(w.Args)
	if err != nil {
		return AssocItemConstraint{}, err
	}
	c.Args = args

	tag, body, err := tagged(w.Binding)
	if err != nil {
		return AssocItemConstraint{}, fmt.Errorf("binding: %w", err)
	}
	switch tag {
	case "equality":
		term, err := decodeTerm(body)
		if err != nil {
			return AssocItemConstraint{}, err
		}
		c.Equality = &term
	case "constraint":
		var raws []json.RawMessage
		if err := json.Unmarshal(body, &raws); err != nil {
			return AssocItemConstraint{}, err
		}
		if c.Bounds, err = decodeList(raws, decodeBound); err != nil {
			return AssocItemConstraint{}, fmt.Errorf("bounds%w", err)
		}
	default:
		return AssocItemConstraint{}, unknownVariant("constraint binding", tag)
	}
	return c, nil
}

func decodeTerm(raw json.RawMessage) (Term, error) {
	tag, body, err := tagged(raw)
	if err != nil {
		return Term{}, fmt.Errorf("term: %w", err)
	}
	switch tag {
	case "type":
		t, err := decodeType(body)
		if err != nil {
			return Term{}, err
		}
		return Term{Type: t}, nil
	case "constant":
		c, err := decodeConstant(body)
		if err != nil {
			return Term{}, err
		}
		return Term{Const: &c}, nil
	}
	return Term{}, unknownVariant("term", tag)
}

func decodeBound(raw json.RawMessage) (GenericBound, error) {
	tag, body, err := tagged(raw)
	if err != nil {
		return nil, fmt.Errorf("bound: %w", err)
	}
	switch tag {
	case "trait_bound":
		var w struct {
			Trait         json.RawMessage   `json:"trait"`
			GenericParams []json.RawMessage `json:"generic_params"`
			Modifier      string            `json:"modifier"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		p, err := decodePath(w.Trait)
		if err != nil {
			return nil, err
		}
		params, err := decodeList(w.GenericParams, decodeParamDef)
		if err != nil {
			return nil, fmt.Errorf("generic_params%w", err)
		}
		return TraitBound{Trait: p, GenericParams: params, Modifier: w.Modifier}, nil

	case "outlives":
		var lt string
		if err := json.Unmarshal(body, &lt); err != nil {
			return nil, err
		}
		return OutlivesBound{Lifetime: lt}, nil

	case "use":
		var raws []json.RawMessage
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, err
		}
		args, err := decodeList(raws, decodeCapturedArg)
		if err != nil {
			return nil, fmt.Errorf("use%w", err)
		}
		return UseBound{Args: args}, nil
	}
	return nil, unknownVariant("bound", tag)
}

// decodeCapturedArg accepts both the tagged {"lifetime": ..} / {"param": ..}
// form and a bare name.
func decodeCapturedArg(raw json.RawMessage) (string, error) {
	tag, body, err := tagged(raw)
	if err != nil {
		return "", err
	}
	if body == nil {
		return tag, nil
	}
	switch tag {
	case "lifetime", "param":
		var name string
		if err := json.Unmarshal(body, &name); err != nil {
			return "", err
		}
		return name, nil
	}
	return "", unknownVariant("captured arg", tag)
}

func decodeGenerics(raw json.RawMessage) (Generics, error) {
	if isNull(raw) {
		return Generics{}, nil
	}
	var w struct {
		Params          []json.RawMessage `json:"params"`
		WherePredicates []json.RawMessage `json:"where_predicates"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return Generics{}, fmt.Errorf("generics: %w", err)
	}
	params, err := decodeList(w.Params, decodeParamDef)
	if err != nil {
		return Generics{}, fmt.Errorf("generics params%w", err)
	}
	preds, err := decodeList(w.WherePredicates, decodeWherePredicate)
	if err != nil {
		return Generics{}, fmt.Errorf("where predicates%w", err)
	}
	return Generics{Params: params, WherePredicates: preds}, nil
}

func decodeParamDef(raw json.RawMessage) (GenericParamDef, error) {
	var w struct {
		Name string          `json:"name"`
		Kind json.RawMessage `json:"kind"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return GenericParamDef{}, err
	}
	tag, body, err := tagged(w.Kind)
	if err != nil {
		return GenericParamDef{}, fmt.Errorf("param kind: %w", err)
	}
	def := GenericParamDef{Name: w.Name}
	switch tag {
	case "lifetime":
		var k struct {
			Outlives []string `json:"outlives"`
		}
		if err := json.Unmarshal(body, &k); err != nil {
			return GenericParamDef{}, err
		}
		def.Kind = LifetimeParam{Outlives: k.Outlives}
	case "type":
		var k struct {
			Bounds      []json.RawMessage `json:"bounds"`
			Default     json.RawMessage   `json:"default"`
			IsSynthetic bool              `json:"is_synthetic"`
		}
		if err := json.Unmarshal(body, &k); err != nil {
			return GenericParamDef{}, err
		}
		bounds, err := decodeList(k.Bounds, decodeBound)
		if err != nil {
			return GenericParamDef{}, fmt.Errorf("bounds%w", err)
		}
		dflt, err := decodeType(k.Default)
		if err != nil {
			return GenericParamDef{}, err
		}
		def.Kind = TypeParam{Bounds: bounds, Default: dflt, IsSynthetic: k.IsSynthetic}
	case "const":
		var k struct {
			Type    json.RawMessage `json:"type"`
			Default *string         `json:"default"`
		}
		if err := json.Unmarshal(body, &k); err != nil {
			return GenericParamDef{}, err
		}
		t, err := decodeType(k.Type)
		if err != nil {
			return GenericParamDef{}, err
		}
		def.Kind = ConstParam{Type: t, Default: k.Default}
	default:
		return GenericParamDef{}, unknownVariant("generic param kind", tag)
	}
	return def, nil
}

func decodeWherePredicate(raw json.RawMessage) (WherePredicate, error) {
	tag, body, err := tagged(raw)
	if err != nil {
		return nil, fmt.Errorf("where predicate: %w", err)
	}
	switch tag {
	case "bound_predicate":
		var w struct {
			Type          json.RawMessage   `json:"type"`
			Bounds        []json.RawMessage `json:"bounds"`
			GenericParams []json.RawMessage `json:"generic_params"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		bounds, err := decodeList(w.Bounds, decodeBound)
		if err != nil {
			return nil, fmt.Errorf("bounds%w", err)
		}
		params, err := decodeList(w.GenericParams, decodeParamDef)
		if err != nil {
			return nil, fmt.Errorf("generic_params%w", err)
		}
		return BoundPredicate{Type: t, Bounds: bounds, GenericParams: params}, nil

	case "lifetime_predicate":
		var w struct {
			Lifetime string   `json:"lifetime"`
			Outlives []string `json:"outlives"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return LifetimePredicate{Lifetime: w.Lifetime, Outlives: w.Outlives}, nil

	case "eq_predicate":
		var w struct {
			LHS json.RawMessage `json:"lhs"`
			RHS json.RawMessage `json:"rhs"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		lhs, err := decodeType(w.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeTerm(w.RHS)
		if err != nil {
			return nil, err
		}
		return EqPredicate{LHS: lhs, RHS: rhs}, nil
	}
	return nil, unknownVariant("where predicate", tag)
}
