package docs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Decode parses rustdoc JSON into a RustdocCrate.
//
// Decoding is strict: unknown variant tags and missing required fields are
// errors, so that payloads produced for a different format version are
// reported instead of silently yielding a partial tree.
func Decode(data []byte) (*RustdocCrate, error) {
	var w struct {
		Root            *ID                      `json:"root"`
		CrateVersion    *string                  `json:"crate_version"`
		IncludesPrivate bool                     `json:"includes_private"`
		Index           map[ID]json.RawMessage   `json:"index"`
		Paths           map[ID]RustdocSummary    `json:"paths"`
		ExternalCrates  map[uint32]ExternalCrate `json:"external_crates"`
		FormatVersion   *int                     `json:"format_version"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshaling rustdoc JSON: %w", err)
	}
	switch {
	case w.Root == nil:
		return nil, errors.New("missing field \"root\"")
	case w.Index == nil:
		return nil, errors.New("missing field \"index\"")
	case w.Paths == nil:
		return nil, errors.New("missing field \"paths\"")
	case w.FormatVersion == nil:
		return nil, errors.New("missing field \"format_version\"")
	}

	crate := &RustdocCrate{
		Root:            *w.Root,
		CrateVersion:    w.CrateVersion,
		IncludesPrivate: w.IncludesPrivate,
		Index:           make(map[ID]*RustdocItem, len(w.Index)),
		Paths:           w.Paths,
		ExternalCrates:  w.ExternalCrates,
		FormatVersion:   *w.FormatVersion,
	}
	for id, raw := range w.Index {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("index item %d: %w", id, err)
		}
		crate.Index[id] = item
	}
	return crate, nil
}

// probeFormatVersion reads only the format_version field. Any failure is
// reported as ok=false.
func probeFormatVersion(data []byte) (version int, ok bool) {
	var probe struct {
		FormatVersion *int `json:"format_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.FormatVersion == nil {
		return 0, false
	}
	return *probe.FormatVersion, true
}

func unknownVariant(enum, tag string) error {
	return fmt.Errorf("unknown %s variant %q", enum, tag)
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// tagged splits an externally tagged enum value into its tag and payload.
// Unit variants are encoded as a bare string and have a nil payload.
func tagged(raw json.RawMessage) (string, json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var tag string
		if err := json.Unmarshal(raw, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("expected an object with one variant key, got %d keys", len(m))
	}
	for tag, body := range m {
		return tag, body, nil
	}
	panic("unreachable")
}

func decodeList[T any](raws []json.RawMessage, decode func(json.RawMessage) (T, error)) ([]T, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		v, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeItem(raw json.RawMessage) (*RustdocItem, error) {
	var w struct {
		ID         *ID             `json:"id"`
		CrateID    uint32          `json:"crate_id"`
		Name       *string         `json:"name"`
		Visibility json.RawMessage `json:"visibility"`
		Docs       *string         `json:"docs"`
		Links      map[string]ID   `json:"links"`
		Inner      json.RawMessage `json:"inner"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if w.ID == nil {
		return nil, errors.New("missing field \"id\"")
	}
	if isNull(w.Inner) {
		return nil, errors.New("missing field \"inner\"")
	}
	vis, err := decodeVisibility(w.Visibility)
	if err != nil {
		return nil, err
	}
	inner, err := decodeInner(w.Inner)
	if err != nil {
		return nil, fmt.Errorf("inner: %w", err)
	}
	return &RustdocItem{
		ID:         *w.ID,
		CrateID:    w.CrateID,
		Name:       w.Name,
		Visibility: vis,
		Docs:       w.Docs,
		Links:      w.Links,
		Inner:      inner,
	}, nil
}

func decodeVisibility(raw json.RawMessage) (Visibility, error) {
	if isNull(raw) {
		return VisibilityDefault, nil
	}
	tag, _, err := tagged(raw)
	if err != nil {
		return "", fmt.Errorf("visibility: %w", err)
	}
	switch v := Visibility(tag); v {
	case VisibilityPublic, VisibilityDefault, VisibilityCrate, VisibilityRestricted:
		return v, nil
	}
	return "", unknownVariant("visibility", tag)
}

func decodeInner(raw json.RawMessage) (ItemInner, error) {
	tag, body, err := tagged(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "module":
		var w struct {
			IsCrate    bool `json:"is_crate"`
			Items      []ID `json:"items"`
			IsStripped bool `json:"is_stripped"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return Module{IsCrate: w.IsCrate, Items: w.Items, IsStripped: w.IsStripped}, nil

	case "extern_crate":
		var w struct {
			Name   string  `json:"name"`
			Rename *string `json:"rename"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return ExternCrate{Name: w.Name, Rename: w.Rename}, nil

	case "use":
		var w struct {
			Source string `json:"source"`
			Name   string `json:"name"`
			ID     *ID    `json:"id"`
			IsGlob bool   `json:"is_glob"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return Use{Source: w.Source, Name: w.Name, ID: w.ID, IsGlob: w.IsGlob}, nil

	case "union":
		var w struct {
			Generics          json.RawMessage `json:"generics"`
			HasStrippedFields bool            `json:"has_stripped_fields"`
			Fields            []ID            `json:"fields"`
			Impls             []ID            `json:"impls"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		g, err := decodeGenerics(w.Generics)
		if err != nil {
			return nil, err
		}
		return Union{Generics: g, HasStrippedFields: w.HasStrippedFields, Fields: w.Fields, Impls: w.Impls}, nil

	case "struct":
		var w struct {
			Kind     json.RawMessage `json:"kind"`
			Generics json.RawMessage `json:"generics"`
			Impls    []ID            `json:"impls"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		kind, err := decodeStructKind(w.Kind)
		if err != nil {
			return nil, err
		}
		g, err := decodeGenerics(w.Generics)
		if err != nil {
			return nil, err
		}
		return Struct{Kind: kind, Generics: g, Impls: w.Impls}, nil

	case "struct_field":
		t, err := decodeType(body)
		if err != nil {
			return nil, err
		}
		return StructField{Type: t}, nil

	case "enum":
		var w struct {
			Generics            json.RawMessage `json:"generics"`
			HasStrippedVariants bool            `json:"has_stripped_variants"`
			Variants            []ID            `json:"variants"`
			Impls               []ID            `json:"impls"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		g, err := decodeGenerics(w.Generics)
		if err != nil {
			return nil, err
		}
		return Enum{Generics: g, HasStrippedVariants: w.HasStrippedVariants, Variants: w.Variants, Impls: w.Impls}, nil

	case "variant":
		var w struct {
			Kind         json.RawMessage `json:"kind"`
			Discriminant *Discriminant   `json:"discriminant"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		kind, err := decodeVariantKind(w.Kind)
		if err != nil {
			return nil, err
		}
		return Variant{Kind: kind, Discriminant: w.Discriminant}, nil

	case "function":
		return decodeFunction(body)

	case "trait":
		var w struct {
			IsAuto          bool              `json:"is_auto"`
			IsUnsafe        bool              `json:"is_unsafe"`
			IsDynCompatible bool              `json:"is_dyn_compatible"`
			Items           []ID              `json:"items"`
			Generics        json.RawMessage   `json:"generics"`
			Bounds          []json.RawMessage `json:"bounds"`
			Implementations []ID              `json:"implementations"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		g, err := decodeGenerics(w.Generics)
		if err != nil {
			return nil, err
		}
		bounds, err := decodeList(w.Bounds, decodeBound)
		if err != nil {
			return nil, fmt.Errorf("bounds%w", err)
		}
		return Trait{
			IsAuto:          w.IsAuto,
			IsUnsafe:        w.IsUnsafe,
			IsDynCompatible: w.IsDynCompatible,
			Items:           w.Items,
			Generics:        g,
			Bounds:          bounds,
			Implementations: w.Implementations,
		}, nil

	case "trait_alias":
		var w struct {
			Generics json.RawMessage   `json:"generics"`
			Params   []json.RawMessage `json:"params"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		g, err := decodeGenerics(w.Generics)
		if err != nil {
			return nil, err
		}
		params, err := decodeList(w.Params, decodeBound)
		if err != nil {
			return nil, fmt.Errorf("params%w", err)
		}
		return TraitAlias{Generics: g, Params: params}, nil

	case "impl":
		return decodeImpl(body)

	case "type_alias":
		var w struct {
			Type     json.RawMessage `json:"type"`
			Generics json.RawMessage `json:"generics"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		g, err := decodeGenerics(w.Generics)
		if err != nil {
			return nil, err
		}
		return TypeAlias{Type: t, Generics: g}, nil

	case "constant":
		var w struct {
			Type  json.RawMessage `json:"type"`
			Const json.RawMessage `json:"const"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		c, err := decodeConstant(w.Const)
		if err != nil {
			return nil, err
		}
		return Constant{Type: t, Const: c}, nil

	case "static":
		var w struct {
			Type      json.RawMessage `json:"type"`
			IsMutable bool            `json:"is_mutable"`
			IsUnsafe  bool            `json:"is_unsafe"`
			Expr      string          `json:"expr"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		return Static{Type: t, IsMutable: w.IsMutable, IsUnsafe: w.IsUnsafe, Expr: w.Expr}, nil

	case "extern_type":
		return ExternType{}, nil

	case "macro":
		var src string
		if err := json.Unmarshal(body, &src); err != nil {
			return nil, err
		}
		return Macro{Body: src}, nil

	case "proc_macro":
		var w struct {
			Kind    string   `json:"kind"`
			Helpers []string `json:"helpers"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return ProcMacro{Kind: w.Kind, Helpers: w.Helpers}, nil

	case "primitive":
		var w struct {
			Name  string `json:"name"`
			Impls []ID   `json:"impls"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return PrimitiveItem{Name: w.Name, Impls: w.Impls}, nil

	case "assoc_const":
		var w struct {
			Type  json.RawMessage `json:"type"`
			Value *string         `json:"value"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		return AssocConst{Type: t, Value: w.Value}, nil

	case "assoc_type":
		var w struct {
			Generics json.RawMessage   `json:"generics"`
			Bounds   []json.RawMessage `json:"bounds"`
			Type     json.RawMessage   `json:"type"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		g, err := decodeGenerics(w.Generics)
		if err != nil {
			return nil, err
		}
		bounds, err := decodeList(w.Bounds, decodeBound)
		if err != nil {
			return nil, fmt.Errorf("bounds%w", err)
		}
		t, err := decodeType(w.Type)
		if err != nil {
			return nil, err
		}
		return AssocType{Generics: g, Bounds: bounds, Type: t}, nil
	}
	return nil, unknownVariant("item", tag)
}

func decodeStructKind(raw json.RawMessage) (StructKind, error) {
	tag, body, err := tagged(raw)
	if err != nil {
		return nil, fmt.Errorf("struct kind: %w", err)
	}
	switch tag {
	case "unit":
		return UnitStruct{}, nil
	case "tuple":
		var fields []*ID
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
		return TupleStruct{Fields: fields}, nil
	case "plain":
		var w struct {
			Fields            []ID `json:"fields"`
			HasStrippedFields bool `json:"has_stripped_fields"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return PlainStruct{Fields: w.Fields, HasStrippedFields: w.HasStrippedFields}, nil
	}
	return nil, unknownVariant("struct kind", tag)
}

func decodeVariantKind(raw json.RawMessage) (VariantKind, error) {
	tag, body, err := tagged(raw)
	if err != nil {
		return nil, fmt.Errorf("variant kind: %w", err)
	}
	switch tag {
	case "plain":
		return PlainVariant{}, nil
	case "tuple":
		var fields []*ID
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
		return TupleVariant{Fields: fields}, nil
	case "struct":
		var w struct {
			Fields            []ID `json:"fields"`
			HasStrippedFields bool `json:"has_stripped_fields"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return StructVariant{Fields: w.Fields, HasStrippedFields: w.HasStrippedFields}, nil
	}
	return nil, unknownVariant("variant kind", tag)
}

func decodeFunction(body json.RawMessage) (Function, error) {
	var w struct {
		Sig      json.RawMessage `json:"sig"`
		Generics json.RawMessage `json:"generics"`
		Header   FunctionHeader  `json:"header"`
		HasBody  bool            `json:"has_body"`
	}
	if err := json.Unmarshal(body, &w); err != nil {
		return Function{}, err
	}
	sig, err := decodeSignature(w.Sig)
	if err != nil {
		return Function{}, err
	}
	g, err := decodeGenerics(w.Generics)
	if err != nil {
		return Function{}, err
	}
	return Function{Sig: sig, Generics: g, Header: w.Header, HasBody: w.HasBody}, nil
}

func (h *FunctionHeader) UnmarshalJSON(data []byte) error {
	var w struct {
		IsConst  bool `json:"is_const"`
		IsUnsafe bool `json:"is_unsafe"`
		IsAsync  bool `json:"is_async"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*h = FunctionHeader{IsConst: w.IsConst, IsUnsafe: w.IsUnsafe, IsAsync: w.IsAsync}
	return nil
}

func decodeSignature(raw json.RawMessage) (FunctionSignature, error) {
	var w struct {
		Inputs      [][]json.RawMessage `json:"inputs"`
		Output      json.RawMessage     `json:"output"`
		IsCVariadic bool                `json:"is_c_variadic"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return FunctionSignature{}, fmt.Errorf("signature: %w", err)
	}
	sig := FunctionSignature{IsCVariadic: w.IsCVariadic}
	for i, pair := range w.Inputs {
		if len(pair) != 2 {
			return FunctionSignature{}, fmt.Errorf("signature input %d: expected [name, type]", i)
		}
		var p Param
		if err := json.Unmarshal(pair[0], &p.Name); err != nil {
			return FunctionSignature{}, fmt.Errorf("signature input %d: %w", i, err)
		}
		t, err := decodeType(pair[1])
		if err != nil {
			return FunctionSignature{}, fmt.Errorf("signature input %d: %w", i, err)
		}
		p.Type = t
		sig.Inputs = append(sig.Inputs, p)
	}
	out, err := decodeType(w.Output)
	if err != nil {
		return FunctionSignature{}, fmt.Errorf("signature output: %w", err)
	}
	sig.Output = out
	return sig, nil
}

func decodeImpl(body json.RawMessage) (Impl, error) {
	var w struct {
		IsUnsafe             bool            `json:"is_unsafe"`
		Generics             json.RawMessage `json:"generics"`
		ProvidedTraitMethods []string        `json:"provided_trait_methods"`
		Trait                json.RawMessage `json:"trait"`
		For                  json.RawMessage `json:"for"`
		Items                []ID            `json:"items"`
		IsNegative           bool            `json:"is_negative"`
		IsSynthetic          bool            `json:"is_synthetic"`
		BlanketImpl          json.RawMessage `json:"blanket_impl"`
	}
	if err := json.Unmarshal(body, &w); err != nil {
		return Impl{}, err
	}
	g, err := decodeGenerics(w.Generics)
	if err != nil {
		return Impl{}, err
	}
	impl := Impl{
		IsUnsafe:             w.IsUnsafe,
		Generics:             g,
		ProvidedTraitMethods: w.ProvidedTraitMethods,
		Items:                w.Items,
		IsNegative:           w.IsNegative,
		IsSynthetic:          w.IsSynthetic,
	}
	if !isNull(w.Trait) {
		p, err := decodePath(w.Trait)
		if err != nil {
			return Impl{}, fmt.Errorf("trait: %w", err)
		}
		impl.Trait = &p
	}
	if impl.For, err = decodeType(w.For); err != nil {
		return Impl{}, fmt.Errorf("for: %w", err)
	}
	if impl.BlanketImpl, err = decodeType(w.BlanketImpl); err != nil {
		return Impl{}, fmt.Errorf("blanket_impl: %w", err)
	}
	return impl, nil
}
