package docs

func strp(s string) *string { return &s }

func idp(id ID) *ID { return &id }

func prim(name string) Type { return PrimitiveType{Name: name} }

func generic(name string) Type { return GenericType{Name: name} }

func resolved(name string, id ID, args ...Type) Type {
	p := Path{Name: name, ID: id}
	if len(args) > 0 {
		ab := AngleBracketed{}
		for _, a := range args {
			ab.Args = append(ab.Args, TypeArg{Type: a})
		}
		p.Args = ab
	}
	return ResolvedPath{Path: p}
}

func traitBound(name string) GenericBound {
	return TraitBound{Trait: Path{Name: name}, Modifier: "none"}
}

type crateBuilder struct {
	crate *RustdocCrate
}

func newCrateBuilder() *crateBuilder {
	return &crateBuilder{crate: &RustdocCrate{
		Root:  0,
		Index: make(map[ID]*RustdocItem),
		Paths: make(map[ID]RustdocSummary),
		ExternalCrates: map[uint32]ExternalCrate{
			1: {Name: "serde", HTMLRootURL: "https://docs.rs/serde/1.0.200/"},
			2: {Name: "tracing_core"},
		},
		FormatVersion: FormatVersion,
	}}
}

// add registers a public item. A non-empty path also records a path summary.
func (b *crateBuilder) add(id ID, name, docs string, inner ItemInner, kind string, path ...string) *RustdocItem {
	item := &RustdocItem{ID: id, Visibility: VisibilityPublic, Inner: inner}
	if name != "" {
		item.Name = strp(name)
	}
	if docs != "" {
		item.Docs = strp(docs)
	}
	b.crate.Index[id] = item
	if len(path) > 0 {
		b.crate.Paths[id] = RustdocSummary{Path: path, Kind: kind}
	}
	return item
}

// demoCrate builds a small crate named demo:
//
//	demo
//	├── de            (module: Deserialize, from_str)
//	├── Config<T>     (plain struct, inherent new + private helper, Clone impl)
//	├── Mode          (enum: Fast, Slow(u32), Custom { level })
//	├── parse, Result, MAX, demo_macro, Marker, Wrapper, GLOBAL
//	├── util::deep    (nested modules)
//	└── dup, dup      (two modules with one name; only the second has target)
//
// Hidden (id 70) is only reachable through its path summary.
func demoCrate() *RustdocCrate {
	b := newCrateBuilder()

	b.add(0, "demo", "Demo crate. Used in tests.\nSecond line.", Module{
		IsCrate: true,
		Items:   []ID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 16, 17},
	}, "module", "demo")

	b.add(1, "de", "Deserialization support.", Module{Items: []ID{20, 21}}, "module", "demo", "de")
	b.add(20, "Deserialize", "A data structure that can be deserialized.", Trait{
		Items: []ID{22, 23, 24, 25},
		Generics: Generics{Params: []GenericParamDef{
			{Name: "'de", Kind: LifetimeParam{}},
		}},
		Bounds: []GenericBound{traitBound("Sized")},
	}, "trait", "demo", "de", "Deserialize")
	b.add(22, "deserialize", "", Function{
		Sig: FunctionSignature{
			Inputs: []Param{{Name: "deserializer", Type: generic("D")}},
			Output: resolved("Result", 90, generic("Self"), QualifiedPath{Name: "Error", SelfType: generic("D")}),
		},
		Generics: Generics{Params: []GenericParamDef{
			{Name: "D", Kind: TypeParam{Bounds: []GenericBound{TraitBound{
				Trait: Path{Name: "Deserializer", Args: AngleBracketed{Args: []GenericArg{LifetimeArg{Name: "'de"}}}},
			}}}},
		}},
	}, "")
	b.add(23, "Output", "", AssocType{Bounds: []GenericBound{traitBound("Debug")}}, "")
	b.add(24, "ID", "", AssocConst{Type: prim("u32")}, "")
	b.add(25, "describe", "", Function{
		Sig:     FunctionSignature{Inputs: []Param{{Name: "self", Type: BorrowedRef{Type: generic("Self")}}}, Output: resolved("String", 91)},
		HasBody: true,
	}, "")
	b.add(21, "from_str", "Parse a value from a string. Fails on bad input.", Function{
		Sig: FunctionSignature{
			Inputs: []Param{{Name: "s", Type: BorrowedRef{Lifetime: strp("'a"), Type: prim("str")}}},
			Output: resolved("Result", 90, generic("T")),
		},
		Generics: Generics{
			Params: []GenericParamDef{
				{Name: "'a", Kind: LifetimeParam{}},
				{Name: "T", Kind: TypeParam{}},
			},
			WherePredicates: []WherePredicate{
				BoundPredicate{Type: generic("T"), Bounds: []GenericBound{TraitBound{
					Trait: Path{Name: "Deserialize", ID: 20, Args: AngleBracketed{Args: []GenericArg{LifetimeArg{Name: "'a"}}}},
				}}},
			},
		},
	}, "function", "demo", "de", "from_str")

	b.add(2, "Config", "Runtime configuration. Built with new.", Struct{
		Kind: PlainStruct{Fields: []ID{30, 31}},
		Generics: Generics{Params: []GenericParamDef{
			{Name: "T", Kind: TypeParam{Bounds: []GenericBound{traitBound("Clone")}}},
		}},
		Impls: []ID{40, 41},
	}, "struct", "demo", "Config")
	b.add(30, "name", "", StructField{Type: resolved("String", 91)}, "struct_field", "demo", "Config", "name")
	b.add(31, "retries", "", StructField{Type: prim("u32")}, "")
	b.add(40, "", "", Impl{Items: []ID{50, 51}, For: resolved("Config", 2, generic("T"))}, "")
	b.add(50, "new", "", Function{Sig: FunctionSignature{Output: generic("Self")}, HasBody: true}, "")
	helper := b.add(51, "helper", "", Function{HasBody: true}, "")
	helper.Visibility = VisibilityDefault
	b.add(41, "", "", Impl{Trait: &Path{Name: "Clone"}, Items: []ID{52}, For: resolved("Config", 2, generic("T"))}, "")
	b.add(52, "clone", "", Function{
		Sig:     FunctionSignature{Inputs: []Param{{Name: "self", Type: BorrowedRef{Type: generic("Self")}}}, Output: generic("Self")},
		HasBody: true,
	}, "")

	b.add(3, "Mode", "Execution mode.", Enum{Variants: []ID{60, 61, 62}}, "enum", "demo", "Mode")
	b.add(60, "Fast", "", Variant{Kind: PlainVariant{}}, "variant", "demo", "Mode", "Fast")
	b.add(61, "Slow", "", Variant{Kind: TupleVariant{Fields: []*ID{idp(63)}}}, "")
	b.add(63, "0", "", StructField{Type: prim("u32")}, "")
	b.add(62, "Custom", "", Variant{Kind: StructVariant{Fields: []ID{64}}}, "")
	b.add(64, "level", "", StructField{Type: prim("u8")}, "")

	b.add(4, "parse", "Parses a config.", Function{
		Sig: FunctionSignature{
			Inputs: []Param{{Name: "input", Type: BorrowedRef{Type: prim("str")}}},
			Output: resolved("Result", 5, resolved("Config", 2, prim("u8"))),
		},
	}, "function", "demo", "parse")
	b.add(5, "Result", "", TypeAlias{
		Type:     resolved("std::result::Result", 90, generic("T"), resolved("Error", 92)),
		Generics: Generics{Params: []GenericParamDef{{Name: "T", Kind: TypeParam{}}}},
	}, "type_alias", "demo", "Result")
	b.add(6, "MAX", "Maximum retries.", Constant{Type: prim("usize"), Const: ConstantExpr{Expr: "64"}}, "constant", "demo", "MAX")
	b.add(7, "demo_macro", "", Macro{Body: "macro_rules! demo_macro { ... }"}, "macro", "demo", "demo_macro")
	b.add(8, "Marker", "", Struct{Kind: UnitStruct{}}, "struct", "demo", "Marker")
	b.add(9, "Wrapper", "", Struct{Kind: TupleStruct{Fields: []*ID{idp(65), nil}}}, "struct", "demo", "Wrapper")
	b.add(65, "0", "", StructField{Type: prim("u8")}, "")
	b.add(10, "Deserialize", "", Use{Source: "de::Deserialize", Name: "Deserialize", ID: idp(20)}, "")
	internal := b.add(11, "internal", "Not exported.", Function{}, "function", "demo", "internal")
	internal.Visibility = VisibilityCrate
	b.add(12, "GLOBAL", "", Static{Type: prim("u32"), Expr: "0"}, "static", "demo", "GLOBAL")

	b.add(13, "util", "", Module{Items: []ID{14}}, "module", "demo", "util")
	b.add(14, "deep", "Deeply nested.", Module{}, "module", "demo", "util", "deep")

	b.add(16, "dup", "", Module{}, "module", "demo", "dup")
	b.add(17, "dup", "", Module{Items: []ID{18}}, "module", "demo", "dup")
	b.add(18, "target", "", Function{}, "function", "demo", "dup", "target")

	b.add(70, "Hidden", "Re-exported elsewhere.", Struct{Kind: UnitStruct{}}, "struct", "demo", "inner", "Hidden")
	ext := b.add(71, "Hidden", "", Struct{Kind: UnitStruct{}}, "")
	ext.CrateID = 1
	b.crate.Paths[71] = RustdocSummary{CrateID: 1, Path: []string{"serde", "Hidden"}, Kind: "struct"}
	b.crate.Paths[95] = RustdocSummary{CrateID: 2, Path: []string{"tracing_core", "field", "Value"}, Kind: "trait"}

	return b.crate
}
