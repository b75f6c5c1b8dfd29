package docs

// FormatVersion is the rustdoc JSON schema revision this package decodes.
const FormatVersion = 56

// ID identifies an item within one crate's rustdoc index.
type ID uint32

// RustdocCrate is the top-level structure of rustdoc JSON output.
//
// A crate returned by Fetcher or Cache is shared between concurrent readers
// and must not be modified.
type RustdocCrate struct {
	Root            ID
	CrateVersion    *string
	IncludesPrivate bool
	Index           map[ID]*RustdocItem
	Paths           map[ID]RustdocSummary
	ExternalCrates  map[uint32]ExternalCrate
	FormatVersion   int
}

// ExternalCrate identifies a dependency crate by name.
type ExternalCrate struct {
	Name        string `json:"name"`
	HTMLRootURL string `json:"html_root_url"`
}

// RustdocSummary provides the path and kind for an item.
// The path is rustdoc's canonical path and need not match the module nesting.
type RustdocSummary struct {
	CrateID uint32   `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// Visibility is the declared visibility of an item.
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityDefault    Visibility = "default"
	VisibilityCrate      Visibility = "crate"
	VisibilityRestricted Visibility = "restricted"
)

// RustdocItem is a single item in the rustdoc index.
type RustdocItem struct {
	ID         ID
	CrateID    uint32
	Name       *string
	Visibility Visibility
	Docs       *string
	Links      map[string]ID // markdown link target → item ID
	Inner      ItemInner
}

// IsPublic reports whether the item is declared pub.
func (i *RustdocItem) IsPublic() bool {
	return i.Visibility == VisibilityPublic
}

// DisplayName returns the item name, or "_" when rustdoc recorded none.
func (i *RustdocItem) DisplayName() string {
	if i.Name == nil {
		return "_"
	}
	return *i.Name
}

func (i *RustdocItem) docs() string {
	if i.Docs == nil {
		return ""
	}
	return *i.Docs
}

// ItemInner is the kind-specific payload of an item. The set of
// implementations is closed; see the types below.
type ItemInner interface {
	itemInner()
}

type Module struct {
	IsCrate    bool
	Items      []ID
	IsStripped bool
}

type ExternCrate struct {
	Name   string
	Rename *string
}

type Use struct {
	Source string
	Name   string
	ID     *ID
	IsGlob bool
}

type Union struct {
	Generics          Generics
	HasStrippedFields bool
	Fields            []ID
	Impls             []ID
}

type Struct struct {
	Kind     StructKind
	Generics Generics
	Impls    []ID
}

type StructField struct {
	Type Type
}

type Enum struct {
	Generics            Generics
	HasStrippedVariants bool
	Variants            []ID
	Impls               []ID
}

type Variant struct {
	Kind         VariantKind
	Discriminant *Discriminant
}

type Discriminant struct {
	Expr  string `json:"expr"`
	Value string `json:"value"`
}

type Function struct {
	Sig      FunctionSignature
	Generics Generics
	Header   FunctionHeader
	HasBody  bool
}

type Trait struct {
	IsAuto          bool
	IsUnsafe        bool
	IsDynCompatible bool
	Items           []ID
	Generics        Generics
	Bounds          []GenericBound
	Implementations []ID
}

type TraitAlias struct {
	Generics Generics
	Params   []GenericBound
}

type Impl struct {
	IsUnsafe             bool
	Generics             Generics
	ProvidedTraitMethods []string
	Trait                *Path // nil for inherent impls
	For                  Type
	Items                []ID
	IsNegative           bool
	IsSynthetic          bool
	BlanketImpl          Type
}

type TypeAlias struct {
	Type     Type
	Generics Generics
}

type Constant struct {
	Type  Type
	Const ConstantExpr
}

type ConstantExpr struct {
	Expr      string
	Value     *string
	IsLiteral bool
}

type Static struct {
	Type      Type
	IsMutable bool
	IsUnsafe  bool
	Expr      string
}

type ExternType struct{}

type Macro struct {
	Body string
}

type ProcMacro struct {
	Kind    string
	Helpers []string
}

type PrimitiveItem struct {
	Name  string
	Impls []ID
}

type AssocConst struct {
	Type  Type
	Value *string
}

type AssocType struct {
	Generics Generics
	Bounds   []GenericBound
	Type     Type // default, nil when absent
}

func (Module) itemInner()        {}
func (ExternCrate) itemInner()   {}
func (Use) itemInner()           {}
func (Union) itemInner()         {}
func (Struct) itemInner()        {}
func (StructField) itemInner()   {}
func (Enum) itemInner()          {}
func (Variant) itemInner()       {}
func (Function) itemInner()      {}
func (Trait) itemInner()         {}
func (TraitAlias) itemInner()    {}
func (Impl) itemInner()          {}
func (TypeAlias) itemInner()     {}
func (Constant) itemInner()      {}
func (Static) itemInner()        {}
func (ExternType) itemInner()    {}
func (Macro) itemInner()         {}
func (ProcMacro) itemInner()     {}
func (PrimitiveItem) itemInner() {}
func (AssocConst) itemInner()    {}
func (AssocType) itemInner()     {}

// StructKind is the shape of a struct body.
type StructKind interface {
	structKind()
}

type UnitStruct struct{}

// TupleStruct fields are nil where the field is private and stripped.
type TupleStruct struct {
	Fields []*ID
}

type PlainStruct struct {
	Fields            []ID
	HasStrippedFields bool
}

func (UnitStruct) structKind()  {}
func (TupleStruct) structKind() {}
func (PlainStruct) structKind() {}

// VariantKind is the shape of an enum variant.
type VariantKind interface {
	variantKind()
}

type PlainVariant struct{}

type TupleVariant struct {
	Fields []*ID
}

type StructVariant struct {
	Fields            []ID
	HasStrippedFields bool
}

func (PlainVariant) variantKind()  {}
func (TupleVariant) variantKind()  {}
func (StructVariant) variantKind() {}
