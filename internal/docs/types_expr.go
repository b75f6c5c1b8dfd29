package docs

// Type is a rustdoc type expression. The set of implementations is closed.
type Type interface {
	typeExpr()
}

type PrimitiveType struct {
	Name string
}

// GenericType is a reference to a generic parameter such as T or Self.
type GenericType struct {
	Name string
}

type ResolvedPath struct {
	Path Path
}

type BorrowedRef struct {
	Lifetime  *string
	IsMutable bool
	Type      Type
}

// Tuple with no elements is the unit type.
type Tuple struct {
	Elems []Type
}

type Slice struct {
	Elem Type
}

type Array struct {
	Elem Type
	Len  string
}

type RawPointer struct {
	IsMutable bool
	Type      Type
}

type ImplTrait struct {
	Bounds []GenericBound
}

type DynTrait struct {
	Traits   []PolyTrait
	Lifetime *string
}

type FunctionPointer struct {
	Sig           FunctionSignature
	GenericParams []GenericParamDef
	Header        FunctionHeader
}

// QualifiedPath is an associated item projection like <T as Iterator>::Item.
type QualifiedPath struct {
	Name     string
	Args     GenericArgs
	SelfType Type
	Trait    *Path
}

type Infer struct{}

// Pat is a pattern type; only the wrapped type is kept.
type Pat struct {
	Type Type
}

func (PrimitiveType) typeExpr()   {}
func (GenericType) typeExpr()     {}
func (ResolvedPath) typeExpr()    {}
func (BorrowedRef) typeExpr()     {}
func (Tuple) typeExpr()           {}
func (Slice) typeExpr()           {}
func (Array) typeExpr()           {}
func (RawPointer) typeExpr()      {}
func (ImplTrait) typeExpr()       {}
func (DynTrait) typeExpr()        {}
func (FunctionPointer) typeExpr() {}
func (QualifiedPath) typeExpr()   {}
func (Infer) typeExpr()           {}
func (Pat) typeExpr()             {}

// Path names an item, optionally with generic arguments.
type Path struct {
	Name string
	ID   ID
	Args GenericArgs // nil when absent
}

type PolyTrait struct {
	Trait         Path
	GenericParams []GenericParamDef
}

// GenericArgs is the argument list following a path segment.
type GenericArgs interface {
	genericArgs()
}

type AngleBracketed struct {
	Args        []GenericArg
	Constraints []AssocItemConstraint
}

// Parenthesized is the Fn(A, B) -> C sugar.
type Parenthesized struct {
	Inputs []Type
	Output Type
}

// ReturnTypeNotation is the T::method(..) form.
type ReturnTypeNotation struct{}

func (AngleBracketed) genericArgs()     {}
func (Parenthesized) genericArgs()      {}
func (ReturnTypeNotation) genericArgs() {}

type GenericArg interface {
	genericArg()
}

type LifetimeArg struct {
	Name string
}

type TypeArg struct {
	Type Type
}

type ConstArg struct {
	Const ConstantExpr
}

type InferArg struct{}

func (LifetimeArg) genericArg() {}
func (TypeArg) genericArg()     {}
func (ConstArg) genericArg()    {}
func (InferArg) genericArg()    {}

// AssocItemConstraint is either Name = Term (Equality set) or Name: Bounds.
type AssocItemConstraint struct {
	Name     string
	Args     GenericArgs
	Equality *Term
	Bounds   []GenericBound
}

// Term holds exactly one of Type or Const.
type Term struct {
	Type  Type
	Const *ConstantExpr
}

type GenericBound interface {
	genericBound()
}

type TraitBound struct {
	Trait         Path
	GenericParams []GenericParamDef
	Modifier      string
}

type OutlivesBound struct {
	Lifetime string
}

// UseBound is a precise capturing clause, use<'a, T>.
type UseBound struct {
	Args []string
}

func (TraitBound) genericBound()    {}
func (OutlivesBound) genericBound() {}
func (UseBound) genericBound()      {}

type Generics struct {
	Params          []GenericParamDef
	WherePredicates []WherePredicate
}

type GenericParamDef struct {
	Name string
	Kind GenericParamKind
}

type GenericParamKind interface {
	genericParamKind()
}

type LifetimeParam struct {
	Outlives []string
}

type TypeParam struct {
	Bounds      []GenericBound
	Default     Type
	IsSynthetic bool
}

type ConstParam struct {
	Type    Type
	Default *string
}

func (LifetimeParam) genericParamKind() {}
func (TypeParam) genericParamKind()     {}
func (ConstParam) genericParamKind()    {}

type WherePredicate interface {
	wherePredicate()
}

type BoundPredicate struct {
	Type          Type
	Bounds        []GenericBound
	GenericParams []GenericParamDef
}

type LifetimePredicate struct {
	Lifetime string
	Outlives []string
}

type EqPredicate struct {
	LHS Type
	RHS Term
}

func (BoundPredicate) wherePredicate()    {}
func (LifetimePredicate) wherePredicate() {}
func (EqPredicate) wherePredicate()       {}

type FunctionSignature struct {
	Inputs      []Param
	Output      Type // nil for ()
	IsCVariadic bool
}

type Param struct {
	Name string
	Type Type
}

type FunctionHeader struct {
	IsConst  bool
	IsUnsafe bool
	IsAsync  bool
}
