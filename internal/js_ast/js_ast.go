package js_ast

import (
	"github.com/jsshrink/jsshrink/internal/logger"
)

// Every file is parsed into a single AST. Later passes mutate the tree in
// place: scope analysis substitutes constants for identifiers, simplification
// replaces expressions with shorter equivalents, and the printer renames
// identifiers while it renders.
//
// Nodes never point back at the scopes that own them. Each function and each
// catch clause carries a ScopeID assigned by the parser instead, and the scope
// tree is a side table indexed by that ID. The program itself is scope 0.

type L int

// https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Operators/Operator_Precedence
const (
	LLowest L = iota
	LComma
	LAssign
	LConditional
	LLogicalOr
	LLogicalAnd
	LBitwiseOr
	LBitwiseXor
	LBitwiseAnd
	LEquals
	LCompare
	LShift
	LAdd
	LMultiply
	LPrefix
	LPostfix
	LNew
	LCall
	LMember
)

type OpCode int

func (op OpCode) IsPrefix() bool {
	return op < UnOpPostDec
}

func (op OpCode) UnaryAssignTarget() AssignTarget {
	if op >= UnOpPreDec && op <= UnOpPostInc {
		return AssignTargetUpdate
	}
	return AssignTargetNone
}

func (op OpCode) IsLeftAssociative() bool {
	return op >= BinOpAdd && op < BinOpComma
}

func (op OpCode) IsRightAssociative() bool {
	return op >= BinOpAssign
}

func (op OpCode) BinaryAssignTarget() AssignTarget {
	if op == BinOpAssign {
		return AssignTargetReplace
	}
	if op > BinOpAssign {
		return AssignTargetUpdate
	}
	return AssignTargetNone
}

type AssignTarget uint8

const (
	AssignTargetNone    AssignTarget = iota
	AssignTargetReplace              // "a = b"
	AssignTargetUpdate               // "a += b"
)

// If you add a new token, remember to add it to "OpTable" too
const (
	// Prefix
	UnOpPos OpCode = iota
	UnOpNeg
	UnOpCpl
	UnOpNot
	UnOpVoid
	UnOpTypeof
	UnOpDelete

	// Prefix update
	UnOpPreDec
	UnOpPreInc

	// Postfix update
	UnOpPostDec
	UnOpPostInc

	// Left-associative
	BinOpAdd
	BinOpSub
	BinOpMul
	BinOpDiv
	BinOpRem
	BinOpLt
	BinOpLe
	BinOpGt
	BinOpGe
	BinOpIn
	BinOpInstanceof
	BinOpShl
	BinOpShr
	BinOpUShr
	BinOpLooseEq
	BinOpLooseNe
	BinOpStrictEq
	BinOpStrictNe
	BinOpLogicalOr
	BinOpLogicalAnd
	BinOpBitwiseOr
	BinOpBitwiseAnd
	BinOpBitwiseXor

	// Non-associative
	BinOpComma

	// Right-associative
	BinOpAssign
	BinOpAddAssign
	BinOpSubAssign
	BinOpMulAssign
	BinOpDivAssign
	BinOpRemAssign
	BinOpShlAssign
	BinOpShrAssign
	BinOpUShrAssign
	BinOpBitwiseOrAssign
	BinOpBitwiseAndAssign
	BinOpBitwiseXorAssign
)

type opTableEntry struct {
	Text      string
	Level     L
	IsKeyword bool
}

var OpTable = []opTableEntry{
	// Prefix
	{"+", LPrefix, false},
	{"-", LPrefix, false},
	{"~", LPrefix, false},
	{"!", LPrefix, false},
	{"void", LPrefix, true},
	{"typeof", LPrefix, true},
	{"delete", LPrefix, true},

	// Prefix update
	{"--", LPrefix, false},
	{"++", LPrefix, false},

	// Postfix update
	{"--", LPostfix, false},
	{"++", LPostfix, false},

	// Left-associative
	{"+", LAdd, false},
	{"-", LAdd, false},
	{"*", LMultiply, false},
	{"/", LMultiply, false},
	{"%", LMultiply, false},
	{"<", LCompare, false},
	{"<=", LCompare, false},
	{">", LCompare, false},
	{">=", LCompare, false},
	{"in", LCompare, true},
	{"instanceof", LCompare, true},
	{"<<", LShift, false},
	{">>", LShift, false},
	{">>>", LShift, false},
	{"==", LEquals, false},
	{"!=", LEquals, false},
	{"===", LEquals, false},
	{"!==", LEquals, false},
	{"||", LLogicalOr, false},
	{"&&", LLogicalAnd, false},
	{"|", LBitwiseOr, false},
	{"&", LBitwiseAnd, false},
	{"^", LBitwiseXor, false},

	// Non-associative
	{",", LComma, false},

	// Right-associative
	{"=", LAssign, false},
	{"+=", LAssign, false},
	{"-=", LAssign, false},
	{"*=", LAssign, false},
	{"/=", LAssign, false},
	{"%=", LAssign, false},
	{"<<=", LAssign, false},
	{">>=", LAssign, false},
	{">>>=", LAssign, false},
	{"|=", LAssign, false},
	{"&=", LAssign, false},
	{"^=", LAssign, false},
}

// Scopes are numbered in the order their owning nodes appear in the source
type ScopeID uint32

const RootScopeID ScopeID = 0

type LocName struct {
	Loc  logger.Loc
	Name string
}

type PropertyKind uint8

const (
	PropertyNormal PropertyKind = iota
	PropertyGet
	PropertySet
)

type Property struct {
	// This is either an EString, an ENumber, or an EInteger. Identifier keys
	// are stored as strings and printed without quotes when possible.
	Key Expr

	// For getters and setters this is an EFunction
	Value Expr

	Kind PropertyKind
}

type Arg struct {
	Loc  logger.Loc
	Name string
}

type FnBody struct {
	Loc   logger.Loc
	Stmts []Stmt
}

type Fn struct {
	NameOrNil *LocName
	Args      []Arg
	Body      FnBody
	ScopeID   ScopeID

	// Function declarations bind their name in the enclosing scope while
	// function expressions bind it in their own scope
	IsDecl bool
}

type Expr struct {
	Loc  logger.Loc
	Data E
}

// An interface for expression data
type E interface{ isExpr() }

func (*EArray) isExpr()      {}
func (*EUnary) isExpr()      {}
func (*EBinary) isExpr()     {}
func (*EChain) isExpr()      {}
func (*EBoolean) isExpr()    {}
func (*ENew) isExpr()        {}
func (*EThis) isExpr()       {}
func (*ECall) isExpr()       {}
func (*EDot) isExpr()        {}
func (*EIndex) isExpr()      {}
func (*EFunction) isExpr()   {}
func (*EIdentifier) isExpr() {}
func (*EMissing) isExpr()    {}
func (*ENumber) isExpr()     {}
func (*EInteger) isExpr()    {}
func (*EObject) isExpr()     {}
func (*EString) isExpr()     {}
func (*ERegExp) isExpr()     {}
func (*EIf) isExpr()         {}
func (*EComma) isExpr()      {}
func (*ENull) isExpr()       {}
func (*EParen) isExpr()      {}

type EArray struct {
	Items []Expr
}

// This is used for both prefix and postfix operators
type EUnary struct {
	Value Expr
	Op    OpCode
}

type EBinary struct {
	Left  Expr
	Right Expr
	Op    OpCode
}

// A flattened run of same-precedence left-associative operators. The terms
// are evaluated from left to right: "a - b + c" is one chain with the terms
// "a", "- b", and "+ c". The operator of the first term is meaningless and is
// always the identity operator of the level ("+" or "*").
type EChain struct {
	Terms []ChainTerm
	Level L // Either LAdd or LMultiply
}

type ChainTerm struct {
	Value Expr
	Op    OpCode
}

type EBoolean struct{ Value bool }

type EThis struct{}

type ENull struct{}

// Array holes in "[a, , b]"
type EMissing struct{}

type ENew struct {
	Target Expr
	Args   []Expr
}

type ECall struct {
	Target Expr
	Args   []Expr
}

type EDot struct {
	Target  Expr
	Name    string
	NameLoc logger.Loc
}

type EIndex struct {
	Target Expr
	Index  Expr
}

type EFunction struct{ Fn Fn }

// A bare name reference. Property names after "." are not identifiers.
type EIdentifier struct {
	Name string
}

// A double-precision literal. Raw holds the original source text so the
// literal can be printed exactly as written. Folded values have no Raw text.
type ENumber struct {
	Raw   string
	Value float64
}

// An integer literal that is exactly representable as a double
type EInteger struct {
	Value int64
}

type EObject struct {
	Properties []Property
}

type EString struct {
	Value []uint16
}

type ERegExp struct{ Value string }

type EIf struct {
	Test Expr
	Yes  Expr
	No   Expr
}

// A comma-separated sequence "a, b, c". This always has at least two values.
type EComma struct {
	Values []Expr
}

// Parentheses from the source. These only exist between parsing and
// simplification. The printer adds parentheses based on precedence.
type EParen struct {
	Value Expr
}

type Stmt struct {
	Loc  logger.Loc
	Data S
}

// An interface for statement data
type S interface{ isStmt() }

func (*SBlock) isStmt()    {}
func (*SDebugger) isStmt() {}
func (*SEmpty) isStmt()    {}
func (*SExpr) isStmt()     {}
func (*SFunction) isStmt() {}
func (*SLabel) isStmt()    {}
func (*SIf) isStmt()       {}
func (*SFor) isStmt()      {}
func (*SForIn) isStmt()    {}
func (*SDoWhile) isStmt()  {}
func (*SWhile) isStmt()    {}
func (*SWith) isStmt()     {}
func (*STry) isStmt()      {}
func (*SSwitch) isStmt()   {}
func (*SReturn) isStmt()   {}
func (*SThrow) isStmt()    {}
func (*SVar) isStmt()      {}
func (*SBreak) isStmt()    {}
func (*SContinue) isStmt() {}

type SBlock struct {
	Stmts         []Stmt
	CloseBraceLoc logger.Loc
}

type SEmpty struct{}

type SDebugger struct{}

type SExpr struct {
	Value Expr
}

type SFunction struct {
	Fn Fn
}

type SLabel struct {
	Stmt Stmt
	Name LocName
}

type SIf struct {
	Test    Expr
	Yes     Stmt
	NoOrNil Stmt
}

type SFor struct {
	InitOrNil   Stmt // May be a SVar or a SExpr
	TestOrNil   Expr
	UpdateOrNil Expr
	Body        Stmt
}

type SForIn struct {
	Init  Stmt // Either a SVar with one undefined binding or a SExpr with an assignable value
	Value Expr
	Body  Stmt
}

type SDoWhile struct {
	Body Stmt
	Test Expr
}

type SWhile struct {
	Test Expr
	Body Stmt
}

type SWith struct {
	Value   Expr
	Body    Stmt
	BodyLoc logger.Loc
}

type Catch struct {
	Binding    LocName
	GuardOrNil Expr // "catch (e if e instanceof TypeError)"
	Body       []Stmt
	Loc        logger.Loc
	BodyLoc    logger.Loc
	ScopeID    ScopeID
}

type Finally struct {
	Loc   logger.Loc
	Stmts []Stmt
}

type STry struct {
	Catches []Catch
	Finally *Finally
	Body    []Stmt
	BodyLoc logger.Loc
}

type Case struct {
	ValueOrNil Expr // If this is nil, this is "default" instead of "case"
	Body       []Stmt
	Loc        logger.Loc
}

type SSwitch struct {
	Test          Expr
	Cases         []Case
	BodyLoc       logger.Loc
	CloseBraceLoc logger.Loc
}

type SReturn struct {
	ValueOrNil Expr
}

type SThrow struct {
	Value Expr
}

type Decl struct {
	Binding    LocName
	ValueOrNil Expr
}

type SVar struct {
	Decls []Decl
}

type SBreak struct {
	Label *LocName
}

type SContinue struct {
	Label *LocName
}

type AST struct {
	Stmts []Stmt

	// Scope IDs are dense: every ID in [0, ScopeCount) is owned by exactly one
	// function or catch clause, except for 0 which is the program itself
	ScopeCount int

	// "/*!" comments in source order
	ImportantComments []string
}
