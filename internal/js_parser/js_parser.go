package js_parser

import (
	"fmt"

	"github.com/jsshrink/jsshrink/internal/helpers"
	"github.com/jsshrink/jsshrink/internal/js_ast"
	"github.com/jsshrink/jsshrink/internal/js_lexer"
	"github.com/jsshrink/jsshrink/internal/logger"
)

// This parser does a single pass over the source. It only builds the tree;
// scopes and symbols are resolved by a separate analysis afterward. The only
// scope-related thing it does is to number every function and catch clause
// so later passes can keep their data in side tables.
//
// Any syntax error aborts the whole parse. There is no error recovery, so an
// AST is only ever returned for a file without errors.

type parser struct {
	log         logger.Log
	source      logger.Source
	lexer       js_lexer.Lexer
	nextScopeID js_ast.ScopeID
	fnData      fnDataParse
}

// Per-function state. This is saved and restored around function bodies
// since labels and loops don't cross function boundaries.
type fnDataParse struct {
	labels      []string
	isInsideFn  bool
	loopDepth   int
	switchDepth int
}

type exprFlag uint8

const (
	// The "in" operator is not allowed here because this is the initializer
	// of a "for" loop, which may turn out to be a "for-in" loop
	exprFlagForbidIn exprFlag = 1 << iota

	// A "(" does not start a call here because this is the constructor of a
	// "new" expression, and the parentheses are the constructor arguments
	exprFlagForbidCall
)

func Parse(log logger.Log, source logger.Source) (result js_ast.AST, ok bool) {
	ok = true
	defer func() {
		r := recover()
		if _, isLexerPanic := r.(js_lexer.LexerPanic); isLexerPanic {
			ok = false
		} else if r != nil {
			panic(r)
		}
	}()

	p := newParser(log, source, js_lexer.NewLexer(log, source))

	// The program itself is scope 0
	p.nextScopeID = js_ast.RootScopeID + 1

	stmts := p.parseStmtsUpTo(js_lexer.TEndOfFile)

	result = js_ast.AST{
		Stmts:      stmts,
		ScopeCount: int(p.nextScopeID),
	}
	for _, comment := range p.lexer.ImportantComments {
		result.ImportantComments = append(result.ImportantComments, comment.Text)
	}
	return
}

func newParser(log logger.Log, source logger.Source, lexer js_lexer.Lexer) *parser {
	return &parser{
		log:    log,
		source: source,
		lexer:  lexer,
	}
}

// Syntax errors are always fatal
func (p *parser) syntaxError(r logger.Range, text string) {
	p.log.AddRangeError(&p.source, r, text)
	panic(js_lexer.LexerPanic{})
}

func (p *parser) newScopeID() js_ast.ScopeID {
	id := p.nextScopeID
	p.nextScopeID++
	return id
}

// Keywords escaped with "@" are identifiers
func (p *parser) isIdentifier() bool {
	return p.lexer.Token == js_lexer.TIdentifier || p.lexer.Token == js_lexer.TEscapedKeyword
}

func (p *parser) parseName() js_ast.LocName {
	if !p.isIdentifier() {
		p.lexer.Expect(js_lexer.TIdentifier)
	}
	name := js_ast.LocName{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
	p.lexer.Next()
	return name
}

func (p *parser) parseExpr(level js_ast.L) js_ast.Expr {
	return p.parseExprWithFlags(level, 0)
}

func (p *parser) parseExprWithFlags(level js_ast.L, flags exprFlag) js_ast.Expr {
	expr := p.parsePrefix(level, flags)
	return p.parseSuffix(expr, level, flags)
}

func (p *parser) parseStringLiteral() js_ast.Expr {
	value := js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EString{Value: p.lexer.StringLiteral}}
	p.lexer.Next()
	return value
}

func (p *parser) parseNumericLiteral() js_ast.Expr {
	loc := p.lexer.Loc()
	var value js_ast.Expr
	if p.lexer.IsInteger {
		value = js_ast.Expr{Loc: loc, Data: &js_ast.EInteger{Value: p.lexer.Integer}}
	} else {
		value = js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: p.lexer.Number, Raw: p.lexer.Raw()}}
	}
	p.lexer.Next()
	return value
}

func (p *parser) parsePrefix(level js_ast.L, flags exprFlag) js_ast.Expr {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TOpenParen:
		p.lexer.Next()

		// Allow "in" inside parentheses
		value := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EParen{Value: value}}

	case js_lexer.TFalse:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: false}}

	case js_lexer.TTrue:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: true}}

	case js_lexer.TNull:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENull{}}

	case js_lexer.TThis:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}

	case js_lexer.TIdentifier, js_lexer.TEscapedKeyword:
		name := p.lexer.Identifier
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name}}

	case js_lexer.TStringLiteral:
		return p.parseStringLiteral()

	case js_lexer.TNumericLiteral:
		return p.parseNumericLiteral()

	case js_lexer.TSlash, js_lexer.TSlashEquals:
		p.lexer.ScanRegExp()
		value := p.lexer.Raw()
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ERegExp{Value: value}}

	case js_lexer.TVoid:
		p.lexer.Next()
		value := p.parseExprWithFlags(js_ast.LPrefix-1, flags)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpVoid, Value: value}}

	case js_lexer.TTypeof:
		p.lexer.Next()
		value := p.parseExprWithFlags(js_ast.LPrefix-1, flags)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpTypeof, Value: value}}

	case js_lexer.TDelete:
		p.lexer.Next()
		value := p.parseExprWithFlags(js_ast.LPrefix-1, flags)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpDelete, Value: value}}

	case js_lexer.TPlus:
		p.lexer.Next()
		value := p.parseExprWithFlags(js_ast.LPrefix-1, flags)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPos, Value: value}}

	case js_lexer.TMinus:
		p.lexer.Next()
		value := p.parseExprWithFlags(js_ast.LPrefix-1, flags)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNeg, Value: value}}

	case js_lexer.TTilde:
		p.lexer.Next()
		value := p.parseExprWithFlags(js_ast.LPrefix-1, flags)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpCpl, Value: value}}

	case js_lexer.TExclamation:
		p.lexer.Next()
		value := p.parseExprWithFlags(js_ast.LPrefix-1, flags)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNot, Value: value}}

	case js_lexer.TMinusMinus:
		p.lexer.Next()
		value := p.parseExprWithFlags(js_ast.LPrefix-1, flags)
		p.checkAssignTarget(value)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreDec, Value: value}}

	case js_lexer.TPlusPlus:
		p.lexer.Next()
		value := p.parseExprWithFlags(js_ast.LPrefix-1, flags)
		p.checkAssignTarget(value)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreInc, Value: value}}

	case js_lexer.TFunction:
		return p.parseFnExpr(loc)

	case js_lexer.TNew:
		p.lexer.Next()

		// The constructor is a member expression. The first argument list
		// belongs to the "new" and not to a call of the constructor.
		target := p.parseExprWithFlags(js_ast.LMember, flags|exprFlagForbidCall)
		var args []js_ast.Expr

		if p.lexer.Token == js_lexer.TOpenParen {
			args = p.parseCallArgs()
		}

		return js_ast.Expr{Loc: loc, Data: &js_ast.ENew{Target: target, Args: args}}

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		items := []js_ast.Expr{}

		for p.lexer.Token != js_lexer.TCloseBracket {
			switch p.lexer.Token {
			case js_lexer.TComma:
				items = append(items, js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EMissing{}})

			default:
				items = append(items, p.parseExpr(js_ast.LComma))
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}

		p.lexer.Expect(js_lexer.TCloseBracket)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EArray{Items: items}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		properties := []js_ast.Property{}

		for p.lexer.Token != js_lexer.TCloseBrace {
			properties = append(properties, p.parseProperty())

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}

		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: properties}}

	default:
		p.lexer.Unexpected()
		return js_ast.Expr{}
	}
}

func (p *parser) parsePropertyKey() js_ast.Expr {
	switch p.lexer.Token {
	case js_lexer.TStringLiteral:
		return p.parseStringLiteral()

	case js_lexer.TNumericLiteral:
		return p.parseNumericLiteral()

	default:
		if !p.lexer.IsIdentifierOrKeyword() {
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		key := js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EString{Value: helpers.StringToUTF16(p.lexer.Identifier)}}
		p.lexer.Next()
		return key
	}
}

func (p *parser) parseProperty() js_ast.Property {
	kind := js_ast.PropertyNormal

	// "{ get x() {} }" and "{ set x(v) {} }"
	if p.lexer.Token == js_lexer.TIdentifier && (p.lexer.Identifier == "get" || p.lexer.Identifier == "set") {
		mark := p.lexer.Mark()
		isGet := p.lexer.Identifier == "get"
		p.lexer.Next()

		switch p.lexer.Token {
		case js_lexer.TColon, js_lexer.TComma, js_lexer.TCloseBrace:
			// This is a property named "get" or "set"
			p.lexer.Rewind(mark)

		default:
			if isGet {
				kind = js_ast.PropertyGet
			} else {
				kind = js_ast.PropertySet
			}
		}
	}

	key := p.parsePropertyKey()

	if kind != js_ast.PropertyNormal {
		fn := p.parseFn(nil, false)
		if kind == js_ast.PropertyGet && len(fn.Args) != 0 {
			p.syntaxError(logger.Range{Loc: fn.Args[0].Loc}, "Getter functions must have no arguments")
		}
		if kind == js_ast.PropertySet && len(fn.Args) != 1 {
			p.syntaxError(logger.Range{Loc: key.Loc}, "Setter functions must have exactly one argument")
		}
		return js_ast.Property{Kind: kind, Key: key, Value: js_ast.Expr{Loc: key.Loc, Data: &js_ast.EFunction{Fn: fn}}}
	}

	p.lexer.Expect(js_lexer.TColon)
	value := p.parseExpr(js_ast.LComma)
	return js_ast.Property{Kind: kind, Key: key, Value: value}
}

func (p *parser) checkAssignTarget(expr js_ast.Expr) {
	if !js_ast.IsAssignTarget(expr) {
		p.syntaxError(logger.Range{Loc: expr.Loc}, "Invalid assignment target")
	}
}

func (p *parser) parseBinary(left js_ast.Expr, op js_ast.OpCode, flags exprFlag) js_ast.Expr {
	p.lexer.Next()

	// Left-associative operators parse their right operand one level higher
	right := p.parseExprWithFlags(js_ast.OpTable[op].Level, flags&exprFlagForbidIn)
	return js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: op, Left: left, Right: right}}
}

func (p *parser) parseAssign(left js_ast.Expr, op js_ast.OpCode, flags exprFlag) js_ast.Expr {
	p.checkAssignTarget(left)
	p.lexer.Next()
	right := p.parseExprWithFlags(js_ast.LAssign-1, flags&exprFlagForbidIn)
	return js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: op, Left: left, Right: right}}
}

func (p *parser) parseSuffix(left js_ast.Expr, level js_ast.L, flags exprFlag) js_ast.Expr {
	for {
		switch p.lexer.Token {
		case js_lexer.TDot:
			p.lexer.Next()
			if !p.lexer.IsIdentifierOrKeyword() {
				p.lexer.Expect(js_lexer.TIdentifier)
			}
			name := p.lexer.Identifier
			nameLoc := p.lexer.Loc()
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{Target: left, Name: name, NameLoc: nameLoc}}

		case js_lexer.TOpenBracket:
			p.lexer.Next()

			// Allow "in" inside the brackets
			index := p.parseExpr(js_ast.LLowest)

			p.lexer.Expect(js_lexer.TCloseBracket)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIndex{Target: left, Index: index}}

		case js_lexer.TOpenParen:
			if level >= js_ast.LCall || (flags&exprFlagForbidCall) != 0 {
				return left
			}
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{Target: left, Args: p.parseCallArgs()}}

		case js_lexer.TQuestion:
			if level >= js_ast.LConditional {
				return left
			}
			p.lexer.Next()

			// Allow "in" in between "?" and ":"
			yes := p.parseExpr(js_ast.LComma)

			p.lexer.Expect(js_lexer.TColon)
			no := p.parseExprWithFlags(js_ast.LComma, flags&exprFlagForbidIn)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIf{Test: left, Yes: yes, No: no}}

		case js_lexer.TMinusMinus:
			if p.lexer.HasNewlineBefore || level >= js_ast.LPostfix {
				return left
			}
			p.checkAssignTarget(left)
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostDec, Value: left}}

		case js_lexer.TPlusPlus:
			if p.lexer.HasNewlineBefore || level >= js_ast.LPostfix {
				return left
			}
			p.checkAssignTarget(left)
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostInc, Value: left}}

		case js_lexer.TComma:
			if level >= js_ast.LComma {
				return left
			}
			p.lexer.Next()
			right := p.parseExprWithFlags(js_ast.LComma, flags&exprFlagForbidIn)
			if comma, ok := left.Data.(*js_ast.EComma); ok {
				comma.Values = append(comma.Values, right)
			} else {
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EComma{Values: []js_ast.Expr{left, right}}}
			}

		case js_lexer.TIn:
			if level >= js_ast.LCompare || (flags&exprFlagForbidIn) != 0 {
				return left
			}
			left = p.parseBinary(left, js_ast.BinOpIn, flags)

		default:
			op, ok := binaryOps[p.lexer.Token]
			if !ok {
				return left
			}

			if op.BinaryAssignTarget() != js_ast.AssignTargetNone {
				if level >= js_ast.LAssign {
					return left
				}
				left = p.parseAssign(left, op, flags)
				continue
			}

			if level >= js_ast.OpTable[op].Level {
				return left
			}
			left = p.parseBinary(left, op, flags)
		}
	}
}

var binaryOps = map[js_lexer.T]js_ast.OpCode{
	js_lexer.TPlus:                              js_ast.BinOpAdd,
	js_lexer.TMinus:                             js_ast.BinOpSub,
	js_lexer.TAsterisk:                          js_ast.BinOpMul,
	js_lexer.TSlash:                             js_ast.BinOpDiv,
	js_lexer.TPercent:                           js_ast.BinOpRem,
	js_lexer.TLessThan:                          js_ast.BinOpLt,
	js_lexer.TLessThanEquals:                    js_ast.BinOpLe,
	js_lexer.TGreaterThan:                       js_ast.BinOpGt,
	js_lexer.TGreaterThanEquals:                 js_ast.BinOpGe,
	js_lexer.TInstanceof:                        js_ast.BinOpInstanceof,
	js_lexer.TLessThanLessThan:                  js_ast.BinOpShl,
	js_lexer.TGreaterThanGreaterThan:            js_ast.BinOpShr,
	js_lexer.TGreaterThanGreaterThanGreaterThan: js_ast.BinOpUShr,
	js_lexer.TEqualsEquals:                      js_ast.BinOpLooseEq,
	js_lexer.TExclamationEquals:                 js_ast.BinOpLooseNe,
	js_lexer.TEqualsEqualsEquals:                js_ast.BinOpStrictEq,
	js_lexer.TExclamationEqualsEquals:           js_ast.BinOpStrictNe,
	js_lexer.TBarBar:                            js_ast.BinOpLogicalOr,
	js_lexer.TAmpersandAmpersand:                js_ast.BinOpLogicalAnd,
	js_lexer.TBar:                               js_ast.BinOpBitwiseOr,
	js_lexer.TAmpersand:                         js_ast.BinOpBitwiseAnd,
	js_lexer.TCaret:                             js_ast.BinOpBitwiseXor,

	js_lexer.TEquals:                                  js_ast.BinOpAssign,
	js_lexer.TPlusEquals:                              js_ast.BinOpAddAssign,
	js_lexer.TMinusEquals:                             js_ast.BinOpSubAssign,
	js_lexer.TAsteriskEquals:                          js_ast.BinOpMulAssign,
	js_lexer.TSlashEquals:                             js_ast.BinOpDivAssign,
	js_lexer.TPercentEquals:                           js_ast.BinOpRemAssign,
	js_lexer.TLessThanLessThanEquals:                  js_ast.BinOpShlAssign,
	js_lexer.TGreaterThanGreaterThanEquals:            js_ast.BinOpShrAssign,
	js_lexer.TGreaterThanGreaterThanGreaterThanEquals: js_ast.BinOpUShrAssign,
	js_lexer.TBarEquals:                               js_ast.BinOpBitwiseOrAssign,
	js_lexer.TAmpersandEquals:                         js_ast.BinOpBitwiseAndAssign,
	js_lexer.TCaretEquals:                             js_ast.BinOpBitwiseXorAssign,
}

func (p *parser) parseCallArgs() []js_ast.Expr {
	// Allow "in" inside call arguments
	p.lexer.Expect(js_lexer.TOpenParen)
	args := []js_ast.Expr{}

	for p.lexer.Token != js_lexer.TCloseParen {
		args = append(args, p.parseExpr(js_ast.LComma))
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TCloseParen)
	return args
}

func (p *parser) parseFnExpr(loc logger.Loc) js_ast.Expr {
	p.lexer.Next()
	var name *js_ast.LocName

	// The name is optional
	if p.isIdentifier() {
		value := p.parseName()
		name = &value
	}

	fn := p.parseFn(name, false)
	return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}
}

func (p *parser) parseFn(name *js_ast.LocName, isDecl bool) js_ast.Fn {
	fn := js_ast.Fn{
		NameOrNil: name,
		IsDecl:    isDecl,
		ScopeID:   p.newScopeID(),
	}

	p.lexer.Expect(js_lexer.TOpenParen)
	for p.lexer.Token != js_lexer.TCloseParen {
		arg := p.parseName()
		fn.Args = append(fn.Args, js_ast.Arg{Loc: arg.Loc, Name: arg.Name})

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}
	p.lexer.Expect(js_lexer.TCloseParen)

	fn.Body = p.parseFnBody()
	return fn
}

func (p *parser) parseFnBody() js_ast.FnBody {
	oldFnData := p.fnData
	p.fnData = fnDataParse{isInsideFn: true}

	loc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TOpenBrace)
	stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace)
	p.lexer.Next()

	p.fnData = oldFnData
	return js_ast.FnBody{Loc: loc, Stmts: stmts}
}

func (p *parser) parseStmtsUpTo(end js_lexer.T) []js_ast.Stmt {
	stmts := []js_ast.Stmt{}

	for p.lexer.Token != end {
		// Only a function body or a block can end with "}"
		if p.lexer.Token == js_lexer.TEndOfFile {
			p.lexer.Expected(end)
		}
		stmts = append(stmts, p.parseStmt())
	}

	return stmts
}

func (p *parser) parseDecls(flags exprFlag) []js_ast.Decl {
	decls := []js_ast.Decl{}

	for {
		decl := js_ast.Decl{Binding: p.parseName()}

		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			decl.ValueOrNil = p.parseExprWithFlags(js_ast.LComma, flags)
		}

		decls = append(decls, decl)

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	return decls
}

func (p *parser) parseBlockBody() ([]js_ast.Stmt, logger.Loc) {
	loc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TOpenBrace)
	stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace)
	p.lexer.Next()
	return stmts, loc
}

func (p *parser) parseLoopBody() js_ast.Stmt {
	p.fnData.loopDepth++
	body := p.parseStmt()
	p.fnData.loopDepth--
	return body
}

func (p *parser) parseParenExpr() js_ast.Expr {
	p.lexer.Expect(js_lexer.TOpenParen)
	value := p.parseExpr(js_ast.LLowest)
	p.lexer.Expect(js_lexer.TCloseParen)
	return value
}

func (p *parser) hasLabel(name string) bool {
	for _, label := range p.fnData.labels {
		if label == name {
			return true
		}
	}
	return false
}

func (p *parser) parseJumpLabel(keyword string, isAllowed bool, keywordRange logger.Range) *js_ast.LocName {
	// A label must be on the same line as the keyword
	if p.isIdentifier() && !p.lexer.HasNewlineBefore {
		name := p.parseName()
		if !p.hasLabel(name.Name) {
			p.syntaxError(logger.Range{Loc: name.Loc, Len: int32(len(name.Name))},
				fmt.Sprintf("There is no containing label named %q", name.Name))
		}
		return &name
	}

	if !isAllowed {
		p.syntaxError(keywordRange, fmt.Sprintf("Cannot use %q here", keyword))
	}
	return nil
}

func (p *parser) parseStmt() js_ast.Stmt {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TSemicolon:
		p.lexer.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}

	case js_lexer.TFunction:
		p.lexer.Next()
		name := p.parseName()
		fn := p.parseFn(&name, true)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SFunction{Fn: fn}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace)
		closeBraceLoc := p.lexer.Loc()
		p.lexer.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBlock{Stmts: stmts, CloseBraceLoc: closeBraceLoc}}

	case js_lexer.TVar:
		p.lexer.Next()
		decls := p.parseDecls(0)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SVar{Decls: decls}}

	case js_lexer.TIf:
		p.lexer.Next()
		test := p.parseParenExpr()
		yes := p.parseStmt()
		var noOrNil js_ast.Stmt
		if p.lexer.Token == js_lexer.TElse {
			p.lexer.Next()
			noOrNil = p.parseStmt()
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SIf{Test: test, Yes: yes, NoOrNil: noOrNil}}

	case js_lexer.TDo:
		p.lexer.Next()
		body := p.parseLoopBody()
		p.lexer.Expect(js_lexer.TWhile)
		test := p.parseParenExpr()

		// This is a weird corner case where automatic semicolon insertion applies
		// even without a newline present
		if p.lexer.Token == js_lexer.TSemicolon {
			p.lexer.Next()
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDoWhile{Body: body, Test: test}}

	case js_lexer.TWhile:
		p.lexer.Next()
		test := p.parseParenExpr()
		body := p.parseLoopBody()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SWhile{Test: test, Body: body}}

	case js_lexer.TWith:
		p.lexer.Next()
		value := p.parseParenExpr()
		bodyLoc := p.lexer.Loc()
		body := p.parseStmt()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SWith{Value: value, BodyLoc: bodyLoc, Body: body}}

	case js_lexer.TSwitch:
		return p.parseSwitchStmt(loc)

	case js_lexer.TTry:
		return p.parseTryStmt(loc)

	case js_lexer.TFor:
		return p.parseForStmt(loc)

	case js_lexer.TReturn:
		if !p.fnData.isInsideFn {
			p.syntaxError(p.lexer.Range(), "A return statement cannot be used here")
		}
		p.lexer.Next()
		var value js_ast.Expr
		if p.lexer.Token != js_lexer.TSemicolon && !p.lexer.CanInsertSemicolon() {
			value = p.parseExpr(js_ast.LLowest)
		}
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SReturn{ValueOrNil: value}}

	case js_lexer.TThrow:
		p.lexer.Next()
		if p.lexer.HasNewlineBefore {
			p.syntaxError(logger.Range{Loc: logger.Loc{Start: loc.Start + 5}},
				"Unexpected newline after \"throw\"")
		}
		expr := p.parseExpr(js_ast.LLowest)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SThrow{Value: expr}}

	case js_lexer.TBreak:
		keywordRange := p.lexer.Range()
		p.lexer.Next()
		label := p.parseJumpLabel("break", p.fnData.loopDepth > 0 || p.fnData.switchDepth > 0, keywordRange)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBreak{Label: label}}

	case js_lexer.TContinue:
		keywordRange := p.lexer.Range()
		p.lexer.Next()
		if p.fnData.loopDepth == 0 {
			p.syntaxError(keywordRange, "Cannot use \"continue\" here")
		}
		label := p.parseJumpLabel("continue", true, keywordRange)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SContinue{Label: label}}

	case js_lexer.TDebugger:
		p.lexer.Next()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDebugger{}}

	case js_lexer.TIdentifier, js_lexer.TEscapedKeyword:
		// An identifier followed by a colon is a label. Anything else starts an
		// expression, so rewind and parse the identifier again as part of it.
		mark := p.lexer.Mark()
		name := p.parseName()
		if p.lexer.Token == js_lexer.TColon {
			p.lexer.Next()
			if p.hasLabel(name.Name) {
				p.syntaxError(logger.Range{Loc: name.Loc, Len: int32(len(name.Name))},
					fmt.Sprintf("Duplicate label %q", name.Name))
			}
			p.fnData.labels = append(p.fnData.labels, name.Name)
			stmt := p.parseStmt()
			p.fnData.labels = p.fnData.labels[:len(p.fnData.labels)-1]
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SLabel{Name: name, Stmt: stmt}}
		}
		p.lexer.Rewind(mark)
	}

	expr := p.parseExpr(js_ast.LLowest)
	p.lexer.ExpectOrInsertSemicolon()
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr}}
}

func (p *parser) parseSwitchStmt(loc logger.Loc) js_ast.Stmt {
	p.lexer.Next()
	test := p.parseParenExpr()

	bodyLoc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TOpenBrace)
	cases := []js_ast.Case{}
	foundDefault := false

	p.fnData.switchDepth++
	for p.lexer.Token != js_lexer.TCloseBrace {
		var value js_ast.Expr
		body := []js_ast.Stmt{}
		caseLoc := p.lexer.Loc()

		switch p.lexer.Token {
		case js_lexer.TDefault:
			if foundDefault {
				p.syntaxError(p.lexer.Range(), "Multiple default clauses are not allowed")
			}
			foundDefault = true
			p.lexer.Next()
			p.lexer.Expect(js_lexer.TColon)

		case js_lexer.TCase:
			p.lexer.Next()
			value = p.parseExpr(js_ast.LLowest)
			p.lexer.Expect(js_lexer.TColon)

		default:
			// Every statement in a switch body must follow a clause
			p.lexer.ExpectedString("\"case\" or \"default\"")
		}

	caseBody:
		for {
			switch p.lexer.Token {
			case js_lexer.TCloseBrace, js_lexer.TCase, js_lexer.TDefault:
				break caseBody

			case js_lexer.TEndOfFile:
				p.lexer.Expected(js_lexer.TCloseBrace)

			default:
				body = append(body, p.parseStmt())
			}
		}

		cases = append(cases, js_ast.Case{Loc: caseLoc, ValueOrNil: value, Body: body})
	}
	p.fnData.switchDepth--

	closeBraceLoc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TCloseBrace)
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SSwitch{
		Test:          test,
		BodyLoc:       bodyLoc,
		Cases:         cases,
		CloseBraceLoc: closeBraceLoc,
	}}
}

func (p *parser) parseTryStmt(loc logger.Loc) js_ast.Stmt {
	p.lexer.Next()
	body, bodyLoc := p.parseBlockBody()
	var catches []js_ast.Catch
	var finally *js_ast.Finally

	// "catch (e if e instanceof TypeError) {} catch (e) {}"
	for p.lexer.Token == js_lexer.TCatch {
		catchLoc := p.lexer.Loc()
		p.lexer.Next()
		scopeID := p.newScopeID()

		p.lexer.Expect(js_lexer.TOpenParen)
		binding := p.parseName()
		var guard js_ast.Expr
		if p.lexer.Token == js_lexer.TIf {
			p.lexer.Next()
			guard = p.parseExpr(js_ast.LLowest)
		}
		p.lexer.Expect(js_lexer.TCloseParen)

		catchBody, catchBodyLoc := p.parseBlockBody()
		catches = append(catches, js_ast.Catch{
			Loc:        catchLoc,
			Binding:    binding,
			GuardOrNil: guard,
			BodyLoc:    catchBodyLoc,
			Body:       catchBody,
			ScopeID:    scopeID,
		})
	}

	if p.lexer.Token == js_lexer.TFinally || catches == nil {
		finallyLoc := p.lexer.Loc()
		p.lexer.Expect(js_lexer.TFinally)
		stmts, _ := p.parseBlockBody()
		finally = &js_ast.Finally{Loc: finallyLoc, Stmts: stmts}
	}

	return js_ast.Stmt{Loc: loc, Data: &js_ast.STry{
		BodyLoc: bodyLoc,
		Body:    body,
		Catches: catches,
		Finally: finally,
	}}
}

func (p *parser) parseForStmt(loc logger.Loc) js_ast.Stmt {
	p.lexer.Next()
	p.lexer.Expect(js_lexer.TOpenParen)

	var initOrNil js_ast.Stmt
	var testOrNil js_ast.Expr
	var updateOrNil js_ast.Expr

	// "in" expressions aren't allowed here
	initLoc := p.lexer.Loc()
	switch p.lexer.Token {
	case js_lexer.TVar:
		p.lexer.Next()
		decls := p.parseDecls(exprFlagForbidIn)
		initOrNil = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SVar{Decls: decls}}

	case js_lexer.TSemicolon:

	default:
		expr := p.parseExprWithFlags(js_ast.LLowest, exprFlagForbidIn)
		initOrNil = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SExpr{Value: expr}}
	}

	// Detect for-in loops
	if p.lexer.Token == js_lexer.TIn {
		p.checkForInInit(initOrNil)
		p.lexer.Next()
		value := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		body := p.parseLoopBody()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SForIn{Init: initOrNil, Value: value, Body: body}}
	}

	p.lexer.Expect(js_lexer.TSemicolon)

	if p.lexer.Token != js_lexer.TSemicolon {
		testOrNil = p.parseExpr(js_ast.LLowest)
	}

	p.lexer.Expect(js_lexer.TSemicolon)

	if p.lexer.Token != js_lexer.TCloseParen {
		updateOrNil = p.parseExpr(js_ast.LLowest)
	}

	p.lexer.Expect(js_lexer.TCloseParen)
	body := p.parseLoopBody()
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SFor{
		InitOrNil:   initOrNil,
		TestOrNil:   testOrNil,
		UpdateOrNil: updateOrNil,
		Body:        body,
	}}
}

// The left side of a for-in loop is either a single declaration without an
// initializer or a single assignable expression
func (p *parser) checkForInInit(init js_ast.Stmt) {
	switch s := init.Data.(type) {
	case *js_ast.SVar:
		if len(s.Decls) != 1 {
			p.syntaxError(logger.Range{Loc: s.Decls[1].Binding.Loc}, "Only one variable can be declared in a for-in loop")
		}
		if decl := s.Decls[0]; decl.ValueOrNil.Data != nil {
			p.syntaxError(logger.Range{Loc: decl.ValueOrNil.Loc}, "For-in loop variables cannot have an initializer")
		}

	case *js_ast.SExpr:
		if !js_ast.IsAssignTarget(s.Value) {
			p.syntaxError(logger.Range{Loc: s.Value.Loc}, "Invalid assignment target in for-in loop")
		}

	default:
		p.lexer.Unexpected()
	}
}
