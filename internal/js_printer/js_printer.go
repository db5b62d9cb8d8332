package js_printer

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jsshrink/jsshrink/internal/config"
	"github.com/jsshrink/jsshrink/internal/helpers"
	"github.com/jsshrink/jsshrink/internal/js_ast"
	"github.com/jsshrink/jsshrink/internal/js_lexer"
	"github.com/jsshrink/jsshrink/internal/js_scope"
	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/internal/renamer"
)

var positiveInfinity = math.Inf(1)
var negativeInfinity = math.Inf(-1)

const hexChars = "0123456789ABCDEF"
const lastASCII = 0x7E
const firstHighSurrogate = 0xD800
const lastHighSurrogate = 0xDBFF
const firstLowSurrogate = 0xDC00
const lastLowSurrogate = 0xDFFF

func (p *printer) printUnquotedUTF16(text []uint16, quote rune) {
	temp := make([]byte, utf8.UTFMax)
	js := p.js
	i := 0
	n := len(text)

	for i < n {
		c := text[i]
		i++

		switch c {
		// Special-case the null character since it may mess with code written in C
		// that treats null characters as the end of the string.
		case '\x00':
			// We don't want "\x001" to be written as "\01"
			if i < n && text[i] >= '0' && text[i] <= '9' {
				js = append(js, "\\x00"...)
			} else {
				js = append(js, "\\0"...)
			}

		// Special-case the bell character since it may cause dumping this file to
		// the terminal to make a sound, which is undesirable
		case '\x07':
			js = append(js, "\\x07"...)

		case '\b':
			js = append(js, "\\b"...)

		case '\f':
			js = append(js, "\\f"...)

		case '\n':
			js = append(js, "\\n"...)

		case '\r':
			js = append(js, "\\r"...)

		case '\v':
			js = append(js, "\\v"...)

		case '\x1B':
			js = append(js, "\\x1B"...)

		case '\\':
			js = append(js, "\\\\"...)

		case '/':
			// Avoid generating the sequence "</script" in JS code
			if i >= 2 && text[i-2] == '<' && i+6 <= len(text) {
				script := "script"
				matches := true
				for j := 0; j < 6; j++ {
					a := text[i+j]
					b := uint16(script[j])
					if a >= 'A' && a <= 'Z' {
						a += 'a' - 'A'
					}
					if a != b {
						matches = false
						break
					}
				}
				if matches {
					js = append(js, '\\')
				}
			}
			js = append(js, '/')

		case '\'':
			if quote == '\'' {
				js = append(js, '\\')
			}
			js = append(js, '\'')

		case '"':
			if quote == '"' {
				js = append(js, '\\')
			}
			js = append(js, '"')

		case '\u2028':
			js = append(js, "\\u2028"...)

		case '\u2029':
			js = append(js, "\\u2029"...)

		case '\uFEFF':
			js = append(js, "\\uFEFF"...)

		default:
			switch {
			// Common case: just append a single byte
			case c <= lastASCII:
				js = append(js, byte(c))

			// Is this a high surrogate?
			case c >= firstHighSurrogate && c <= lastHighSurrogate:
				// Is there a next character?
				if i < n {
					c2 := text[i]

					// Is it a low surrogate?
					if c2 >= firstLowSurrogate && c2 <= lastLowSurrogate {
						r := (rune(c) << 10) + rune(c2) + (0x10000 - (firstHighSurrogate << 10) - firstLowSurrogate)
						i++
						width := utf8.EncodeRune(temp, r)
						js = append(js, temp[:width]...)
						continue
					}
				}

				// Write an unpaired high surrogate
				js = append(js, '\\', 'u', hexChars[c>>12], hexChars[(c>>8)&15], hexChars[(c>>4)&15], hexChars[c&15])

			// Is this an unpaired low surrogate?
			case c >= firstLowSurrogate && c <= lastLowSurrogate:
				js = append(js, '\\', 'u', hexChars[c>>12], hexChars[(c>>8)&15], hexChars[(c>>4)&15], hexChars[c&15])

			// Otherwise, just encode to UTF-8
			default:
				width := utf8.EncodeRune(temp, rune(c))
				js = append(js, temp[:width]...)
			}
		}
	}

	p.js = js
}

type printer struct {
	scopes             *js_scope.Tree
	allocator          *renamer.Allocator
	kept               map[*js_scope.Symbol]bool
	js                 []byte
	options            Options
	stmtStart          int
	prevOpEnd          int
	prevRegExpEnd      int
	needSpaceBeforeDot int
	intToBytesBuffer   [64]byte
	needsSemicolon     bool
	prevOp             js_ast.OpCode
}

func (p *printer) print(text string) {
	p.js = append(p.js, text...)
}

// This is the same as "print(string(bytes))" without any unnecessary temporary
// allocations
func (p *printer) printBytes(bytes []byte) {
	p.js = append(p.js, bytes...)
}

func (p *printer) printIndent() {
	if !p.options.MinifyWhitespace {
		for i := 0; i < p.options.Indent; i++ {
			p.print("  ")
		}
	}
}

// Prints the name the innermost declaration of this identifier was given
func (p *printer) printIdentifier(name string) {
	p.printSpaceBeforeIdentifier()
	p.print(p.allocator.NameFor(name))
}

////////////////////////////////////////////////////////////////////////////////
// Renaming

// Decides which locals keep their names and claims those names along with
// everything else that must never be generated. This must see every scope
// before the first one is entered since a name generated early could
// otherwise collide with a name that is kept later.
func (p *printer) claimNames() {
	policy := p.options.Policy
	if policy == nil {
		policy = config.RenameAll{}
	}

	for _, name := range policy.ClaimedNames() {
		p.allocator.Claim(name)
	}

	// Free names refer to something outside of this file
	for _, name := range p.scopes.GlobalNames() {
		p.allocator.Claim(name)
	}

	for _, scope := range p.scopes.Scopes {
		for _, symbol := range scope.SortedLocals() {
			if !p.options.MinifyIdentifiers || scope.IsTainted() || symbol.IsPinned || !policy.IsNameRenameable(scope.Kind, scope.Path, symbol.Name) {
				p.kept[symbol] = true
				p.allocator.Claim(symbol.Name)
			}
		}
	}
}

func (p *printer) enterScope(id js_ast.ScopeID) *js_scope.Scope {
	scope := p.scopes.Scopes[id]
	locals := scope.SortedLocals()
	ranked := make([]renamer.RankedName, len(locals))
	for i, symbol := range locals {
		ranked[i] = renamer.RankedName{Name: symbol.Name, Rank: symbol.Rank, Keep: p.kept[symbol]}
	}
	p.allocator.EnterScope(ranked)
	return scope
}

func (p *printer) leaveScope() {
	p.allocator.LeaveScope()
}

// Describes how the locals of a scope were renamed
func (p *printer) printScopeComment(scope *js_scope.Scope) {
	if !p.options.SymbolDebug {
		return
	}

	sb := strings.Builder{}
	sb.WriteString("/* ")
	sb.WriteString(scope.Kind.String())
	if scope.Path != "" {
		sb.WriteString(" ")
		sb.WriteString(scope.Path)
	}
	sep := ": "
	if scope.IsTainted() {
		fmt.Fprintf(&sb, " (not renamed, %s)", scope.Taint)
	}
	for _, symbol := range scope.SortedLocals() {
		fmt.Fprintf(&sb, "%s%s -> %s [rank %d, count %d]", sep, symbol.Name, p.allocator.NameFor(symbol.Name), symbol.Rank, symbol.Count)
		sep = ", "
	}
	sb.WriteString(" */")

	p.printIndent()
	p.print(sb.String())
	p.printNewline()
}

////////////////////////////////////////////////////////////////////////////////
// Whitespace

func (p *printer) printSpace() {
	if !p.options.MinifyWhitespace {
		p.print(" ")
	}
}

func (p *printer) printNewline() {
	if !p.options.MinifyWhitespace {
		p.print("\n")
	}
}

// Starts a new line if the current one is already too long. This is only
// called where a line break can't change the meaning of the code.
func (p *printer) printNewlinePastLineLimit() bool {
	if p.options.LineLimit <= 0 {
		return false
	}
	lineStart := bytes.LastIndexByte(p.js, '\n') + 1
	if len(p.js)-lineStart < p.options.LineLimit {
		return false
	}
	p.print("\n")
	return true
}

func (p *printer) printComma() {
	p.print(",")
	if !p.printNewlinePastLineLimit() {
		p.printSpace()
	}
}

func (p *printer) printSpaceBeforeOperator(next js_ast.OpCode) {
	if p.prevOpEnd == len(p.js) {
		prev := p.prevOp

		// "+ + y" => "+ +y"
		// "+ ++ y" => "+ ++y"
		// "x + + y" => "x+ +y"
		// "x ++ + y" => "x+++y"
		// "x + ++ y" => "x+ ++y"
		// "-- >" => "-- >"
		// "< ! --" => "<! --"
		if ((prev == js_ast.BinOpAdd || prev == js_ast.UnOpPos) && (next == js_ast.BinOpAdd || next == js_ast.UnOpPos || next == js_ast.UnOpPreInc)) ||
			((prev == js_ast.BinOpSub || prev == js_ast.UnOpNeg) && (next == js_ast.BinOpSub || next == js_ast.UnOpNeg || next == js_ast.UnOpPreDec)) ||
			(prev == js_ast.UnOpPostDec && next == js_ast.BinOpGt) ||
			(prev == js_ast.UnOpNot && next == js_ast.UnOpPreDec && len(p.js) > 1 && p.js[len(p.js)-2] == '<') {
			p.print(" ")
		}
	}
}

func (p *printer) printSemicolonAfterStatement() {
	if !p.options.MinifyWhitespace {
		p.print(";\n")
	} else {
		p.needsSemicolon = true
	}
}

func (p *printer) printSemicolonIfNeeded() {
	if p.needsSemicolon {
		p.print(";")
		p.needsSemicolon = false
	}
}

func (p *printer) printSpaceBeforeIdentifier() {
	buffer := p.js
	n := len(buffer)
	if n > 0 && (js_lexer.IsIdentifierContinue(rune(buffer[n-1])) || n == p.prevRegExpEnd) {
		p.print(" ")
	}
}

////////////////////////////////////////////////////////////////////////////////
// Functions and properties

func (p *printer) printFnArgs(args []js_ast.Arg) {
	p.print("(")
	for i, arg := range args {
		if i != 0 {
			p.printComma()
		}
		p.printIdentifier(arg.Name)
	}
	p.print(")")
}

// The name of a function declaration belongs to the enclosing scope and must
// already have been printed. The name of a function expression belongs to the
// function itself.
func (p *printer) printFn(fn js_ast.Fn) {
	scope := p.enterScope(fn.ScopeID)
	if fn.NameOrNil != nil && !fn.IsDecl {
		p.printIdentifier(fn.NameOrNil.Name)
	}
	p.printFnArgs(fn.Args)
	p.printSpace()
	p.printBlock(fn.Body.Loc, fn.Body.Stmts, scope)
	p.leaveScope()
}

func (p *printer) printProperty(item js_ast.Property) {
	switch item.Kind {
	case js_ast.PropertyGet:
		p.printSpaceBeforeIdentifier()
		p.print("get ")
	case js_ast.PropertySet:
		p.printSpaceBeforeIdentifier()
		p.print("set ")
	}

	p.printPropertyKey(item.Key)

	if item.Kind != js_ast.PropertyNormal {
		if fn, ok := item.Value.Data.(*js_ast.EFunction); ok {
			p.printFn(fn.Fn)
			return
		}
		panic("Internal error")
	}

	p.print(":")
	p.printSpace()
	p.printExpr(item.Value, js_ast.LComma, 0)
}

func (p *printer) printPropertyKey(key js_ast.Expr) {
	switch k := key.Data.(type) {
	case *js_ast.EString:
		// Keywords stay quoted since older engines reject them as property names
		name := helpers.UTF16ToString(k.Value)
		if _, isKeyword := js_lexer.Keywords[name]; !isKeyword && js_lexer.IsIdentifier(name) {
			p.printSpaceBeforeIdentifier()
			p.print(name)
			return
		}
		p.printQuotedUTF16(k.Value)

	default:
		p.printExpr(key, js_ast.LLowest, 0)
	}
}

func (p *printer) printQuotedUTF16(data []uint16) {
	singleCost := 0
	doubleCost := 0

	for _, c := range data {
		switch c {
		case '\'':
			singleCost++
		case '"':
			doubleCost++
		}
	}

	c := "\""
	if doubleCost > singleCost {
		c = "'"
	}

	p.print(c)
	p.printUnquotedUTF16(data, rune(c[0]))
	p.print(c)
}

////////////////////////////////////////////////////////////////////////////////
// Expressions

type printExprFlags uint8

const (
	forbidCall printExprFlags = 1 << iota
	forbidIn
)

func (p *printer) printExpr(expr js_ast.Expr, level js_ast.L, flags printExprFlags) {
	switch e := expr.Data.(type) {
	case *js_ast.EMissing:

	case *js_ast.EParen:
		// Parentheses are added back where the precedence requires them
		p.printExpr(e.Value, level, flags)

	case *js_ast.ENull:
		p.printSpaceBeforeIdentifier()
		p.print("null")

	case *js_ast.EThis:
		p.printSpaceBeforeIdentifier()
		p.print("this")

	case *js_ast.ENew:
		wrap := level >= js_ast.LCall

		if wrap {
			p.print("(")
		}

		p.printSpaceBeforeIdentifier()
		p.print("new")
		p.printSpace()
		p.printExpr(e.Target, js_ast.LNew, forbidCall)

		// The argument list is always printed. "new a.b" and "new a.b()" mean
		// the same thing but only the second one survives being called.
		p.print("(")
		for i, arg := range e.Args {
			if i != 0 {
				p.printComma()
			}
			p.printExpr(arg, js_ast.LComma, 0)
		}
		p.print(")")

		if wrap {
			p.print(")")
		}

	case *js_ast.ECall:
		wrap := level >= js_ast.LNew || (flags&forbidCall) != 0

		if wrap {
			p.print("(")
		}

		p.printExpr(e.Target, js_ast.LPostfix, 0)
		p.print("(")
		for i, arg := range e.Args {
			if i != 0 {
				p.printComma()
			}
			p.printExpr(arg, js_ast.LComma, 0)
		}
		p.print(")")

		if wrap {
			p.print(")")
		}

	case *js_ast.EDot:
		p.printExpr(e.Target, js_ast.LPostfix, flags&forbidCall)

		// Keywords are indexed for the same reason they are quoted as keys
		if _, isKeyword := js_lexer.Keywords[e.Name]; isKeyword {
			p.print("[")
			p.printQuotedUTF16(helpers.StringToUTF16(e.Name))
			p.print("]")
			break
		}

		// "1.toString" is a syntax error, so print "1 .toString" instead
		if p.needSpaceBeforeDot == len(p.js) {
			p.print(" ")
		}
		p.print(".")
		p.print(e.Name)

	case *js_ast.EIndex:
		p.printExpr(e.Target, js_ast.LPostfix, flags&forbidCall)
		p.print("[")
		p.printExpr(e.Index, js_ast.LLowest, 0)
		p.print("]")

	case *js_ast.EIf:
		wrap := level >= js_ast.LConditional
		if wrap {
			p.print("(")
			flags &= ^forbidIn
		}
		p.printExpr(e.Test, js_ast.LConditional, flags&forbidIn)
		p.printSpace()
		p.print("?")
		p.printSpace()
		p.printExpr(e.Yes, js_ast.LComma, 0)
		p.printSpace()
		p.print(":")
		p.printSpace()
		p.printExpr(e.No, js_ast.LComma, flags&forbidIn)
		if wrap {
			p.print(")")
		}

	case *js_ast.EFunction:
		n := len(p.js)
		wrap := p.stmtStart == n

		if wrap {
			p.print("(")
		}

		p.printSpaceBeforeIdentifier()
		p.print("function")
		p.printFn(e.Fn)

		if wrap {
			p.print(")")
		}

	case *js_ast.EArray:
		p.print("[")
		for i, item := range e.Items {
			if i != 0 {
				p.printComma()
			}
			p.printExpr(item, js_ast.LComma, 0)

			// Make sure there's a comma after trailing missing items
			if _, ok := item.Data.(*js_ast.EMissing); ok && i == len(e.Items)-1 {
				p.print(",")
			}
		}
		p.print("]")

	case *js_ast.EObject:
		n := len(p.js)
		wrap := p.stmtStart == n

		if wrap {
			p.print("(")
		}

		p.print("{")
		if len(e.Properties) != 0 {
			p.options.Indent++
			for i, item := range e.Properties {
				if i != 0 {
					p.print(",")
				}
				if !p.printNewlinePastLineLimit() {
					p.printNewline()
				}
				p.printIndent()
				p.printProperty(item)
			}
			p.options.Indent--
			p.printNewline()
			p.printIndent()
		}
		p.print("}")

		if wrap {
			p.print(")")
		}

	case *js_ast.EBoolean:
		if p.options.MinifyWhitespace {
			if level >= js_ast.LPrefix {
				if e.Value {
					p.print("(!0)")
				} else {
					p.print("(!1)")
				}
			} else {
				if e.Value {
					p.print("!0")
				} else {
					p.print("!1")
				}
			}
		} else {
			p.printSpaceBeforeIdentifier()
			if e.Value {
				p.print("true")
			} else {
				p.print("false")
			}
		}

	case *js_ast.EString:
		p.printQuotedUTF16(e.Value)

	case *js_ast.ERegExp:
		buffer := p.js
		n := len(buffer)

		if n > 0 {
			// Avoid forming a single-line comment or "</script" sequence
			if last := buffer[n-1]; last == '/' || (last == '<' && len(e.Value) >= 7 && strings.EqualFold(e.Value[:7], "/script")) {
				p.print(" ")
			}
		}
		p.print(e.Value)

		// Need a space before the next identifier to avoid it turning into flags
		p.prevRegExpEnd = len(p.js)

	case *js_ast.EInteger:
		p.printInteger(e.Value, level)

	case *js_ast.ENumber:
		// Formatted output keeps literals exactly as they were written
		if e.Raw != "" && !p.options.MinifyWhitespace {
			p.printSpaceBeforeIdentifier()
			p.print(e.Raw)
			if !strings.ContainsAny(e.Raw, ".eExX") {
				p.needSpaceBeforeDot = len(p.js)
			}
			break
		}
		p.printNumber(e.Value, level)

	case *js_ast.EIdentifier:
		p.printIdentifier(e.Name)

	case *js_ast.EUnary:
		entry := js_ast.OpTable[e.Op]
		wrap := level >= entry.Level

		if wrap {
			p.print("(")
		}

		if !e.Op.IsPrefix() {
			p.printExpr(e.Value, js_ast.LPostfix-1, 0)
		}

		if entry.IsKeyword {
			p.printSpaceBeforeIdentifier()
			p.print(entry.Text)
			p.printSpace()
		} else {
			p.printSpaceBeforeOperator(e.Op)
			p.print(entry.Text)
			p.prevOp = e.Op
			p.prevOpEnd = len(p.js)
		}

		if e.Op.IsPrefix() {
			p.printExpr(e.Value, js_ast.LPrefix-1, 0)
		}

		if wrap {
			p.print(")")
		}

	case *js_ast.EBinary:
		entry := js_ast.OpTable[e.Op]
		wrap := level >= entry.Level || (e.Op == js_ast.BinOpIn && (flags&forbidIn) != 0)

		if wrap {
			p.print("(")
			flags &= ^forbidIn
		}

		leftLevel := entry.Level - 1
		rightLevel := entry.Level - 1

		if e.Op.IsRightAssociative() {
			leftLevel = entry.Level
		}
		if e.Op.IsLeftAssociative() {
			rightLevel = entry.Level
		}

		p.printExpr(e.Left, leftLevel, flags&forbidIn)
		p.printBinaryOp(e.Op)
		p.printExpr(e.Right, rightLevel, flags&forbidIn)

		if wrap {
			p.print(")")
		}

	case *js_ast.EChain:
		// Chains are printed like a run of left-associative operators
		wrap := level >= e.Level

		if wrap {
			p.print("(")
			flags &= ^forbidIn
		}

		for i, term := range e.Terms {
			if i == 0 {
				p.printExpr(term.Value, e.Level-1, flags&forbidIn)
				continue
			}
			p.printBinaryOp(term.Op)
			p.printExpr(term.Value, e.Level, flags&forbidIn)
		}

		if wrap {
			p.print(")")
		}

	case *js_ast.EComma:
		wrap := level >= js_ast.LComma

		if wrap {
			p.print("(")
			flags &= ^forbidIn
		}

		for i, value := range e.Values {
			if i != 0 {
				p.printComma()
			}
			p.printExpr(value, js_ast.LComma, flags&forbidIn)
		}

		if wrap {
			p.print(")")
		}

	default:
		panic(fmt.Sprintf("Unexpected expression of type %T", expr.Data))
	}
}

func (p *printer) printBinaryOp(op js_ast.OpCode) {
	entry := js_ast.OpTable[op]

	p.printSpace()
	if entry.IsKeyword {
		p.printSpaceBeforeIdentifier()
		p.print(entry.Text)
	} else {
		// "/a/ / b" must not turn into a single-line comment
		if n := len(p.js); n > 0 && p.js[n-1] == '/' && entry.Text[0] == '/' {
			p.print(" ")
		}
		p.printSpaceBeforeOperator(op)
		p.print(entry.Text)
		p.prevOp = op
		p.prevOpEnd = len(p.js)
	}
	p.printSpace()
}

func (p *printer) printInteger(value int64, level js_ast.L) {
	if value >= 0 {
		p.printSpaceBeforeIdentifier()
		p.printNonNegativeInteger(value)
	} else if level >= js_ast.LPrefix {
		p.print("(-")
		p.printNonNegativeInteger(-value)
		p.print(")")
	} else {
		p.printSpaceBeforeOperator(js_ast.UnOpNeg)
		p.print("-")
		p.printNonNegativeInteger(-value)
	}
}

func (p *printer) printNonNegativeInteger(value int64) {
	// Integers are exact doubles, so the shortened float form means the same
	if p.options.MinifyWhitespace {
		p.printNonNegativeFloat(float64(value))
		return
	}
	p.printBytes(strconv.AppendInt(p.intToBytesBuffer[:0], value, 10))
	p.needSpaceBeforeDot = len(p.js)
}

func (p *printer) printNumber(value float64, level js_ast.L) {
	absValue := math.Abs(value)

	if value != value {
		// "NaN" is an identifier that a local could shadow
		wrap := level >= js_ast.LMultiply
		if wrap {
			p.print("(")
		}
		p.printSpaceBeforeIdentifier()
		if p.options.MinifyWhitespace {
			p.print("0/0")
		} else {
			p.print("0 / 0")
		}
		if wrap {
			p.print(")")
		}
	} else if value == positiveInfinity || value == negativeInfinity {
		wrap := level >= js_ast.LMultiply ||
			(value == negativeInfinity && level >= js_ast.LPrefix)
		if wrap {
			p.print("(")
		}
		if value == negativeInfinity {
			p.printSpaceBeforeOperator(js_ast.UnOpNeg)
			p.print("-")
		} else {
			p.printSpaceBeforeIdentifier()
		}
		if p.options.MinifyWhitespace {
			p.print("1/0")
		} else {
			p.print("1 / 0")
		}
		if wrap {
			p.print(")")
		}
	} else {
		if !math.Signbit(value) {
			p.printSpaceBeforeIdentifier()
			p.printNonNegativeFloat(absValue)
		} else if level >= js_ast.LPrefix {
			// Expressions such as "(-1).toString" need to wrap negative numbers.
			// Instead of testing for "value < 0" we test for "signbit(value)" and
			// "!isNaN(value)" because we need this to be true for "-0" and "-0 < 0"
			// is false.
			p.print("(-")
			p.printNonNegativeFloat(absValue)
			p.print(")")
		} else {
			p.printSpaceBeforeOperator(js_ast.UnOpNeg)
			p.print("-")
			p.printNonNegativeFloat(absValue)
		}
	}
}

// Convert an integer to a byte slice without any allocations
func (p *printer) smallIntToBytes(n int) []byte {
	wasNegative := n < 0
	if wasNegative {
		// This assumes that -math.MinInt isn't a problem. This is fine because
		// these integers are floating-point exponents which never go up that high.
		n = -n
	}

	bytes := p.intToBytesBuffer[:]
	start := len(bytes)

	// Write out the number from the end to the front
	for {
		start--
		bytes[start] = '0' + byte(n%10)
		n /= 10
		if n == 0 {
			break
		}
	}

	// Stick a negative sign on the front if needed
	if wasNegative {
		start--
		bytes[start] = '-'
	}

	return bytes[start:]
}

func parseSmallInt(bytes []byte) int {
	wasNegative := bytes[0] == '-'
	if wasNegative {
		bytes = bytes[1:]
	}

	// Parse the integer without any error checking. This doesn't need to handle
	// integer overflow because these integers are floating-point exponents which
	// never go up that high.
	n := 0
	for _, c := range bytes {
		n = n*10 + int(c-'0')
	}

	if wasNegative {
		return -n
	}
	return n
}

func (p *printer) printNonNegativeFloat(absValue float64) {
	// We can avoid the slow call to strconv.FormatFloat() for integers less than
	// 1000 because we know that exponential notation will always be longer than
	// the integer representation. This is not the case for 1000 which is "1e3".
	if absValue < 1000 {
		if asInt := int64(absValue); absValue == float64(asInt) {
			p.printBytes(p.smallIntToBytes(int(asInt)))
			p.needSpaceBeforeDot = len(p.js)
			return
		}
	}

	// Format this number into a byte slice so we can mutate it in place without
	// further reallocation
	result := []byte(strconv.FormatFloat(absValue, 'g', -1, 64))

	// Simplify the exponent
	// "e+05" => "e5"
	// "e-05" => "e-5"
	if e := bytes.LastIndexByte(result, 'e'); e != -1 {
		from := e + 1
		to := from

		switch result[from] {
		case '+':
			// Strip off the leading "+"
			from++

		case '-':
			// Skip past the leading "-"
			to++
			from++
		}

		// Strip off leading zeros
		for from < len(result) && result[from] == '0' {
			from++
		}

		result = append(result[:to], result[from:]...)
	}

	dot := bytes.IndexByte(result, '.')

	if dot == 1 && result[0] == '0' {
		// Simplify numbers starting with "0."
		afterDot := 2

		// Strip off the leading zero when minifying
		// "0.5" => ".5"
		if p.options.MinifyWhitespace {
			result = result[1:]
			afterDot--
		}

		// Try using an exponent
		// "0.0001" => "1e-4"
		if result[afterDot] == '0' {
			i := afterDot + 1
			for result[i] == '0' {
				i++
			}
			remaining := result[i:]
			exponent := p.smallIntToBytes(afterDot - i - len(remaining))

			// Only switch if it's actually shorter, so ".001" stays as it is
			if len(result) > len(remaining)+1+len(exponent) {
				result = append(append(remaining, 'e'), exponent...)
			}
		}
	} else if dot != -1 {
		// Try to get rid of a "." and maybe also an "e"
		if e := bytes.LastIndexByte(result, 'e'); e != -1 {
			integer := result[:dot]
			fraction := result[dot+1 : e]
			exponent := parseSmallInt(result[e+1:]) - len(fraction)

			// Handle small exponents by appending zeros instead
			if exponent >= 0 && exponent <= 2 {
				// "1.2e1" => "12"
				// "1.2e2" => "120"
				// "1.2e3" => "1200"
				if len(result) >= len(integer)+len(fraction)+exponent {
					result = append(integer, fraction...)
					for i := 0; i < exponent; i++ {
						result = append(result, '0')
					}
				}
			} else {
				// "1.2e4" => "12e3"
				exponent := p.smallIntToBytes(exponent)
				if len(result) >= len(integer)+len(fraction)+1+len(exponent) {
					result = append(append(append(integer, fraction...), 'e'), exponent...)
				}
			}
		}
	} else if result[len(result)-1] == '0' {
		// Simplify numbers ending with "0" by trying to use an exponent
		// "1000" => "1e3"
		i := len(result) - 1
		for i > 0 && result[i-1] == '0' {
			i--
		}
		remaining := result[:i]
		exponent := p.smallIntToBytes(len(result) - i)

		// Only switch if it's actually shorter
		if len(result) > len(remaining)+1+len(exponent) {
			result = append(append(remaining, 'e'), exponent...)
		}
	}

	p.printBytes(result)

	// Remember the end of the latest number if a "." would join it
	if bytes.IndexAny(result, ".e") == -1 {
		p.needSpaceBeforeDot = len(p.js)
	}
}

////////////////////////////////////////////////////////////////////////////////
// Statements

func (p *printer) printForLoopInit(init js_ast.Stmt, flags printExprFlags) {
	switch s := init.Data.(type) {
	case *js_ast.SExpr:
		p.printExpr(s.Value, js_ast.LLowest, flags)
	case *js_ast.SVar:
		p.printDecls(s.Decls, flags)
	default:
		panic("Internal error")
	}
}

func (p *printer) printDecls(decls []js_ast.Decl, flags printExprFlags) {
	p.printSpaceBeforeIdentifier()
	p.print("var")
	p.printSpace()

	for i, decl := range decls {
		if i != 0 {
			p.printComma()
		}
		p.printIdentifier(decl.Binding.Name)

		if decl.ValueOrNil.Data != nil {
			p.printSpace()
			p.print("=")
			p.printSpace()
			p.printExpr(decl.ValueOrNil, js_ast.LComma, flags)
		}
	}
}

func (p *printer) printBody(body js_ast.Stmt) {
	if block, ok := body.Data.(*js_ast.SBlock); ok {
		p.printSpace()
		p.printBlock(body.Loc, block.Stmts, nil)
		p.printNewline()
	} else {
		p.printNewline()
		p.options.Indent++
		p.printStmt(body)
		p.options.Indent--
	}
}

// The scope is only used to describe the renaming in symbol debug output
func (p *printer) printBlock(loc logger.Loc, stmts []js_ast.Stmt, scope *js_scope.Scope) {
	p.print("{")
	p.printNewline()

	p.options.Indent++
	if scope != nil {
		p.printScopeComment(scope)
	}
	p.printStmts(stmts)
	p.options.Indent--
	p.needsSemicolon = false

	p.printIndent()
	p.print("}")
}

func (p *printer) printStmts(stmts []js_ast.Stmt) {
	for _, stmt := range stmts {
		p.printSemicolonIfNeeded()
		p.printNewlinePastLineLimit()
		p.printStmt(stmt)
	}
}

func wrapToAvoidAmbiguousElse(s js_ast.S) bool {
	for {
		switch current := s.(type) {
		case *js_ast.SIf:
			if current.NoOrNil.Data == nil {
				return true
			}
			s = current.NoOrNil.Data

		case *js_ast.SFor:
			s = current.Body.Data

		case *js_ast.SForIn:
			s = current.Body.Data

		case *js_ast.SWhile:
			s = current.Body.Data

		case *js_ast.SWith:
			s = current.Body.Data

		case *js_ast.SLabel:
			s = current.Stmt.Data

		default:
			return false
		}
	}
}

func (p *printer) printIf(s *js_ast.SIf) {
	p.printSpaceBeforeIdentifier()
	p.print("if")
	p.printSpace()
	p.print("(")
	p.printExpr(s.Test, js_ast.LLowest, 0)
	p.print(")")

	no := s.NoOrNil

	if yes, ok := s.Yes.Data.(*js_ast.SBlock); ok {
		p.printSpace()
		p.printBlock(s.Yes.Loc, yes.Stmts, nil)

		if no.Data != nil {
			p.printSpace()
		} else {
			p.printNewline()
		}
	} else if no.Data != nil && wrapToAvoidAmbiguousElse(s.Yes.Data) {
		p.printSpace()
		p.print("{")
		p.printNewline()

		p.options.Indent++
		p.printStmt(s.Yes)
		p.options.Indent--
		p.needsSemicolon = false

		p.printIndent()
		p.print("}")
		p.printSpace()
	} else {
		p.printNewline()
		p.options.Indent++
		p.printStmt(s.Yes)
		p.options.Indent--

		if no.Data != nil {
			p.printIndent()
		}
	}

	if no.Data != nil {
		p.printSemicolonIfNeeded()
		p.printSpaceBeforeIdentifier()
		p.print("else")

		if block, ok := no.Data.(*js_ast.SBlock); ok {
			p.printSpace()
			p.printBlock(no.Loc, block.Stmts, nil)
			p.printNewline()
		} else if ifStmt, ok := no.Data.(*js_ast.SIf); ok {
			p.printSpace()
			p.printIf(ifStmt)
		} else {
			p.printNewline()
			p.options.Indent++
			p.printStmt(no)
			p.options.Indent--
		}
	}
}

func (p *printer) printIndentedComment(text string) {
	// Avoid generating a comment containing the character sequence "</script"
	text = helpers.EscapeClosingTag(text, "/script")

	// Re-indent multi-line comments
	for {
		newline := strings.IndexByte(text, '\n')
		if newline == -1 {
			break
		}
		p.printIndent()
		p.print(text[:newline+1])
		text = text[newline+1:]
	}
	p.printIndent()
	p.print(text)
	p.print("\n")
}

func (p *printer) printStmt(stmt js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SFunction:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("function")
		p.printIdentifier(s.Fn.NameOrNil.Name)
		p.printFn(s.Fn)
		p.printNewline()

	case *js_ast.SEmpty:
		p.printIndent()
		p.print(";")
		p.printNewline()

	case *js_ast.SVar:
		p.printIndent()
		p.printDecls(s.Decls, 0)
		p.printSemicolonAfterStatement()

	case *js_ast.SIf:
		p.printIndent()
		p.printIf(s)

	case *js_ast.SDoWhile:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("do")
		if block, ok := s.Body.Data.(*js_ast.SBlock); ok {
			p.printSpace()
			p.printBlock(s.Body.Loc, block.Stmts, nil)
			p.printSpace()
		} else {
			p.printNewline()
			p.options.Indent++
			p.printStmt(s.Body)
			p.printSemicolonIfNeeded()
			p.options.Indent--
			p.printIndent()
		}
		p.printSpaceBeforeIdentifier()
		p.print("while")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Test, js_ast.LLowest, 0)
		p.print(")")
		p.printSemicolonAfterStatement()

	case *js_ast.SForIn:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("for")
		p.printSpace()
		p.print("(")
		p.printForLoopInit(s.Init, forbidIn)
		p.printSpace()
		p.printSpaceBeforeIdentifier()
		p.print("in")
		p.printSpace()
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SWhile:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("while")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Test, js_ast.LLowest, 0)
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SWith:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("with")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SLabel:
		// Labels live in their own namespace and are never renamed
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print(s.Name.Name)
		p.print(":")
		p.printBody(s.Stmt)

	case *js_ast.STry:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("try")
		p.printSpace()
		p.printBlock(s.BodyLoc, s.Body, nil)

		for _, c := range s.Catches {
			p.printSpace()
			p.print("catch")
			p.printSpace()
			p.print("(")
			scope := p.enterScope(c.ScopeID)
			p.printIdentifier(c.Binding.Name)
			if c.GuardOrNil.Data != nil {
				p.print(" if")
				p.printSpace()
				p.printExpr(c.GuardOrNil, js_ast.LLowest, 0)
			}
			p.print(")")
			p.printSpace()
			p.printBlock(c.BodyLoc, c.Body, scope)
			p.leaveScope()
		}

		if s.Finally != nil {
			p.printSpace()
			p.print("finally")
			p.printSpace()
			p.printBlock(s.Finally.Loc, s.Finally.Stmts, nil)
		}

		p.printNewline()

	case *js_ast.SFor:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("for")
		p.printSpace()
		p.print("(")
		if s.InitOrNil.Data != nil {
			p.printForLoopInit(s.InitOrNil, forbidIn)
		}
		p.print(";")
		p.printSpace()
		if s.TestOrNil.Data != nil {
			p.printExpr(s.TestOrNil, js_ast.LLowest, 0)
		}
		p.print(";")
		p.printSpace()
		if s.UpdateOrNil.Data != nil {
			p.printExpr(s.UpdateOrNil, js_ast.LLowest, 0)
		}
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SSwitch:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("switch")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Test, js_ast.LLowest, 0)
		p.print(")")
		p.printSpace()
		p.print("{")
		p.printNewline()
		p.options.Indent++

		for _, c := range s.Cases {
			p.printSemicolonIfNeeded()
			p.printIndent()

			if c.ValueOrNil.Data != nil {
				p.print("case")
				p.printSpace()
				p.printExpr(c.ValueOrNil, js_ast.LLogicalAnd, 0)
			} else {
				p.print("default")
			}
			p.print(":")

			if len(c.Body) == 1 {
				if block, ok := c.Body[0].Data.(*js_ast.SBlock); ok {
					p.printSpace()
					p.printBlock(c.Body[0].Loc, block.Stmts, nil)
					p.printNewline()
					continue
				}
			}

			p.printNewline()
			p.options.Indent++
			p.printStmts(c.Body)
			p.options.Indent--
		}

		p.options.Indent--
		p.printIndent()
		p.print("}")
		p.printNewline()
		p.needsSemicolon = false

	case *js_ast.SBlock:
		p.printIndent()
		p.printBlock(stmt.Loc, s.Stmts, nil)
		p.printNewline()

	case *js_ast.SDebugger:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("debugger")
		p.printSemicolonAfterStatement()

	case *js_ast.SBreak:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("break")
		if s.Label != nil {
			p.print(" ")
			p.print(s.Label.Name)
		}
		p.printSemicolonAfterStatement()

	case *js_ast.SContinue:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("continue")
		if s.Label != nil {
			p.print(" ")
			p.print(s.Label.Name)
		}
		p.printSemicolonAfterStatement()

	case *js_ast.SReturn:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("return")
		if s.ValueOrNil.Data != nil {
			p.printSpace()
			p.printExpr(s.ValueOrNil, js_ast.LLowest, 0)
		}
		p.printSemicolonAfterStatement()

	case *js_ast.SThrow:
		p.printIndent()
		p.printSpaceBeforeIdentifier()
		p.print("throw")
		p.printSpace()
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.printSemicolonAfterStatement()

	case *js_ast.SExpr:
		p.printIndent()
		p.stmtStart = len(p.js)
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.printSemicolonAfterStatement()

	default:
		panic(fmt.Sprintf("Unexpected statement of type %T", stmt.Data))
	}
}

type Options struct {
	Indent    int
	LineLimit int

	// Leave out all optional whitespace and use the shortest spelling of
	// literals. Otherwise the output is indented with one statement per line.
	MinifyWhitespace bool

	// Give locals short generated names. Names are only ever kept when this
	// is off, when their scope is tainted, or when the policy refuses.
	MinifyIdentifiers bool

	// Describe the renaming of each scope in a comment at its start
	SymbolDebug bool

	// Print "/*!" comments at the top of the output
	ImportantComments bool

	Policy config.Policy
}

type PrintResult struct {
	JS []byte
}

// The scope tree must be the one built for this AST, with ranks already
// computed. Names are allocated while printing, so each call starts over with
// a fresh allocator.
func Print(tree js_ast.AST, scopes *js_scope.Tree, options Options) PrintResult {
	p := &printer{
		scopes:             scopes,
		allocator:          renamer.NewAllocator(),
		kept:               make(map[*js_scope.Symbol]bool),
		options:            options,
		stmtStart:          -1,
		prevOpEnd:          -1,
		prevRegExpEnd:      -1,
		needSpaceBeforeDot: -1,
	}

	p.claimNames()

	if options.ImportantComments {
		for _, text := range tree.ImportantComments {
			p.printIndentedComment(text)
		}
	}

	root := p.enterScope(js_ast.RootScopeID)
	p.printScopeComment(root)
	p.printStmts(tree.Stmts)
	p.leaveScope()

	return PrintResult{JS: p.js}
}
