package js_lexer

// The lexer converts a source file to a stream of tokens. The lexer is not run
// to completion before the parser is started. Instead, the lexer is called
// repeatedly by the parser as the parser parses the file. This is because
// some tokens are context-sensitive and need high-level information from the
// parser. The main example is a regular expression literal, which can only be
// distinguished from a division operator by knowing whether an expression or
// an operator is expected next.
//
// Identifiers use UTF-8 encoding which allows them to be slices of the input
// file without allocating extra memory. Strings use UTF-16 encoding so they
// can represent unicode surrogates accurately.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jsshrink/jsshrink/internal/helpers"
	"github.com/jsshrink/jsshrink/internal/logger"
)

type T uint

// If you add a new token, remember to add it to "tokenToString" too
const (
	TEndOfFile T = iota
	TSyntaxError

	// Literals
	TNumericLiteral // Contents are in lexer.Number (float64) and maybe lexer.Integer (int64)
	TStringLiteral  // Contents are in lexer.StringLiteral ([]uint16)

	// Punctuation
	TAmpersand
	TAmpersandAmpersand
	TAsterisk
	TBar
	TBarBar
	TCaret
	TCloseBrace
	TCloseBracket
	TCloseParen
	TColon
	TComma
	TDot
	TEqualsEquals
	TEqualsEqualsEquals
	TExclamation
	TExclamationEquals
	TExclamationEqualsEquals
	TGreaterThan
	TGreaterThanEquals
	TGreaterThanGreaterThan
	TGreaterThanGreaterThanGreaterThan
	TLessThan
	TLessThanEquals
	TLessThanLessThan
	TMinus
	TMinusMinus
	TOpenBrace
	TOpenBracket
	TOpenParen
	TPercent
	TPlus
	TPlusPlus
	TQuestion
	TSemicolon
	TSlash
	TTilde

	// Assignments
	TAmpersandEquals
	TAsteriskEquals
	TBarEquals
	TCaretEquals
	TEquals
	TGreaterThanGreaterThanEquals
	TGreaterThanGreaterThanGreaterThanEquals
	TLessThanLessThanEquals
	TMinusEquals
	TPercentEquals
	TPlusEquals
	TSlashEquals

	// Identifiers
	TIdentifier     // Contents are in lexer.Identifier (string)
	TEscapedKeyword // A keyword that has been escaped with "@" as an identifier

	// Reserved words
	TBreak
	TCase
	TCatch
	TClass
	TConst
	TContinue
	TDebugger
	TDefault
	TDelete
	TDo
	TElse
	TEnum
	TExport
	TExtends
	TFalse
	TFinally
	TFor
	TFunction
	TIf
	TImport
	TIn
	TInstanceof
	TNew
	TNull
	TReturn
	TSuper
	TSwitch
	TThis
	TThrow
	TTrue
	TTry
	TTypeof
	TVar
	TVoid
	TWhile
	TWith
)

var Keywords = map[string]T{
	// Reserved words
	"break":      TBreak,
	"case":       TCase,
	"catch":      TCatch,
	"class":      TClass,
	"const":      TConst,
	"continue":   TContinue,
	"debugger":   TDebugger,
	"default":    TDefault,
	"delete":     TDelete,
	"do":         TDo,
	"else":       TElse,
	"enum":       TEnum,
	"export":     TExport,
	"extends":    TExtends,
	"false":      TFalse,
	"finally":    TFinally,
	"for":        TFor,
	"function":   TFunction,
	"if":         TIf,
	"import":     TImport,
	"in":         TIn,
	"instanceof": TInstanceof,
	"new":        TNew,
	"null":       TNull,
	"return":     TReturn,
	"super":      TSuper,
	"switch":     TSwitch,
	"this":       TThis,
	"throw":      TThrow,
	"true":       TTrue,
	"try":        TTry,
	"typeof":     TTypeof,
	"var":        TVar,
	"void":       TVoid,
	"while":      TWhile,
	"with":       TWith,
}

var StrictModeReservedWords = map[string]bool{
	"implements": true,
	"interface":  true,
	"let":        true,
	"package":    true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"static":     true,
	"yield":      true,
}

// A "/*!" comment. These are typically license notices that must survive
// minification.
type ImportantComment struct {
	Loc  logger.Loc
	Text string
}

type Lexer struct {
	log              logger.Log
	source           logger.Source
	current          int
	start            int
	end              int
	Token            T
	HasNewlineBefore bool
	codePoint        rune
	StringLiteral    []uint16
	Identifier       string
	Number           float64

	// Set for integer literals that are exactly representable. Legacy octal,
	// hexadecimal, and decimal literals without a fraction or exponent are
	// integers. Everything else is a double whose original text is Raw().
	IsInteger bool
	Integer   int64

	ImportantComments []ImportantComment
}

type LexerPanic struct{}

// A saved lexer position. Restoring a mark with Rewind() makes the lexer
// produce the same tokens again from that point on.
type Mark struct {
	state Lexer
}

func NewLexer(log logger.Log, source logger.Source) Lexer {
	lexer := Lexer{
		log:    log,
		source: source,
	}
	lexer.step()
	lexer.Next()
	return lexer
}

func (lexer *Lexer) Mark() Mark {
	return Mark{state: *lexer}
}

func (lexer *Lexer) Rewind(mark Mark) {
	*lexer = mark.state
}

func (lexer *Lexer) Loc() logger.Loc {
	return logger.Loc{Start: int32(lexer.start)}
}

func (lexer *Lexer) Range() logger.Range {
	return logger.Range{Loc: logger.Loc{Start: int32(lexer.start)}, Len: int32(lexer.end - lexer.start)}
}

func (lexer *Lexer) Raw() string {
	return lexer.source.Contents[lexer.start:lexer.end]
}

// Returns true if the current token can be used as a property name after a
// "." or as an object literal key
func (lexer *Lexer) IsIdentifierOrKeyword() bool {
	return lexer.Token >= TIdentifier
}

func (lexer *Lexer) SyntaxError() {
	loc := logger.Loc{Start: int32(lexer.end)}
	message := "Unexpected end of file"
	if lexer.end < len(lexer.source.Contents) {
		c, _ := utf8.DecodeRuneInString(lexer.source.Contents[lexer.end:])
		if c < 0x20 {
			message = fmt.Sprintf("Illegal character \"\\x%02X\"", c)
		} else if c >= 0x80 {
			message = fmt.Sprintf("Illegal character \"\\u{%x}\"", c)
		} else if c != '"' {
			message = fmt.Sprintf("Illegal character \"%c\"", c)
		} else {
			message = "Illegal character '\"'"
		}
	}
	lexer.addError(loc, message)
	panic(LexerPanic{})
}

func (lexer *Lexer) ExpectedString(text string) {
	found := fmt.Sprintf("%q", lexer.Raw())
	if lexer.start == len(lexer.source.Contents) {
		found = "end of file"
	}
	lexer.log.AddRangeError(&lexer.source, lexer.Range(), fmt.Sprintf("Expected %s but found %s", text, found))
	panic(LexerPanic{})
}

func (lexer *Lexer) Expected(token T) {
	if text, ok := tokenToString[token]; ok {
		lexer.ExpectedString(text)
	} else {
		lexer.Unexpected()
	}
}

func (lexer *Lexer) Unexpected() {
	found := fmt.Sprintf("%q", lexer.Raw())
	if lexer.start == len(lexer.source.Contents) {
		found = "end of file"
	}
	lexer.log.AddRangeError(&lexer.source, lexer.Range(), fmt.Sprintf("Unexpected %s", found))
	panic(LexerPanic{})
}

func (lexer *Lexer) Expect(token T) {
	if lexer.Token != token {
		lexer.Expected(token)
	}
	lexer.Next()
}

// A semicolon may be omitted at the end of the input, before a "}", or when
// a line break separates the previous token from the current one.
func (lexer *Lexer) CanInsertSemicolon() bool {
	return lexer.Token == TEndOfFile || lexer.Token == TCloseBrace || lexer.HasNewlineBefore
}

func (lexer *Lexer) ExpectOrInsertSemicolon() {
	if lexer.Token == TSemicolon || !lexer.CanInsertSemicolon() {
		lexer.Expect(TSemicolon)
	}
}

func IsIdentifier(text string) bool {
	if len(text) == 0 {
		return false
	}
	for i, codePoint := range text {
		if i == 0 {
			if !IsIdentifierStart(codePoint) {
				return false
			}
		} else {
			if !IsIdentifierContinue(codePoint) {
				return false
			}
		}
	}
	return true
}

func IsIdentifierStart(codePoint rune) bool {
	switch codePoint {
	case '_', '$',
		'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
		'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
		'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
		'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z':
		return true
	}

	// All ASCII identifier start code points are listed above
	if codePoint < 0x7F {
		return false
	}

	return unicode.IsLetter(codePoint) || unicode.Is(unicode.Nl, codePoint)
}

func IsIdentifierContinue(codePoint rune) bool {
	switch codePoint {
	case '_', '$', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9',
		'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
		'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
		'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
		'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z':
		return true
	}

	// All ASCII identifier start code points are listed above
	if codePoint < 0x7F {
		return false
	}

	// ZWNJ and ZWJ are allowed in identifiers
	if codePoint == 0x200C || codePoint == 0x200D {
		return true
	}

	return IsIdentifierStart(codePoint) || unicode.In(codePoint, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc)
}

// See the "White Space Code Points" table in the ECMAScript standard
func IsWhitespace(codePoint rune) bool {
	switch codePoint {
	case
		'\u0009', // character tabulation
		'\u000B', // line tabulation
		'\u000C', // form feed
		'\u0020', // space
		'\u00A0', // no-break space

		// Unicode "Space_Separator" code points
		'\u1680', // ogham space mark
		'\u2000', // en quad
		'\u2001', // em quad
		'\u2002', // en space
		'\u2003', // em space
		'\u2004', // three-per-em space
		'\u2005', // four-per-em space
		'\u2006', // six-per-em space
		'\u2007', // figure space
		'\u2008', // punctuation space
		'\u2009', // thin space
		'\u200A', // hair space
		'\u202F', // narrow no-break space
		'\u205F', // medium mathematical space
		'\u3000', // ideographic space

		'\uFEFF': // zero width non-breaking space
		return true

	default:
		return false
	}
}

func (lexer *Lexer) Next() {
	lexer.HasNewlineBefore = lexer.end == 0
	lexer.IsInteger = false

	for {
		lexer.start = lexer.end
		lexer.Token = 0

		switch lexer.codePoint {
		case -1: // This indicates the end of the file
			lexer.Token = TEndOfFile

		case '\r', '\n', '\u2028', '\u2029':
			lexer.step()
			lexer.HasNewlineBefore = true
			continue

		case '\t', ' ':
			lexer.step()
			continue

		case '(':
			lexer.step()
			lexer.Token = TOpenParen

		case ')':
			lexer.step()
			lexer.Token = TCloseParen

		case '[':
			lexer.step()
			lexer.Token = TOpenBracket

		case ']':
			lexer.step()
			lexer.Token = TCloseBracket

		case '{':
			lexer.step()
			lexer.Token = TOpenBrace

		case '}':
			lexer.step()
			lexer.Token = TCloseBrace

		case ',':
			lexer.step()
			lexer.Token = TComma

		case ':':
			lexer.step()
			lexer.Token = TColon

		case ';':
			lexer.step()
			lexer.Token = TSemicolon

		case '~':
			lexer.step()
			lexer.Token = TTilde

		case '?':
			lexer.step()
			lexer.Token = TQuestion

		case '@':
			// "@if" is an identifier named "if" and "@"x""y"" is a verbatim string
			lexer.step()
			switch {
			case lexer.codePoint == '"':
				lexer.scanVerbatimString()

			case IsIdentifierStart(lexer.codePoint):
				nameStart := lexer.end
				lexer.step()
				for IsIdentifierContinue(lexer.codePoint) {
					lexer.step()
				}
				lexer.Identifier = lexer.source.Contents[nameStart:lexer.end]
				if _, ok := Keywords[lexer.Identifier]; ok {
					lexer.Token = TEscapedKeyword
				} else {
					lexer.Token = TIdentifier
				}

			default:
				lexer.end = lexer.start
				lexer.SyntaxError()
			}

		case '%':
			// '%' or '%='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TPercentEquals
			default:
				lexer.Token = TPercent
			}

		case '&':
			// '&' or '&=' or '&&'
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TAmpersandEquals
			case '&':
				lexer.step()
				lexer.Token = TAmpersandAmpersand
			default:
				lexer.Token = TAmpersand
			}

		case '|':
			// '|' or '|=' or '||'
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TBarEquals
			case '|':
				lexer.step()
				lexer.Token = TBarBar
			default:
				lexer.Token = TBar
			}

		case '^':
			// '^' or '^='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TCaretEquals
			default:
				lexer.Token = TCaret
			}

		case '+':
			// '+' or '+=' or '++'
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TPlusEquals
			case '+':
				lexer.step()
				lexer.Token = TPlusPlus
			default:
				lexer.Token = TPlus
			}

		case '-':
			// '-' or '-=' or '--'
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TMinusEquals
			case '-':
				lexer.step()
				lexer.Token = TMinusMinus
			default:
				lexer.Token = TMinus
			}

		case '*':
			// '*' or '*='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TAsteriskEquals
			default:
				lexer.Token = TAsterisk
			}

		case '/':
			// '/' or '/=' or '//' or '/* ... */'
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TSlashEquals

			case '/':
			singleLineComment:
				for {
					lexer.step()
					switch lexer.codePoint {
					case '\r', '\n', '\u2028', '\u2029':
						break singleLineComment

					case -1: // This indicates the end of the file
						break singleLineComment
					}
				}
				continue

			case '*':
				lexer.step()
			multiLineComment:
				for {
					switch lexer.codePoint {
					case '*':
						lexer.step()
						if lexer.codePoint == '/' {
							lexer.step()
							break multiLineComment
						}

					case '\r', '\n', '\u2028', '\u2029':
						lexer.step()
						lexer.HasNewlineBefore = true

					case -1: // This indicates the end of the file
						lexer.addError(lexer.Loc(), "Expected \"*/\" to terminate multi-line comment")
						panic(LexerPanic{})

					default:
						lexer.step()
					}
				}
				if text := lexer.Raw(); strings.HasPrefix(text, "/*!") {
					// The comment is moved to the top of the output so its indent is meaningless
					text = helpers.RemoveMultiLineCommentIndent(lexer.source.Contents[:lexer.start], text)
					lexer.ImportantComments = append(lexer.ImportantComments, ImportantComment{Loc: lexer.Loc(), Text: text})
				}
				continue

			default:
				lexer.Token = TSlash
			}

		case '=':
			// '=' or '==' or '==='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				switch lexer.codePoint {
				case '=':
					lexer.step()
					lexer.Token = TEqualsEqualsEquals
				default:
					lexer.Token = TEqualsEquals
				}
			default:
				lexer.Token = TEquals
			}

		case '<':
			// '<' or '<<' or '<=' or '<<='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TLessThanEquals
			case '<':
				lexer.step()
				switch lexer.codePoint {
				case '=':
					lexer.step()
					lexer.Token = TLessThanLessThanEquals
				default:
					lexer.Token = TLessThanLessThan
				}
			default:
				lexer.Token = TLessThan
			}

		case '>':
			// '>' or '>>' or '>>>' or '>=' or '>>=' or '>>>='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TGreaterThanEquals
			case '>':
				lexer.step()
				switch lexer.codePoint {
				case '=':
					lexer.step()
					lexer.Token = TGreaterThanGreaterThanEquals
				case '>':
					lexer.step()
					switch lexer.codePoint {
					case '=':
						lexer.step()
						lexer.Token = TGreaterThanGreaterThanGreaterThanEquals
					default:
						lexer.Token = TGreaterThanGreaterThanGreaterThan
					}
				default:
					lexer.Token = TGreaterThanGreaterThan
				}
			default:
				lexer.Token = TGreaterThan
			}

		case '!':
			// '!' or '!=' or '!=='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				switch lexer.codePoint {
				case '=':
					lexer.step()
					lexer.Token = TExclamationEqualsEquals
				default:
					lexer.Token = TExclamationEquals
				}
			default:
				lexer.Token = TExclamation
			}

		case '\'', '"':
			quote := lexer.codePoint
			needsSlowPath := false
			lexer.Token = TStringLiteral
			lexer.step()

		stringLiteral:
			for {
				switch lexer.codePoint {
				case '\\':
					needsSlowPath = true
					lexer.step()

					// Handle Windows CRLF
					if lexer.codePoint == '\r' {
						lexer.step()
						if lexer.codePoint == '\n' {
							lexer.step()
						}
						continue
					}

				case -1: // This indicates the end of the file
					lexer.addError(lexer.Loc(), "Unterminated string literal")
					panic(LexerPanic{})

				case '\r', '\n':
					lexer.addError(lexer.Loc(), "Unterminated string literal")
					panic(LexerPanic{})

				case quote:
					lexer.step()
					break stringLiteral

				default:
					// Non-ASCII strings need the slow path
					if lexer.codePoint >= 0x80 {
						needsSlowPath = true
					}
				}
				lexer.step()
			}

			text := lexer.source.Contents[lexer.start+1 : lexer.end-1]

			if needsSlowPath {
				// Slow path
				lexer.StringLiteral = lexer.decodeEscapeSequences(lexer.start+1, text)
			} else {
				// Fast path
				n := len(text)
				copy := make([]uint16, n)
				for i := 0; i < n; i++ {
					copy[i] = uint16(text[i])
				}
				lexer.StringLiteral = copy
			}

		case '_', '$',
			'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
			'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
			'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
			'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z':
			lexer.step()
			for IsIdentifierContinue(lexer.codePoint) {
				lexer.step()
			}
			contents := lexer.Raw()
			lexer.Identifier = contents
			lexer.Token = Keywords[contents]
			if lexer.Token == 0 {
				lexer.Token = TIdentifier
			}

		case '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			lexer.parseNumericLiteralOrDot()

		default:
			// Check for unusual whitespace characters
			if IsWhitespace(lexer.codePoint) {
				lexer.step()
				continue
			}

			if IsIdentifierStart(lexer.codePoint) {
				lexer.step()
				for IsIdentifierContinue(lexer.codePoint) {
					lexer.step()
				}
				lexer.Token = TIdentifier
				lexer.Identifier = lexer.Raw()
				break
			}

			lexer.end = lexer.start
			lexer.SyntaxError()
		}

		return
	}
}

// A verbatim string starts with '@"' and ends with '"'. There are no escape
// sequences except that '""' stands for a single quote character.
func (lexer *Lexer) scanVerbatimString() {
	lexer.step()
	sb := strings.Builder{}

	for {
		switch lexer.codePoint {
		case -1: // This indicates the end of the file
			lexer.addError(lexer.Loc(), "Unterminated string literal")
			panic(LexerPanic{})

		case '"':
			lexer.step()
			if lexer.codePoint != '"' {
				lexer.Token = TStringLiteral
				lexer.StringLiteral = helpers.StringToUTF16(sb.String())
				return
			}
		}

		sb.WriteRune(lexer.codePoint)
		lexer.step()
	}
}

// JavaScript numbers are doubles but integer literals are kept as integers so
// that constant folding can stay exact.
const maxSafeInteger = 1<<53 - 1

func (lexer *Lexer) parseNumericLiteralOrDot() {
	// Number or dot
	first := lexer.codePoint
	lexer.step()

	// Dot without a digit after it
	if first == '.' && (lexer.codePoint < '0' || lexer.codePoint > '9') {
		lexer.Token = TDot
		return
	}

	lexer.Token = TNumericLiteral

	if first == '0' && (lexer.codePoint == 'x' || lexer.codePoint == 'X') {
		// Hexadecimal integer literal
		lexer.step()
		isFirst := true
		lexer.Number = 0

	hexLiteral:
		for {
			switch lexer.codePoint {
			case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
				lexer.Number = lexer.Number*16 + float64(lexer.codePoint-'0')

			case 'A', 'B', 'C', 'D', 'E', 'F':
				lexer.Number = lexer.Number*16 + float64(lexer.codePoint+10-'A')

			case 'a', 'b', 'c', 'd', 'e', 'f':
				lexer.Number = lexer.Number*16 + float64(lexer.codePoint+10-'a')

			default:
				// The first digit must exist
				if isFirst {
					lexer.malformedNumber()
				}
				break hexLiteral
			}

			lexer.step()
			isFirst = false
		}
		lexer.setIntegerIfSafe()
	} else {
		hasDotOrExponent := first == '.'

		// Initial digits
		for lexer.codePoint >= '0' && lexer.codePoint <= '9' {
			lexer.step()
		}

		// Fractional digits
		if first != '.' && lexer.codePoint == '.' {
			hasDotOrExponent = true
			lexer.step()
			for lexer.codePoint >= '0' && lexer.codePoint <= '9' {
				lexer.step()
			}
		}

		// Exponent
		if lexer.codePoint == 'e' || lexer.codePoint == 'E' {
			hasDotOrExponent = true
			lexer.step()
			if lexer.codePoint == '+' || lexer.codePoint == '-' {
				lexer.step()
			}
			if lexer.codePoint < '0' || lexer.codePoint > '9' {
				lexer.malformedNumber()
			}
			for lexer.codePoint >= '0' && lexer.codePoint <= '9' {
				lexer.step()
			}
		}

		text := lexer.Raw()

		if !hasDotOrExponent && len(text) > 1 && first == '0' && strings.IndexAny(text, "89") < 0 {
			// Legacy octal integer literal
			lexer.Number = 0
			for _, c := range text[1:] {
				lexer.Number = lexer.Number*8 + float64(c-'0')
			}
			lexer.setIntegerIfSafe()
		} else {
			// Parse a double-precision floating-point number. Legacy octal
			// literals containing an "8" or a "9" are decimal after all.
			value, err := strconv.ParseFloat(text, 64)
			if err != nil && !isRangeError(err) {
				lexer.malformedNumber()
			}
			lexer.Number = value
			if !hasDotOrExponent {
				lexer.setIntegerIfSafe()
			}
		}
	}

	// Identifiers can't occur immediately after numbers
	if IsIdentifierStart(lexer.codePoint) {
		lexer.malformedNumber()
	}
}

func (lexer *Lexer) setIntegerIfSafe() {
	if IsSafeInteger(lexer.Number) {
		lexer.IsInteger = true
		lexer.Integer = int64(lexer.Number)
	}
}

func isRangeError(err error) bool {
	if numErr, ok := err.(*strconv.NumError); ok {
		return numErr.Err == strconv.ErrRange
	}
	return false
}

func (lexer *Lexer) malformedNumber() {
	r := logger.Range{Loc: lexer.Loc(), Len: int32(lexer.current - lexer.start)}
	lexer.addRangeError(r, fmt.Sprintf("Malformed numeric literal %q", lexer.source.TextForRange(r)))
	panic(LexerPanic{})
}

// This is called by the parser when it finds a "/" or "/=" token where an
// expression is expected. The token is re-interpreted as the start of a
// regular expression literal and Raw() then returns the whole literal.
func (lexer *Lexer) ScanRegExp() {
	unterminated := func() {
		lexer.addError(lexer.Loc(), "Unterminated regular expression")
		panic(LexerPanic{})
	}

	validateAndStep := func() {
		if lexer.codePoint == '\\' {
			lexer.step()
		}

		switch lexer.codePoint {
		case '\r', '\n', 0x2028, 0x2029, -1:
			// Newlines aren't allowed in regular expressions
			unterminated()

		default:
			lexer.step()
		}
	}

	for {
		switch lexer.codePoint {
		case '/':
			lexer.step()
			for IsIdentifierContinue(lexer.codePoint) {
				switch lexer.codePoint {
				case 'g', 'i', 'm', 'y':
					lexer.step()

				default:
					lexer.addRangeError(logger.Range{Loc: logger.Loc{Start: int32(lexer.end)}, Len: int32(utf8.RuneLen(lexer.codePoint))},
						fmt.Sprintf("Invalid regular expression flag %q", lexer.codePoint))
					panic(LexerPanic{})
				}
			}
			return

		case '[':
			lexer.step()
			for lexer.codePoint != ']' {
				validateAndStep()
			}
			lexer.step()

		default:
			validateAndStep()
		}
	}
}

func (lexer *Lexer) decodeEscapeSequences(start int, text string) []uint16 {
	decoded := []uint16{}
	i := 0

	for i < len(text) {
		c, width := utf8.DecodeRuneInString(text[i:])
		i += width

		if c == '\\' {
			c2, width2 := utf8.DecodeRuneInString(text[i:])
			i += width2

			switch c2 {
			case 'b':
				decoded = append(decoded, '\b')
				continue

			case 'f':
				decoded = append(decoded, '\f')
				continue

			case 'n':
				decoded = append(decoded, '\n')
				continue

			case 'r':
				decoded = append(decoded, '\r')
				continue

			case 't':
				decoded = append(decoded, '\t')
				continue

			case 'v':
				decoded = append(decoded, '\v')
				continue

			case '0', '1', '2', '3', '4', '5', '6', '7':
				// 1-3 digit octal
				value := c2 - '0'
				c3, width3 := utf8.DecodeRuneInString(text[i:])
				switch c3 {
				case '0', '1', '2', '3', '4', '5', '6', '7':
					value = value*8 + c3 - '0'
					i += width3
					c4, width4 := utf8.DecodeRuneInString(text[i:])
					switch c4 {
					case '0', '1', '2', '3', '4', '5', '6', '7':
						temp := value*8 + c4 - '0'
						if temp < 256 {
							value = temp
							i += width4
						}
					}
				}
				c = value

			case 'x':
				// 2-digit hexadecimal
				value := '\000'
				for j := 0; j < 2; j++ {
					c3, width3 := utf8.DecodeRuneInString(text[i:])
					i += width3
					digit, ok := hexDigit(c3)
					if !ok {
						lexer.invalidEscape(start, i-width3)
					}
					value = value*16 | digit
				}
				c = value

			case 'u':
				// 4-digit hexadecimal
				value := '\000'
				for j := 0; j < 4; j++ {
					c3, width3 := utf8.DecodeRuneInString(text[i:])
					i += width3
					digit, ok := hexDigit(c3)
					if !ok {
						lexer.invalidEscape(start, i-width3)
					}
					value = value*16 | digit
				}
				c = value

			case '\r':
				// Ignore line continuations. A line continuation is not an escaped newline.
				if i < len(text) && text[i] == '\n' {
					// Make sure Windows CRLF counts as a single newline
					i++
				}
				continue

			case '\n', '\u2028', '\u2029':
				// Ignore line continuations. A line continuation is not an escaped newline.
				continue

			default:
				c = c2
			}
		}

		if c <= 0xFFFF {
			decoded = append(decoded, uint16(c))
		} else {
			c -= 0x10000
			decoded = append(decoded, uint16(0xD800+((c>>10)&0x3FF)), uint16(0xDC00+(c&0x3FF)))
		}
	}

	return decoded
}

func hexDigit(c rune) (rune, bool) {
	switch c {
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return c - '0', true
	case 'a', 'b', 'c', 'd', 'e', 'f':
		return c + 10 - 'a', true
	case 'A', 'B', 'C', 'D', 'E', 'F':
		return c + 10 - 'A', true
	}
	return 0, false
}

func (lexer *Lexer) invalidEscape(start int, offset int) {
	lexer.addError(logger.Loc{Start: int32(start + offset)}, "Malformed escape sequence in string literal")
	panic(LexerPanic{})
}

func (lexer *Lexer) step() {
	codePoint, width := utf8.DecodeRuneInString(lexer.source.Contents[lexer.current:])

	// Use -1 to indicate the end of the file
	if width == 0 {
		codePoint = -1
	}

	lexer.codePoint = codePoint
	lexer.end = lexer.current
	lexer.current += width
}

func (lexer *Lexer) addError(loc logger.Loc, text string) {
	lexer.log.AddID(logger.MsgID_LexError, logger.Error, &lexer.source, logger.Range{Loc: loc}, text)
}

func (lexer *Lexer) addRangeError(r logger.Range, text string) {
	lexer.log.AddID(logger.MsgID_LexError, logger.Error, &lexer.source, r, text)
}

// Integers past 2^53 have already lost precision as doubles, so they can't
// take the exact integer path when folding
func IsSafeInteger(value float64) bool {
	return value == math.Trunc(value) && math.Abs(value) <= maxSafeInteger
}
