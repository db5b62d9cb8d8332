package api

import (
	"fmt"

	"github.com/jsshrink/jsshrink/internal/config"
)

type Location struct {
	File     string
	Line     int // 1-based
	Column   int // 1-based, in bytes
	Length   int // in bytes
	LineText string
}

type Message struct {
	// A short identifier for the kind of message such as "syntax-error" or
	// "unreachable-code", usable with "LogOverride"
	ID string

	Text     string
	Location *Location

	// Optional "see also" locations, such as the first declaration of a name
	// that was declared twice
	Notes []Note
}

type Note struct {
	Text     string
	Location *Location
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type LogLevel uint8

const (
	LogLevelSilent LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

type ErrorKind uint8

const (
	// Invalid characters, unterminated literals and comments, malformed numbers
	LexError ErrorKind = iota

	// Token sequences that don't form a program
	SyntaxError

	// Bad options, unreadable files, and internal errors
	OtherError
)

func (kind ErrorKind) String() string {
	switch kind {
	case LexError:
		return "lex error"
	case SyntaxError:
		return "syntax error"
	default:
		return "error"
	}
}

// The first fatal error of a compilation, as a Go error
type CompileError struct {
	Kind   ErrorKind
	File   string
	Line   int // 1-based
	Column int // 1-based, in bytes
	Text   string
}

func (err *CompileError) Error() string {
	if err.File == "" {
		return err.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", err.File, err.Line, err.Column, err.Text)
}

// Options shared by both entry points
type CompileOptions struct {
	Color      StderrColor
	ErrorLimit int
	LogLevel   LogLevel

	// Report suspicious code such as unused variables and unreachable code
	Warnings bool

	// Per-message log levels, keyed by message ID. Only warnings can be
	// silenced this way.
	LogOverride map[string]LogLevel

	// Indent the output with one statement per line instead of minifying it
	Formatted bool

	// Describe the renaming of every scope in a comment at its start
	SymbolDebug bool

	// Keep every identifier's original name
	NoObfuscate bool

	// Wrap minified output once a line reaches this many bytes (0 for none)
	LineLimit int

	// Accessibility patterns for declarations that must keep their names.
	// See the "internal/access" package for the syntax. This can't be used
	// together with "Policy".
	KeepNames []string

	// A custom accessibility policy
	Policy config.Policy

	// Replace reads of locals bound once to a number or boolean literal
	InlineConstants bool

	// Keep "/*!" comments at the top of the output
	PreserveImportantComments bool

	// Parse the output again with an unrelated JavaScript parser and warn if
	// that fails
	VerifyOutput bool
}

////////////////////////////////////////////////////////////////////////////////
// Build API

type BuildOptions struct {
	CompileOptions

	// Exactly one of these must be set when there is more than one entry
	// point. With neither, the single output is returned for stdout.
	Outfile string
	Outdir  string

	EntryPoints []string
}

type BuildResult struct {
	Errors   []Message
	Warnings []Message

	OutputFiles []OutputFile
}

type OutputFile struct {
	Path     string
	Contents []byte
}

func (result BuildResult) Err() error {
	return firstError(result.Errors)
}

// Compiles every entry point in parallel. Output files are returned in the
// order of the entry points and are not written to disk.
func Build(options BuildOptions) BuildResult {
	return buildImpl(options)
}

////////////////////////////////////////////////////////////////////////////////
// Transform API

type TransformOptions struct {
	CompileOptions

	// The name used for the input in messages (default "<stdin>")
	Sourcefile string
}

type TransformResult struct {
	Errors   []Message
	Warnings []Message

	// This is nil if there were errors
	Code []byte
}

func (result TransformResult) Err() error {
	return firstError(result.Errors)
}

func Transform(input string, options TransformOptions) TransformResult {
	return transformImpl(input, options)
}
