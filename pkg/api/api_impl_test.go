package api

import (
	"path/filepath"
	"testing"

	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/internal/test"
)

func TestOutputPath(t *testing.T) {
	test.AssertEqual(t, outputPath(BuildOptions{Outfile: "out.js"}, "src/in.js"), "out.js")
	test.AssertEqual(t, outputPath(BuildOptions{Outdir: "dist"}, "src/in.js"), filepath.Join("dist", "in.js"))
	test.AssertEqual(t, outputPath(BuildOptions{}, "src/in.js"), "<stdout>")
}

func TestFirstError(t *testing.T) {
	if firstError(nil) != nil {
		t.Fatal("Expected no error")
	}

	err := firstError([]Message{
		{ID: "lex-error", Text: "Unterminated string literal", Location: &Location{File: "a.js", Line: 3, Column: 7}},
		{ID: "syntax-error", Text: "Unexpected end of file"},
	}).(*CompileError)
	test.AssertEqual(t, *err, CompileError{Kind: LexError, File: "a.js", Line: 3, Column: 7, Text: "Unterminated string literal"})
	test.AssertEqual(t, err.Error(), "a.js:3:7: Unterminated string literal")

	err = firstError([]Message{{Text: "Must provide at least one entry point"}}).(*CompileError)
	test.AssertEqual(t, err.Kind, OtherError)
	test.AssertEqual(t, err.Error(), "Must provide at least one entry point")
}

func TestValidateLogOverrides(t *testing.T) {
	test.AssertEqual(t, len(validateLogOverrides(nil)), 0)

	overrides := validateLogOverrides(map[string]LogLevel{
		"unreachable-code": LogLevelSilent,
		"no-such-message":  LogLevelError,
	})
	test.AssertEqual(t, len(overrides), 1)
	test.AssertEqual(t, overrides[logger.MsgID_JS_UnreachableCode], logger.LevelSilent)
}

func TestMessagesOfKind(t *testing.T) {
	source := logger.Source{PrettyPath: "a.js", Contents: "var a;\nvar a"}
	msgs := []logger.Msg{
		{
			ID:   logger.MsgID_JS_DuplicateDeclaration,
			Kind: logger.Warning,
			Data: logger.RangeData(&source, logger.Range{Loc: logger.Loc{Start: 11}, Len: 1}, "second"),
			Notes: []logger.MsgData{
				logger.RangeData(&source, logger.Range{Loc: logger.Loc{Start: 4}, Len: 1}, "first"),
			},
		},
		{Kind: logger.Error, Data: logger.MsgData{Text: "other"}},
	}

	warnings := messagesOfKind(logger.Warning, msgs)
	test.AssertEqual(t, len(warnings), 1)
	test.AssertEqual(t, warnings[0].ID, "duplicate-declaration")
	test.AssertEqual(t, *warnings[0].Location, Location{File: "a.js", Line: 2, Column: 5, Length: 1, LineText: "var a"})
	test.AssertEqual(t, *warnings[0].Notes[0].Location, Location{File: "a.js", Line: 1, Column: 5, Length: 1, LineText: "var a;"})

	errors := messagesOfKind(logger.Error, msgs)
	test.AssertEqual(t, len(errors), 1)
	if errors[0].Location != nil {
		t.Fatal("Expected no location")
	}
}
