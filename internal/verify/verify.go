package verify

// The printer has to get a lot of small things right (parentheses, spaces
// between operators, semicolons) and a mistake in any of them results in
// code that no longer parses, or that parses as something else entirely.
// This runs the output through an unrelated JavaScript parser as a last line
// of defense. A failure here is always a bug in this compiler or input that
// uses syntax only this compiler accepts, such as catch guards.

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/parser"

	"github.com/jsshrink/jsshrink/internal/logger"
)

// Returns false and logs a warning against the output if the output doesn't
// parse. The original source is only used for its name.
func Output(log logger.Log, source logger.Source, js []byte) bool {
	_, err := parser.ParseFile(nil, source.PrettyPath, string(js), 0)
	if err == nil {
		return true
	}

	output := logger.Source{
		Index:      source.Index,
		PrettyPath: source.PrettyPath + " (output)",
		Contents:   string(js),
	}

	text := err.Error()
	r := logger.Range{}
	if list, ok := err.(parser.ErrorList); ok && len(list) > 0 {
		text = list[0].Message
		r.Loc = locForPosition(output.Contents, list[0].Position.Line, list[0].Position.Column)
	}

	log.AddID(logger.MsgID_JS_UnverifiedOutput, logger.Warning, &output, r,
		fmt.Sprintf("The output could not be parsed again: %s", text))
	return false
}

// Converts a 1-based line and column into a byte offset, clamping anything
// out of range to the end of the text
func locForPosition(contents string, line int, column int) logger.Loc {
	offset := 0
	for line > 1 {
		newline := strings.IndexByte(contents[offset:], '\n')
		if newline < 0 {
			return logger.Loc{Start: int32(len(contents))}
		}
		offset += newline + 1
		line--
	}
	if column > 1 {
		offset += column - 1
	}
	if offset > len(contents) {
		offset = len(contents)
	}
	return logger.Loc{Start: int32(offset)}
}
