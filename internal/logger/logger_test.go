package logger_test

import (
	"testing"

	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/internal/test"
)

func TestMsgIDs(t *testing.T) {
	for id := logger.MsgID_None; id <= logger.MsgID_END; id++ {
		str := logger.MsgIDToString(id)
		if str == "" {
			continue
		}

		overrides := make(map[logger.MsgID]logger.LogLevel)
		logger.StringToMsgIDs(str, logger.LevelError, overrides)
		if len(overrides) == 0 {
			t.Fatalf("Failed to find message id(s) for the string %q", str)
		}

		for k, v := range overrides {
			test.AssertEqual(t, logger.MsgIDToString(k), str)
			test.AssertEqual(t, v, logger.LevelError)
		}
	}
}

func TestLocation(t *testing.T) {
	source := logger.Source{PrettyPath: "file.js", Contents: "a\r\nbb\nccc = 1;\n"}
	loc := logger.LocationOrNil(&source, logger.Range{Loc: logger.Loc{Start: 10}, Len: 1})
	test.AssertEqual(t, loc.File, "file.js")
	test.AssertEqual(t, loc.Line, 3)
	test.AssertEqual(t, loc.Column, 5)
	test.AssertEqual(t, loc.LineText, "ccc = 1;")

	r := logger.Range{Loc: logger.Loc{Start: 7}, Len: 3}
	test.AssertEqual(t, r.End(), int32(10))
	test.AssertEqual(t, source.TextForRange(r), "ccc")
}

func TestMsgString(t *testing.T) {
	source := logger.Source{PrettyPath: "file.js", Contents: "var x = 1;\nvar x = 2;\n"}
	msg := logger.Msg{
		Kind: logger.Warning,
		Data: logger.RangeData(&source, logger.Range{Loc: logger.Loc{Start: 15}, Len: 1}, "\"x\" was already declared"),
		Notes: []logger.MsgData{
			logger.RangeData(&source, logger.Range{Loc: logger.Loc{Start: 4}, Len: 1}, "The first declaration is here:"),
		},
	}
	text := msg.String(logger.OutputOptions{IncludeSource: true}, logger.TerminalInfo{})
	test.AssertEqualWithDiff(t, text, `file.js:2:5: warning: "x" was already declared
var x = 2;
    ^
file.js:1:5: note: The first declaration is here:
var x = 1;
    ^
`)

	text = msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
	test.AssertEqualWithDiff(t, text, `file.js:2:5: warning: "x" was already declared
file.js:1:5: note: The first declaration is here:
`)
}

func TestMsgStringWideCharacters(t *testing.T) {
	source := logger.Source{PrettyPath: "file.js", Contents: "s = '日本' + @"}
	msg := logger.Msg{
		Kind: logger.Error,
		Data: logger.RangeData(&source, logger.Range{Loc: logger.Loc{Start: int32(len(source.Contents) - 1)}}, "Unexpected \"@\""),
	}
	text := msg.String(logger.OutputOptions{IncludeSource: true}, logger.TerminalInfo{})
	test.AssertEqualWithDiff(t, text, `file.js:1:16: error: Unexpected "@"
s = '日本' + @
             ^
`)
}

func TestFilterLog(t *testing.T) {
	log := logger.FilterLog(logger.NewDeferLog(), map[logger.MsgID]logger.LogLevel{
		logger.MsgID_JS_DebuggerStatement: logger.LevelSilent,
	})
	log.AddMsg(logger.Msg{ID: logger.MsgID_JS_DebuggerStatement, Kind: logger.Warning, Data: logger.MsgData{Text: "a"}})
	log.AddMsg(logger.Msg{ID: logger.MsgID_JS_UnreachableCode, Kind: logger.Warning, Data: logger.MsgData{Text: "b"}})
	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 1)
	test.AssertEqual(t, msgs[0].Data.Text, "b")
}
