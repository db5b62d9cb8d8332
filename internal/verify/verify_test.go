package verify

import (
	"strings"
	"testing"

	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/internal/test"
)

func TestValidOutput(t *testing.T) {
	log := logger.NewDeferLog()
	ok := Output(log, test.SourceForTest("original"), []byte("function a(b){return b+1}a(2)"))
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, len(log.Done()), 0)
}

func TestInvalidOutput(t *testing.T) {
	log := logger.NewDeferLog()
	ok := Output(log, test.SourceForTest("original"), []byte("var a=1;\nvar if=2"))
	test.AssertEqual(t, ok, false)

	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 1)
	msg := msgs[0]
	test.AssertEqual(t, msg.ID, logger.MsgID_JS_UnverifiedOutput)
	test.AssertEqual(t, msg.Kind, logger.Warning)
	test.AssertEqual(t, msg.Data.Location.File, "<stdin> (output)")
	test.AssertEqual(t, msg.Data.Location.Line, 2)
	if !strings.HasPrefix(msg.Data.Text, "The output could not be parsed again: ") {
		t.Fatalf("Unexpected message %q", msg.Data.Text)
	}
}

func TestLocForPosition(t *testing.T) {
	test.AssertEqual(t, locForPosition("abc\ndef", 1, 1), logger.Loc{Start: 0})
	test.AssertEqual(t, locForPosition("abc\ndef", 1, 3), logger.Loc{Start: 2})
	test.AssertEqual(t, locForPosition("abc\ndef", 2, 2), logger.Loc{Start: 5})
	test.AssertEqual(t, locForPosition("abc\ndef", 3, 1), logger.Loc{Start: 7})
	test.AssertEqual(t, locForPosition("abc", 1, 10), logger.Loc{Start: 3})
}
