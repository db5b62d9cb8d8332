//go:build go1.18

package js_lexer

import (
	"testing"

	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/internal/test"
)

func FuzzLexJS(f *testing.F) {
	f.Add([]byte(`var x = 1;`))
	f.Add([]byte(`/regex/gimy`))
	f.Add([]byte(`/[/]*/g`))
	f.Add([]byte(`'\u0041\x43\101\n\t'`))
	f.Add([]byte(`0x1F + 017 + 019`))
	f.Add([]byte(`1.5e10`))
	f.Add([]byte(`@if @"verbatim ""quoted"" text"`))
	f.Add([]byte(`// comment
/* block comment */ /*! important */`))
	f.Add([]byte(`"\\""`))

	f.Fuzz(func(t *testing.T, data []byte) {
		log := logger.NewDeferLog()
		source := test.SourceForTest(string(data))

		// Every failure must be reported through the log before the lexer panics
		defer func() {
			if r := recover(); r != nil {
				if _, isLexerPanic := r.(LexerPanic); !isLexerPanic {
					panic(r)
				}
				if !log.HasErrors() {
					t.Fatal("Lexer panicked without reporting an error")
				}
			}
		}()

		lexer := NewLexer(log, source)
		for lexer.Token != TEndOfFile {
			if lexer.Token == TSlash || lexer.Token == TSlashEquals {
				lexer.ScanRegExp()
			}
			lexer.Next()
		}
	})
}
