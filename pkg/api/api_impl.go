package api

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jsshrink/jsshrink/internal/access"
	"github.com/jsshrink/jsshrink/internal/config"
	"github.com/jsshrink/jsshrink/internal/helpers"
	"github.com/jsshrink/jsshrink/internal/js_ast"
	"github.com/jsshrink/jsshrink/internal/js_parser"
	"github.com/jsshrink/jsshrink/internal/js_printer"
	"github.com/jsshrink/jsshrink/internal/js_scope"
	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/internal/verify"
)

func validateColor(value StderrColor) logger.StderrColor {
	switch value {
	case ColorIfTerminal:
		return logger.ColorIfTerminal
	case ColorNever:
		return logger.ColorNever
	case ColorAlways:
		return logger.ColorAlways
	default:
		panic("Invalid color")
	}
}

func validateLogLevel(value LogLevel) logger.LogLevel {
	switch value {
	case LogLevelInfo:
		return logger.LevelInfo
	case LogLevelWarning:
		return logger.LevelWarning
	case LogLevelError:
		return logger.LevelError
	case LogLevelSilent:
		return logger.LevelSilent
	default:
		panic("Invalid log level")
	}
}

func validateLogOverrides(input map[string]LogLevel) map[logger.MsgID]logger.LogLevel {
	if len(input) == 0 {
		return nil
	}
	output := make(map[logger.MsgID]logger.LogLevel)
	for id, level := range input {
		logger.StringToMsgIDs(id, validateLogLevel(level), output)
	}
	return output
}

func newLog(options CompileOptions) logger.Log {
	var log logger.Log
	if options.LogLevel == LogLevelSilent {
		log = logger.NewDeferLog()
	} else {
		log = logger.NewStderrLog(logger.OutputOptions{
			IncludeSource: true,
			ErrorLimit:    options.ErrorLimit,
			Color:         validateColor(options.Color),
			LogLevel:      validateLogLevel(options.LogLevel),
		})
	}
	return logger.FilterLog(log, validateLogOverrides(options.LogOverride))
}

func validateOptions(log logger.Log, options CompileOptions) config.Options {
	result := config.Options{
		Formatted:                 options.Formatted,
		SymbolDebug:               options.SymbolDebug,
		NoObfuscate:               options.NoObfuscate,
		LineLimit:                 options.LineLimit,
		Warnings:                  options.Warnings,
		InlineConstants:           options.InlineConstants,
		PreserveImportantComments: options.PreserveImportantComments,
		Policy:                    options.Policy,
	}

	if options.LineLimit < 0 {
		log.AddMsg(logger.Msg{Kind: logger.Error, Data: logger.MsgData{Text: fmt.Sprintf(
			"Invalid line limit: %d", options.LineLimit)}})
	}

	if len(options.KeepNames) > 0 {
		if options.Policy != nil {
			log.AddMsg(logger.Msg{Kind: logger.Error, Data: logger.MsgData{Text: "Cannot use both \"KeepNames\" and \"Policy\""}})
		} else if policy, err := access.Compile(options.KeepNames); err != nil {
			log.AddMsg(logger.Msg{Kind: logger.Error, Data: logger.MsgData{Text: err.Error()}})
		} else {
			result.Policy = policy
		}
	}

	return result
}

// Runs the whole pipeline over one file. Everything here is single-threaded
// and nothing is shared with other files except the log.
func compileFile(log logger.Log, source logger.Source, options config.Options, verifyOutput bool) (js []byte, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.AddMsg(logger.Msg{
				Kind:  logger.Error,
				Data:  logger.MsgData{Text: fmt.Sprintf("panic: %v while compiling %q", r, source.PrettyPath)},
				Notes: []logger.MsgData{{Text: helpers.PrettyPrintedStack()}},
			})
			js, ok = nil, false
		}
	}()

	tree, ok := js_parser.Parse(log, source)
	if !ok {
		return nil, false
	}

	scopes := js_scope.Analyze(log, source, &tree, options)
	if options.InlineConstants {
		js_scope.SubstituteConstants(scopes, &tree)
	}
	js_ast.SimplifyStmts(tree.Stmts)
	js_scope.ComputeRanks(scopes)

	result := js_printer.Print(tree, scopes, js_printer.Options{
		LineLimit:         options.LineLimit,
		MinifyWhitespace:  !options.Formatted,
		MinifyIdentifiers: !options.NoObfuscate,
		SymbolDebug:       options.SymbolDebug,
		ImportantComments: options.PreserveImportantComments,
		Policy:            options.PolicyOrDefault(),
	})

	if verifyOutput {
		verify.Output(log, source, result.JS)
	}
	return result.JS, true
}

func convertLocation(location *logger.MsgLocation) *Location {
	if location == nil {
		return nil
	}
	return &Location{
		File:     location.File,
		Line:     location.Line,
		Column:   location.Column,
		Length:   location.Length,
		LineText: location.LineText,
	}
}

func messagesOfKind(kind logger.MsgKind, msgs []logger.Msg) []Message {
	var filtered []Message
	for _, msg := range msgs {
		if msg.Kind == kind {
			var notes []Note
			for _, note := range msg.Notes {
				notes = append(notes, Note{
					Text:     note.Text,
					Location: convertLocation(note.Location),
				})
			}
			filtered = append(filtered, Message{
				ID:       logger.MsgIDToString(msg.ID),
				Text:     msg.Data.Text,
				Location: convertLocation(msg.Data.Location),
				Notes:    notes,
			})
		}
	}
	return filtered
}

func firstError(errors []Message) error {
	if len(errors) == 0 {
		return nil
	}
	msg := errors[0]
	err := &CompileError{Kind: OtherError, Text: msg.Text}
	switch msg.ID {
	case "lex-error":
		err.Kind = LexError
	case "syntax-error":
		err.Kind = SyntaxError
	}
	if msg.Location != nil {
		err.File = msg.Location.File
		err.Line = msg.Location.Line
		err.Column = msg.Location.Column
	}
	return err
}

////////////////////////////////////////////////////////////////////////////////
// Build API

func buildImpl(options BuildOptions) BuildResult {
	log := newLog(options.CompileOptions)
	compileOptions := validateOptions(log, options.CompileOptions)

	if len(options.EntryPoints) == 0 {
		log.AddMsg(logger.Msg{Kind: logger.Error, Data: logger.MsgData{Text: "Must provide at least one entry point"}})
	} else if options.Outfile != "" && options.Outdir != "" {
		log.AddMsg(logger.Msg{Kind: logger.Error, Data: logger.MsgData{Text: "Cannot use both \"outfile\" and \"outdir\""}})
	} else if options.Outdir == "" && len(options.EntryPoints) > 1 {
		log.AddMsg(logger.Msg{Kind: logger.Error, Data: logger.MsgData{Text: "Must use \"outdir\" when there are multiple input files"}})
	}

	// Stop now if there were errors
	if log.HasErrors() {
		msgs := log.Done()
		return BuildResult{
			Errors:   messagesOfKind(logger.Error, msgs),
			Warnings: messagesOfKind(logger.Warning, msgs),
		}
	}

	// Files share nothing but the log, so compile them all at once
	outputFiles := make([]OutputFile, len(options.EntryPoints))
	succeeded := make([]bool, len(options.EntryPoints))
	waitGroup := sync.WaitGroup{}
	for i, entryPoint := range options.EntryPoints {
		waitGroup.Add(1)
		go func(i int, entryPoint string) {
			defer waitGroup.Done()
			contents, err := os.ReadFile(entryPoint)
			if err != nil {
				log.AddMsg(logger.Msg{Kind: logger.Error, Data: logger.MsgData{Text: fmt.Sprintf(
					"Could not read from file %q: %s", entryPoint, err.Error())}})
				return
			}
			source := logger.Source{
				Index:      uint32(i),
				PrettyPath: entryPoint,
				Contents:   string(contents),
			}
			js, ok := compileFile(log, source, compileOptions, options.VerifyOutput)
			outputFiles[i] = OutputFile{Path: outputPath(options, entryPoint), Contents: js}
			succeeded[i] = ok
		}(i, entryPoint)
	}
	waitGroup.Wait()

	msgs := log.Done()
	result := BuildResult{
		Errors:   messagesOfKind(logger.Error, msgs),
		Warnings: messagesOfKind(logger.Warning, msgs),
	}

	// A build either produces every file or none of them
	if len(result.Errors) == 0 {
		for i, ok := range succeeded {
			if ok {
				result.OutputFiles = append(result.OutputFiles, outputFiles[i])
			}
		}
	}
	return result
}

func outputPath(options BuildOptions, entryPoint string) string {
	switch {
	case options.Outfile != "":
		return options.Outfile
	case options.Outdir != "":
		return filepath.Join(options.Outdir, filepath.Base(entryPoint))
	default:
		return "<stdout>"
	}
}

////////////////////////////////////////////////////////////////////////////////
// Transform API

func transformImpl(input string, options TransformOptions) TransformResult {
	log := newLog(options.CompileOptions)
	compileOptions := validateOptions(log, options.CompileOptions)

	// Stop now if there were errors
	if log.HasErrors() {
		msgs := log.Done()
		return TransformResult{
			Errors:   messagesOfKind(logger.Error, msgs),
			Warnings: messagesOfKind(logger.Warning, msgs),
		}
	}

	sourcefile := options.Sourcefile
	if sourcefile == "" {
		sourcefile = "<stdin>"
	}
	source := logger.Source{
		PrettyPath: sourcefile,
		Contents:   input,
	}
	js, ok := compileFile(log, source, compileOptions, options.VerifyOutput)

	msgs := log.Done()
	result := TransformResult{
		Errors:   messagesOfKind(logger.Error, msgs),
		Warnings: messagesOfKind(logger.Warning, msgs),
	}
	if ok && len(result.Errors) == 0 {
		result.Code = js
	}
	return result
}
