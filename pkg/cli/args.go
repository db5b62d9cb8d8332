package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsshrink/jsshrink/internal/helpers"
	"github.com/jsshrink/jsshrink/pkg/api"
)

// The defaults are different from the API since someone running the command
// usually wants to see what went wrong
func newCompileOptions() api.CompileOptions {
	return api.CompileOptions{
		ErrorLimit:      10,
		LogLevel:        api.LogLevelInfo,
		InlineConstants: true,
		LogOverride:     make(map[string]api.LogLevel),
	}
}

func ParseBuildOptions(osArgs []string) (options api.BuildOptions, err error) {
	options.CompileOptions = newCompileOptions()
	err = parseOptionsImpl(osArgs, &options, nil)
	return
}

func ParseTransformOptions(osArgs []string) (options api.TransformOptions, err error) {
	options.CompileOptions = newCompileOptions()
	err = parseOptionsImpl(osArgs, nil, &options)
	return
}

var booleanFlags = []string{
	"--formatted",
	"--debug-symbols",
	"--no-obfuscate",
	"--warnings",
	"--no-inline-constants",
	"--important-comments",
	"--verify",
}

var valueFlags = []string{
	"--line-limit=",
	"--keep=",
	"--log-override:",
	"--sourcefile=",
	"--outfile=",
	"--outdir=",
	"--error-limit=",
	"--color=",
	"--log-level=",
}

var flagTypos = func() helpers.TypoDetector {
	var valid []string
	valid = append(valid, booleanFlags...)
	for _, flag := range valueFlags {
		valid = append(valid, strings.TrimRight(flag, "=:"))
	}
	return helpers.MakeTypoDetector(valid)
}()

func parseOptionsImpl(osArgs []string, buildOpts *api.BuildOptions, transformOpts *api.TransformOptions) error {
	var options *api.CompileOptions
	if buildOpts != nil {
		options = &buildOpts.CompileOptions
	} else {
		options = &transformOpts.CompileOptions
	}

	for _, arg := range osArgs {
		switch {
		case arg == "--formatted":
			options.Formatted = true

		case arg == "--debug-symbols":
			options.SymbolDebug = true

		case arg == "--no-obfuscate":
			options.NoObfuscate = true

		case arg == "--warnings":
			options.Warnings = true

		case arg == "--no-inline-constants":
			options.InlineConstants = false

		case arg == "--important-comments":
			options.PreserveImportantComments = true

		case arg == "--verify":
			options.VerifyOutput = true

		case strings.HasPrefix(arg, "--line-limit="):
			value := arg[len("--line-limit="):]
			limit, err := strconv.Atoi(value)
			if err != nil || limit < 0 {
				return fmt.Errorf("Invalid line limit: %q", value)
			}
			options.LineLimit = limit

		case strings.HasPrefix(arg, "--keep="):
			options.KeepNames = append(options.KeepNames, arg[len("--keep="):])

		case strings.HasPrefix(arg, "--log-override:"):
			value := arg[len("--log-override:"):]
			equals := strings.IndexByte(value, '=')
			if equals == -1 {
				return fmt.Errorf("Missing \"=\": %q", value)
			}
			logLevel, err := parseLogLevel(value[equals+1:])
			if err != nil {
				return err
			}
			options.LogOverride[value[:equals]] = logLevel

		case strings.HasPrefix(arg, "--sourcefile=") && transformOpts != nil:
			transformOpts.Sourcefile = arg[len("--sourcefile="):]

		case strings.HasPrefix(arg, "--outfile=") && buildOpts != nil:
			buildOpts.Outfile = arg[len("--outfile="):]

		case strings.HasPrefix(arg, "--outdir=") && buildOpts != nil:
			buildOpts.Outdir = arg[len("--outdir="):]

		case strings.HasPrefix(arg, "--error-limit="):
			value := arg[len("--error-limit="):]
			limit, err := strconv.Atoi(value)
			if err != nil || limit < 0 {
				return fmt.Errorf("Invalid error limit: %q", value)
			}
			options.ErrorLimit = limit

		// Make sure this stays in sync with "PrintErrorToStderr"
		case strings.HasPrefix(arg, "--color="):
			value := arg[len("--color="):]
			switch value {
			case "false":
				options.Color = api.ColorNever
			case "true":
				options.Color = api.ColorAlways
			default:
				return fmt.Errorf("Invalid color: %q (valid: false, true)", value)
			}

		// Make sure this stays in sync with "PrintErrorToStderr"
		case strings.HasPrefix(arg, "--log-level="):
			logLevel, err := parseLogLevel(arg[len("--log-level="):])
			if err != nil {
				return err
			}
			options.LogLevel = logLevel

		case !strings.HasPrefix(arg, "-") && buildOpts != nil:
			buildOpts.EntryPoints = append(buildOpts.EntryPoints, arg)

		default:
			kind := "transform"
			if buildOpts != nil {
				kind = "build"
			}
			name := arg
			if equals := strings.IndexAny(arg, "=:"); equals != -1 {
				name = arg[:equals]
			}
			if corrected, ok := flagTypos.MaybeCorrectTypo(name); ok && corrected != name {
				return fmt.Errorf("Invalid %s flag: %q (did you mean %q?)", kind, arg, corrected+arg[len(name):])
			}
			return fmt.Errorf("Invalid %s flag: %q", kind, arg)
		}
	}

	return nil
}

func parseLogLevel(value string) (api.LogLevel, error) {
	switch value {
	case "info":
		return api.LogLevelInfo, nil
	case "warning":
		return api.LogLevelWarning, nil
	case "error":
		return api.LogLevelError, nil
	case "silent":
		return api.LogLevelSilent, nil
	default:
		return api.LogLevelSilent, fmt.Errorf("Invalid log level: %q (valid: info, warning, error, silent)", value)
	}
}
