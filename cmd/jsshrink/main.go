package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/pkg/cli"
)

const jsshrinkVersion = "0.3.0"

const helpText = `
Usage:
  jsshrink [options] [input files]

Options:
  --outfile=...            The output file (for one input file)
  --outdir=...             The output directory (for multiple input files)
  --formatted              Indent the output instead of minifying it
  --no-obfuscate           Keep every identifier's original name
  --keep=PATTERN           Keep the names of matching declarations
  --warnings               Report suspicious code
  --color=...              Force use of color terminal escapes (true or false)

Advanced options:
  --version                Print the current version and exit (` + jsshrinkVersion + `)
  --debug-symbols          Describe the renaming of each scope in a comment
  --line-limit=...         Wrap minified output after this many bytes per line
  --no-inline-constants    Don't replace reads of numeric constants
  --important-comments     Keep "/*!" comments at the top of the output
  --verify                 Parse the output again and warn if that fails
  --sourcefile=...         Set the file name used in messages (for stdin)
  --error-limit=...        Maximum error count or 0 to disable (default 10)
  --log-level=...          Disable logging (info, warning, error, silent)
  --log-override:X=Y       Use log level Y for message X (e.g. unreachable-code)

Keep patterns:
  [global:|function:|catch:]PATTERN where PATTERN is a name ("init"), a path
  of named functions ("lib.init"), a glob ("lib.*", "**.init"), or a regular
  expression ("/^on[A-Z]/")

Examples:
  # Produces dist/app.js and dist/lib.js
  jsshrink app.js lib.js --outdir=dist

  # Keep every name declared directly inside "function api"
  jsshrink app.js --outfile=out.js --keep=api.*

  # Provide input via stdin, get output via stdout
  jsshrink --formatted < input.js > output.js
`

func main() {
	osArgs := os.Args[1:]
	traceFile := ""
	cpuprofileFile := ""

	// Do an initial scan over the argument list
	argsEnd := 0
	for _, arg := range osArgs {
		switch {
		// Show help if a common help flag is provided
		case arg == "-h", arg == "-help", arg == "--help", arg == "/?":
			fmt.Fprintf(os.Stderr, "%s\n", helpText)
			os.Exit(0)

		// Special-case the version flag here
		case arg == "--version":
			fmt.Fprintf(os.Stderr, "%s\n", jsshrinkVersion)
			os.Exit(0)

		case strings.HasPrefix(arg, "--trace="):
			traceFile = arg[len("--trace="):]

		case strings.HasPrefix(arg, "--cpuprofile="):
			cpuprofileFile = arg[len("--cpuprofile="):]

		default:
			// Strip any arguments that were handled above
			osArgs[argsEnd] = arg
			argsEnd++
		}
	}
	osArgs = osArgs[:argsEnd]

	// Print help text when there are no arguments
	if len(osArgs) == 0 && logger.GetTerminalInfo(os.Stdin).IsTTY {
		fmt.Fprintf(os.Stderr, "%s\n", helpText)
		os.Exit(0)
	}

	// Capture the defer statements below so the "done" message comes last
	exitCode := 1
	func() {
		// To view a CPU trace, use "go tool trace [file]"
		if traceFile != "" {
			f, err := os.Create(traceFile)
			if err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to create trace file: %s", err.Error()))
				return
			}
			defer f.Close()
			trace.Start(f)
			defer trace.Stop()
		}

		// To view a CPU profile, use "go tool pprof [file]"
		if cpuprofileFile != "" {
			f, err := os.Create(cpuprofileFile)
			if err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to create cpuprofile file: %s", err.Error()))
				return
			}
			defer f.Close()
			pprof.StartCPUProfile(f)
			defer pprof.StopCPUProfile()
		}

		// Disable the GC since we're just going to allocate a bunch of memory
		// and then exit anyway
		debug.SetGCPercent(-1)

		exitCode = cli.Run(osArgs)
	}()

	os.Exit(exitCode)
}
