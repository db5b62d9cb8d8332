package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/pkg/api"
)

func Run(osArgs []string) int {
	return runImpl(osArgs, os.Stdin, os.Stdout)
}

func runImpl(osArgs []string, stdin io.Reader, stdout io.Writer) int {
	buildOptions, transformOptions, err := parseOptionsForRun(osArgs)

	switch {
	case buildOptions != nil:
		// Run the build and stop if there were errors
		result := api.Build(*buildOptions)
		if len(result.Errors) > 0 {
			return 1
		}

		// Special-case writing to stdout
		if buildOptions.Outfile == "" && buildOptions.Outdir == "" {
			if len(result.OutputFiles) != 1 {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Internal error: did not expect to generate %d files when writing to stdout", len(result.OutputFiles)))
				return 1
			} else if _, err := stdout.Write(result.OutputFiles[0].Contents); err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to write to stdout: %s", err.Error()))
				return 1
			}
			return 0
		}

		for _, outputFile := range result.OutputFiles {
			if err := os.MkdirAll(filepath.Dir(outputFile.Path), 0755); err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to create output directory: %s", err.Error()))
				return 1
			} else if err := os.WriteFile(outputFile.Path, outputFile.Contents, 0644); err != nil {
				logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
					"Failed to write to output file: %s", err.Error()))
				return 1
			}
		}

	case transformOptions != nil:
		// Read the input from stdin
		bytes, err := io.ReadAll(stdin)
		if err != nil {
			logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
				"Could not read from stdin: %s", err.Error()))
			return 1
		}

		// Run the transform and stop if there were errors
		result := api.Transform(string(bytes), *transformOptions)
		if len(result.Errors) > 0 {
			return 1
		}

		// Write the output to stdout
		if _, err := stdout.Write(result.Code); err != nil {
			logger.PrintErrorToStderr(osArgs, fmt.Sprintf(
				"Failed to write to stdout: %s", err.Error()))
			return 1
		}

	case err != nil:
		logger.PrintErrorToStderr(osArgs, err.Error())
		return 1
	}

	return 0
}

// This returns either BuildOptions, TransformOptions, or an error
func parseOptionsForRun(osArgs []string) (*api.BuildOptions, *api.TransformOptions, error) {
	// If there's an input file, then we're building
	for _, arg := range osArgs {
		if !strings.HasPrefix(arg, "-") {
			options, err := ParseBuildOptions(osArgs)
			if err != nil {
				return nil, nil, err
			}
			return &options, nil, nil
		}
	}

	// Otherwise, we're transforming stdin
	options, err := ParseTransformOptions(osArgs)
	if err != nil {
		return nil, nil, err
	}
	return nil, &options, nil
}
