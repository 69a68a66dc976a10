package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/busgen/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the resolved proxy models.
type CompilationResult struct {
	IRVersion string         `json:"ir_version"`
	Proxies   []ir.ProxySpec `json:"proxies"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <declarations-dir>",
		Short: "Compile interface declarations to resolved proxy models",
		Long: `Compile CUE and YAML interface declarations to resolved proxy models.

Every declaration is parsed, its bus names resolved and its methods
classified into calls, property getters and property setters. All
problems are reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write resolved models as JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadDeclarations(dir, LoadModeCollectAll, opts.logger())
	if loadResult == nil {
		return outputLoadFailure(formatter, loadErrors[0])
	}

	formatter.VerboseLog("Found %d declaration file(s) in %s", loadResult.FileCount, dir)
	for _, d := range loadResult.Declarations {
		formatter.VerboseLog("Compiled interface: %s (%s)", d.Spec.Name, d.File)
	}

	if len(loadErrors) > 0 {
		_ = formatter.Errors("Compilation failed", toCLIErrors(loadErrors))
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(loadErrors)))
	}

	result := &CompilationResult{
		IRVersion: ir.IRVersion,
		Proxies:   loadResult.Specs(),
	}

	if opts.Output != "" {
		if err := writeModels(result, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output", err)
		}
	}

	log := opts.logger()
	log.Info().
		Int("files", loadResult.FileCount).
		Int("interfaces", len(result.Proxies)).
		Msg("compiled declarations")

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d interface(s)\n\n", len(result.Proxies))

	for _, p := range result.Proxies {
		fmt.Fprintf(w, "  %s: %s at %s on %s\n", p.TypeName, p.Interface, p.DefaultPath, p.DefaultService)
		for _, m := range p.Members {
			fmt.Fprintf(w, "    %-10s %s -> %s\n", m.Kind, m.GoName, m.WireName)
		}
	}
	fmt.Fprintln(w)

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote resolved models to %s\n", outputFile)
	}

	return nil
}

// outputLoadFailure reports an error that prevented reading any declaration.
func outputLoadFailure(formatter *OutputFormatter, err error) error {
	code, message := ErrCodeGeneric, err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
	}
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// toCLIErrors converts load errors for output.
func toCLIErrors(errs []error) []CLIError {
	out := make([]CLIError, len(errs))
	for i, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			out[i] = CLIError{Code: loadErr.Code, Message: loadErr.Message}
			if loadErr.Pos.IsValid() {
				out[i].Pos = loadErr.Pos.String()
			}
			continue
		}
		out[i] = CLIError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	return out
}

// writeModels writes the compilation result as indented JSON.
func writeModels(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling models: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
