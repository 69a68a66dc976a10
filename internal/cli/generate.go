package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/busgen/internal/codegen"
	"github.com/roach88/busgen/internal/compiler"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	OutputDir     string
	Package       string
	RuntimeImport string
	FileSuffix    string
}

// GeneratedFile describes one written proxy file.
type GeneratedFile struct {
	Interface string `json:"interface"`
	TypeName  string `json:"type_name"`
	Source    string `json:"source"`
	Path      string `json:"path"`
	Hash      string `json:"hash"`
}

// GenerateResult lists the files written by generate.
type GenerateResult struct {
	Package string          `json:"package"`
	Files   []GeneratedFile `json:"files"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <declarations-dir>",
		Short: "Generate Go client proxies from declarations",
		Long: `Generate one Go client proxy file per declared interface.

Nothing is written unless every declaration compiles. Flags override the
generate section of the configuration file.

Examples:
  busgen generate ./api
  busgen generate ./api --output-dir ./internal/busproxy --package busproxy`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "directory for generated files (default from config)")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "package name of generated files (default from config)")
	cmd.Flags().StringVar(&opts.RuntimeImport, "runtime-import", "", "import path of the proxy runtime")
	cmd.Flags().StringVar(&opts.FileSuffix, "file-suffix", "", "suffix appended to the lowercased interface name")

	return cmd
}

// resolve fills unset flags from the configuration.
func (o *GenerateOptions) resolve() {
	cfg := o.config().Generate
	if o.OutputDir == "" {
		o.OutputDir = cfg.Output
	}
	if o.Package == "" {
		o.Package = cfg.Package
	}
	if o.RuntimeImport == "" {
		o.RuntimeImport = cfg.RuntimeImport
	}
	if o.FileSuffix == "" {
		o.FileSuffix = cfg.FileSuffix
	}
}

func runGenerate(opts *GenerateOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.logger()
	opts.resolve()

	loadResult, loadErrors := LoadDeclarations(dir, LoadModeCollectAll, log)
	if loadResult == nil {
		return outputLoadFailure(formatter, loadErrors[0])
	}
	if len(loadErrors) > 0 {
		_ = formatter.Errors("Generation failed", toCLIErrors(loadErrors))
		return NewExitError(ExitCommandError, fmt.Sprintf("generation failed with %d error(s)", len(loadErrors)))
	}

	if errs := compiler.Validate(loadResult.Specs()); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	if errs := outputCollisions(loadResult.Declarations, opts.FileSuffix); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	// Render everything before touching the output directory.
	type rendered struct {
		file GeneratedFile
		src  []byte
	}
	var out []rendered
	for _, d := range loadResult.Declarations {
		src, err := codegen.Emit(d.Spec, codegen.Options{
			Package:       opts.Package,
			RuntimeImport: opts.RuntimeImport,
			Source:        d.File,
		})
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "emitting proxy", err)
		}
		out = append(out, rendered{
			file: GeneratedFile{
				Interface: d.Spec.Interface,
				TypeName:  d.Spec.TypeName,
				Source:    d.File,
				Path:      filepath.Join(opts.OutputDir, codegen.FileName(d.Spec, opts.FileSuffix)),
				Hash:      d.Spec.Hash,
			},
			src: src,
		})
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("creating output directory: %v", err), nil)
		return WrapExitError(ExitCommandError, "writing output", err)
	}

	result := GenerateResult{Package: opts.Package, Files: []GeneratedFile{}}
	for _, r := range out {
		if err := os.WriteFile(r.file.Path, r.src, 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", r.file.Path, err), nil)
			return WrapExitError(ExitCommandError, "writing output", err)
		}
		log.Debug().
			Str("interface", r.file.Interface).
			Str("path", r.file.Path).
			Int("bytes", len(r.src)).
			Msg("wrote proxy")
		result.Files = append(result.Files, r.file)
	}

	log.Info().Int("files", len(result.Files)).Str("dir", opts.OutputDir).Msg("generated proxies")

	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Generated %d proxy file(s) in package %s\n\n", len(result.Files), result.Package)
	for _, f := range result.Files {
		fmt.Fprintf(formatter.Writer, "  %s -> %s\n", f.TypeName, f.Path)
	}
	return nil
}

// outputCollisions reports declarations whose proxies would be written to the
// same file. File names are lowercased, so distinct proxy types can collide.
func outputCollisions(decls []Declaration, suffix string) []compiler.ValidationError {
	var errs []compiler.ValidationError
	owner := make(map[string]string)
	for _, d := range decls {
		name := codegen.FileName(d.Spec, suffix)
		if prev, ok := owner[name]; ok {
			errs = append(errs, compiler.ValidationError{
				Field:   d.File,
				Message: fmt.Sprintf("output file %q is also written by %s", name, prev),
				Code:    compiler.ErrDuplicateName,
			})
			continue
		}
		owner[name] = d.Spec.TypeName
	}
	return errs
}
