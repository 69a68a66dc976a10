package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/busgen/wire"
)

// WireRow is one entry of the wire type table.
type WireRow struct {
	Kind      string `json:"kind"`
	Signature string `json:"signature"`
	Alignment int    `json:"alignment"`
	GoType    string `json:"go_type"`
}

// WireResult is the wire type table for one format.
type WireResult struct {
	Format string    `json:"format"`
	Kinds  []WireRow `json:"kinds"`
}

// NewWireCommand creates the wire command.
func NewWireCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "wire",
		Short: "Print the wire type table",
		Long: `Print the signature character, alignment and Go type of every
primitive wire kind under one wire format.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWire(rootOpts, format, cmd)
		},
	}

	cmd.Flags().StringVar(&format, "wire-format", wire.FormatDBus.String(), "wire format (dbus|gvariant)")

	return cmd
}

// BuildWireTable returns the registry rows for f in kind order.
func BuildWireTable(f wire.Format) WireResult {
	result := WireResult{Format: f.String()}
	for _, k := range wire.Kinds() {
		result.Kinds = append(result.Kinds, WireRow{
			Kind:      k.String(),
			Signature: wire.SignatureString(k),
			Alignment: wire.Alignment(k, f),
			GoType:    k.GoType(),
		})
	}
	return result
}

func runWire(opts *RootOptions, format string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	f, err := wire.ParseFormat(format)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid wire format", err)
	}

	result := BuildWireTable(f)
	if formatter.JSON() {
		return formatter.Success(result)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "KIND\tSIG\tALIGN\tGO TYPE\n")
	for _, row := range result.Kinds {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", row.Kind, row.Signature, row.Alignment, row.GoType)
	}
	return tw.Flush()
}
