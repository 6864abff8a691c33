// Command gohdlgen emits synthesizable HDL text for one of the built-in
// demo circuits via hdl.Emitter, writing it under an output directory —
// the CLI surface for spec.md §6's "toolchain invocation is out of
// scope; the emitter only returns the output" contract.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/gohdl/cmd/internal/demo"
	"github.com/sarchlab/gohdl/hdl"
)

func main() {
	var (
		circuitName string
		outDir      string
	)

	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Emit HDL text for a built-in demo circuit",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := demo.Build(circuitName)
			if err != nil {
				return err
			}
			if err := d.Root.ConnectAll(); err != nil {
				return fmt.Errorf("gohdlgen: %w", err)
			}

			text, err := hdl.NewEmitter().EmitAll(d.Root, circuitName)
			if err != nil {
				return fmt.Errorf("gohdlgen: emit failed: %w", err)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("gohdlgen: %w", err)
			}
			path := filepath.Join(outDir, circuitName+".v")
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return fmt.Errorf("gohdlgen: %w", err)
			}

			fmt.Printf("gohdlgen: wrote %s\n", path)
			return nil
		},
	}
	genCmd.Flags().StringVar(&circuitName, "circuit", "shot", fmt.Sprintf("demo circuit to emit (one of %v)", demo.Names()))
	genCmd.Flags().StringVar(&outDir, "out", "./gohdl-out", "output directory for emitted HDL files")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the built-in demo circuits",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range demo.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd := &cobra.Command{
		Use:   "gohdlgen",
		Short: "Emit synthesizable HDL text for gohdl demo circuits",
	}
	rootCmd.AddCommand(genCmd, listCmd)

	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
