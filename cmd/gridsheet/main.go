// Package main provides the CLI entry point for gridsheet.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"gridsheet"
)

var (
	inputPath  string
	outputPath string
	setExprs   []string
	verbose    bool

	renderWidth  float64
	renderHeight float64
	scrollX      float64
	scrollY      float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridsheet",
		Short: "Spreadsheet engine workbench",
		Long: `gridsheet loads, edits, evaluates and renders workbook JSON files
using the gridsheet engine.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				gridsheet.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&inputPath, "file", "f", "", "Workbook JSON file (default: empty workbook)")
	rootCmd.PersistentFlags().StringArrayVar(&setExprs, "set", nil, "Cell assignment, e.g. A1=5 or 'B2==A1*2' (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine diagnostics to stderr")

	evalCmd := &cobra.Command{
		Use:   "eval [address...]",
		Short: "Evaluate cells and print their computed values",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runEval,
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the workbook as JSON",
		Args:  cobra.NoArgs,
		RunE:  runDump,
	}
	dumpCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")

	renderCmd := &cobra.Command{
		Use:   "render output.png",
		Short: "Render the active sheet to a PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().Float64Var(&renderWidth, "width", 800, "Viewport width in pixels")
	renderCmd.Flags().Float64Var(&renderHeight, "height", 600, "Viewport height in pixels")
	renderCmd.Flags().Float64Var(&scrollX, "scroll-x", 0, "Horizontal scroll offset")
	renderCmd.Flags().Float64Var(&scrollY, "scroll-y", 0, "Vertical scroll offset")

	rootCmd.AddCommand(evalCmd, dumpCmd, renderCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadWorkbook builds the workbook from --file if given, then applies every
// --set assignment in order.
func loadWorkbook() (*gridsheet.Workbook, error) {
	wb := gridsheet.NewWorkbook()

	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read workbook: %w", err)
		}
		if err := wb.Deserialize(data); err != nil {
			return nil, fmt.Errorf("failed to load workbook: %w", err)
		}
	}

	for _, expr := range setExprs {
		addr, value, ok := strings.Cut(expr, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment: %s (want ADDR=VALUE)", expr)
		}
		if err := wb.Set(addr, parseLiteral(value)); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", addr, err)
		}
	}
	return wb, nil
}

// parseLiteral interprets an assignment's right-hand side: formulas keep
// their leading '=', numbers and booleans convert, everything else is text.
func parseLiteral(s string) gridsheet.Value {
	if strings.HasPrefix(s, "=") {
		return s
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return s
}

func runEval(cmd *cobra.Command, args []string) error {
	wb, err := loadWorkbook()
	if err != nil {
		return err
	}

	for _, addr := range args {
		v, err := wb.Get(addr)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", addr, err)
		}
		fmt.Printf("%s\t%v\n", addr, v)
	}
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	wb, err := loadWorkbook()
	if err != nil {
		return err
	}

	data, err := wb.Serialize()
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		return os.WriteFile(outputPath, data, 0644)
	}
	fmt.Println(string(data))
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	wb, err := loadWorkbook()
	if err != nil {
		return err
	}

	vp := gridsheet.Viewport{
		ScrollX: scrollX,
		ScrollY: scrollY,
		Width:   renderWidth,
		Height:  renderHeight,
	}

	ctx := gg.NewContext(int(renderWidth), int(renderHeight))
	renderer := gridsheet.NewRenderer()
	renderer.SetState(gridsheet.NewRenderState(wb))
	renderer.SetViewport(vp)
	if err := renderer.Paint(ctx); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if err := ctx.SavePNG(args[0]); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}
	return nil
}
