package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/scadgen/pkg/output"
)

var (
	flagOutput       string
	flagOutDir       string
	flagOmitSource   bool
	flagSteps        int
	flagBackAndForth bool
	flagPreview      bool
	flagImage        string
	flagStdout       bool
)

var renderCmd = &cobra.Command{
	Use:   "render <script>...",
	Short: "Evaluate scripts and write .scad programs",
	Long: "Evaluate each script and write the program next to it with a .scad extension.\n" +
		"With --steps the script must define (frame t) and an animated program is written.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagOutput != "" && len(args) > 1 {
			return fmt.Errorf("--output needs exactly one script, got %d", len(args))
		}
		app, err := setup()
		if err != nil {
			return err
		}
		anim := Animation{Steps: flagSteps, BackAndForth: flagBackAndForth}

		if flagStdout {
			for _, path := range args {
				src, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				r := app.Evaluate(string(src), anim)
				printDiagnostics(path, r)
				if !r.OK() {
					return fmt.Errorf("%s: %d error(s)", filepath.Base(path), len(r.Errors))
				}
				fmt.Fprint(cmd.OutOrStdout(), r.Program)
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		for _, path := range args {
			out, r, err := app.RenderFile(path, anim, output.Options{
				Path:       flagOutput,
				OutDir:     flagOutDir,
				OmitSource: flagOmitSource,
			})
			printDiagnostics(path, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if flagPreview {
				if err := runPreview(ctx, app, out); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func runPreview(ctx context.Context, app *App, scadPath string) error {
	res, err := app.Preview(ctx, scadPath, flagImage)
	if err != nil {
		if res != nil && res.Stderr != "" {
			fmt.Fprint(os.Stderr, styleDim.Render(res.Stderr))
		}
		return err
	}
	fmt.Fprintln(os.Stdout, res.Output)
	return nil
}

func init() {
	renderCmd.Flags().StringVarP(&flagOutput, "output", "o", "",
		"output file (default: script path with .scad extension)")
	renderCmd.Flags().StringVar(&flagOutDir, "out-dir", "",
		"directory receiving the generated files")
	renderCmd.Flags().BoolVar(&flagOmitSource, "omit-source", false,
		"do not append the script source as a trailing comment")
	renderCmd.Flags().IntVar(&flagSteps, "steps", 0,
		"render an animation with this many frames (script defines frame)")
	renderCmd.Flags().BoolVar(&flagBackAndForth, "back-and-forth", false,
		"play the animation forward then backward")
	renderCmd.Flags().BoolVar(&flagPreview, "preview", false,
		"run the CAD engine on the written program")
	renderCmd.Flags().StringVar(&flagImage, "image", "",
		"preview output path (default: program path with .png extension)")
	renderCmd.Flags().BoolVar(&flagStdout, "stdout", false,
		"print programs instead of writing files")
}
