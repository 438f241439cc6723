// Command scadgen evaluates scene scripts into CAD DSL programs.
//
//	scadgen render box.lisp            # writes box.scad next to the script
//	scadgen render -o out.scad --preview box.lisp
//	scadgen signatures gears.scad      # list the modules a DSL file defines
//	scadgen repl
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagSearchPath []string
	flagLogLevel   string
	flagHeader     string
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Build CAD DSL programs from scene scripts",
	Long: appName + " evaluates Lisp scene scripts and writes the equivalent CAD DSL program.\n\n" +
		"DSL files named by (use ...) and (include-scad ...) are looked up in the search path:\n" +
		"config search_path, then $" + envSearchPath + ", then --search-path.",
}

func main() {
	rootCmd.AddCommand(renderCmd, signaturesCmd, replCmd)

	rootCmd.PersistentFlags().StringArrayVarP(&flagSearchPath, "search-path", "I", nil,
		"directory searched for DSL files (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		"log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagHeader, "header", "",
		"text emitted at the top of every program, e.g. \"$fn = 64;\"")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("Error:"), err.Error())
		os.Exit(1)
	}
}

// setup loads the config, applies the global flags and builds the App.
func setup() (*App, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagHeader != "" {
		cfg.Header = flagHeader
	}
	logger, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return NewApp(cfg, resolveSearchPath(cfg, flagSearchPath), logger), nil
}

// printDiagnostics writes errors and warnings to stderr.
func printDiagnostics(name string, r EvalResult) {
	for _, e := range r.Errors {
		loc := name
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d", name, e.Line)
		}
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", styleError.Render("error"), loc, e.Message)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", styleWarning.Render("warning"), name, w.Message)
	}
}
