package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazu/scadgen/pkg/catalog"
)

var signaturesCmd = &cobra.Command{
	Use:   "signatures [file.scad]...",
	Short: "List callable signatures",
	Long: "List the modules and functions defined by DSL files, as the engine exposes them.\n" +
		"With no arguments, list the built-in catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(args) == 0 {
			r := catalog.Builtins()
			sigs := make([]*catalog.Signature, 0, r.Len())
			for _, name := range r.Names() {
				s, _ := r.Lookup(name)
				sigs = append(sigs, s)
			}
			printSignatures(w, "built-in", sigs)
			return nil
		}
		for _, path := range args {
			lib, err := app.Library(path)
			if err != nil {
				return err
			}
			printSignatures(w, lib.Directive, lib.Signatures())
		}
		return nil
	},
}

func printSignatures(w io.Writer, title string, sigs []*catalog.Signature) {
	fmt.Fprintln(w, styleTitle.Render(title))
	for _, s := range sigs {
		line := "  " + styleName.Render(s.String())
		if s.HostName() != s.Name {
			line += styleDim.Render("  (as " + s.HostName() + ")")
		}
		if s.Doc != "" {
			line += styleDim.Render("  " + s.Doc)
		}
		fmt.Fprintln(w, line)
	}
}
