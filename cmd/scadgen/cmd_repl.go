package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/chazu/scadgen/pkg/output"
)

const (
	promptMain = "scad> "
	promptCont = "  ... "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive scene scripting",
	Long: "Read forms, evaluate them together with every earlier accepted form and print the program.\n" +
		"Commands: :quit, :reset, :show, :write <file>.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup()
		if err != nil {
			return err
		}

		cfg := &readline.Config{
			Prompt:          promptMain,
			InterruptPrompt: "^C",
			EOFPrompt:       ":quit",
		}
		if dir, err := resolveConfigDir(); err == nil && os.MkdirAll(dir, 0o755) == nil {
			cfg.HistoryFile = filepath.Join(dir, "history")
		}
		rl, err := readline.NewEx(cfg)
		if err != nil {
			return err
		}
		defer rl.Close()

		s := &replSession{app: app, out: rl.Stdout()}
		for {
			form, ok := readForm(rl)
			if !ok {
				return nil
			}
			if s.handle(form) {
				return nil
			}
		}
	},
}

// readForm reads lines until brackets balance. It returns false on EOF.
func readForm(rl *readline.Instance) (string, bool) {
	var b strings.Builder
	rl.SetPrompt(promptMain)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if b.Len() == 0 {
				continue
			}
			// Abandon the partial form.
			b.Reset()
			rl.SetPrompt(promptMain)
			continue
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if depth(b.String()) <= 0 {
			return b.String(), true
		}
		rl.SetPrompt(promptCont)
	}
}

// depth returns the open bracket count of src, ignoring strings and
// ; or // comments.
func depth(src string) int {
	d := 0
	inStr := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inStr {
			switch c {
			case '\\':
				i++
			case '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case ';':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
			}
		case '(', '[', '{':
			d++
		case ')', ']', '}':
			d--
		}
	}
	return d
}

// replSession holds the accepted forms. The engine is stateless, so every
// evaluation replays the whole session.
type replSession struct {
	app   *App
	out   io.Writer
	forms []string
}

func (s *replSession) source(extra string) string {
	return strings.Join(append(append([]string(nil), s.forms...), extra), "\n")
}

// handle processes one input and reports whether the session should end.
func (s *replSession) handle(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if strings.HasPrefix(input, ":") {
		return s.command(input)
	}

	r := s.app.Evaluate(s.source(input), Animation{})
	if !r.OK() {
		for _, e := range r.Errors {
			fmt.Fprintln(s.out, styleError.Render(e.Message))
		}
		return false
	}
	s.forms = append(s.forms, input)
	for _, w := range r.Warnings {
		fmt.Fprintln(s.out, styleWarning.Render(w.Message))
	}
	fmt.Fprintln(s.out, strings.TrimSpace(r.Program))
	return false
}

func (s *replSession) command(input string) bool {
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.forms = nil
		fmt.Fprintln(s.out, styleDim.Render("session cleared"))
	case ":show":
		fmt.Fprintln(s.out, s.source(""))
	case ":write":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, styleError.Render("usage: :write <file.scad>"))
			return false
		}
		r := s.app.Evaluate(s.source(""), Animation{})
		if !r.OK() {
			fmt.Fprintln(s.out, styleError.Render(r.Errors[0].Message))
			return false
		}
		path, err := output.WriteProgram(r.Program, output.Options{Path: fields[1]})
		if err != nil {
			fmt.Fprintln(s.out, styleError.Render(err.Error()))
			return false
		}
		fmt.Fprintln(s.out, path)
	default:
		fmt.Fprintln(s.out, "unknown command. Type :quit to exit.")
	}
	return false
}
