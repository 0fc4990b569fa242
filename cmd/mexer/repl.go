package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/zephyrtronium/mexer"
)

const replHelp = `Enter a program to evaluate it, e.g. "f(a) = a^2; f(3) + 2pi".
Assignments and definitions persist between lines.

  :vars    list variables
  :funcs   list user-defined functions
  :reset   remove all variables and functions
  :help    show this message
  :quit    exit`

var cyan = color.New(color.FgCyan).SprintFunc()

func runRepl(sess *mexer.Session, cmd *replCmd) error {
	hist := cmd.History
	if hist == "" {
		home, _ := os.UserHomeDir()
		hist = filepath.Join(home, ".mexer_history")
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if f, err := os.Open(hist); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(hist); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		line, err := ln.Prompt("> ")
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, liner.ErrPromptAborted):
			fmt.Println()
			return nil
		case err != nil:
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if strings.HasPrefix(line, ":") {
			if replCommand(sess, line, os.Stdout) {
				return nil
			}
			continue
		}
		r := sess.Result(line)
		if r.IsError() {
			fmt.Fprintln(os.Stderr, red(mexer.FormatError(r.Error())))
			continue
		}
		fmt.Println(mexer.Format(r.MustGet()))
	}
}

// replCommand runs a REPL command and reports whether the REPL should exit.
func replCommand(sess *mexer.Session, line string, out io.Writer) bool {
	env := sess.Env()
	switch strings.ToLower(line) {
	case ":quit", ":q", ":exit":
		return true
	case ":vars":
		vars := env.Vars()
		for _, name := range env.Names() {
			fmt.Fprintf(out, "%s = %s\n", cyan(name), mexer.Format(vars[name]))
		}
	case ":funcs":
		for _, f := range env.Funcs() {
			fmt.Fprintln(out, f)
		}
	case ":reset":
		env.Reset()
	case ":help":
		fmt.Fprintln(out, replHelp)
	default:
		fmt.Fprintln(out, red("unknown command "+line+"; type :help for commands"))
	}
	return false
}
