package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/fatih/color"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/zephyrtronium/mexer"
	"github.com/zephyrtronium/mexer/internal/sample"
	"github.com/zephyrtronium/mexer/internal/server"
)

type evalCmd struct {
	In    string   `arg:"--in" help:"input file with one program per line, or - for stdin (default stdin if no exprs given)"`
	Echo  bool     `arg:"--echo" help:"print parse trees"`
	Exprs []string `arg:"positional" help:"programs to evaluate in order"`
}

type plotCmd struct {
	Expr    string   `arg:"positional,required" help:"program to plot over x"`
	Min     float64  `arg:"--min" default:"-10" help:"smallest x"`
	Max     float64  `arg:"--max" default:"10" help:"largest x"`
	Step    float64  `arg:"--step" default:"0.01" help:"distance between samples"`
	Given   []string `arg:"--given,separate" help:"name=value variable definition (any number of times)"`
	Workers int      `arg:"--workers,env:MEXER_WORKERS" help:"goroutines to sample with (default GOMAXPROCS)"`
	Limit   int      `arg:"--max-samples,env:MEXER_MAX_SAMPLES" default:"1000000" help:"largest number of samples"`
}

type replCmd struct {
	History string `arg:"--history,env:MEXER_HISTORY" help:"history file (default ~/.mexer_history)"`
}

type args struct {
	Verbose  bool         `arg:"-v,--verbose,env:MEXER_VERBOSE" help:"log evaluation details"`
	MaxDepth int          `arg:"--max-depth,env:MEXER_MAX_DEPTH" default:"256" help:"limit on nested function calls"`
	Eval     *evalCmd     `arg:"subcommand:eval" help:"evaluate programs and print their results"`
	Plot     *plotCmd     `arg:"subcommand:plot" help:"sample a program over x and print CSV"`
	Repl     *replCmd     `arg:"subcommand:repl" help:"interactive calculator"`
	Serve    *server.Args `arg:"subcommand:serve" help:"serve a calculator over HTTP"`
}

func (args) Description() string {
	return "mexer evaluates arithmetic programs with variables and functions."
}

var red = color.New(color.FgRed).SprintFunc()

func main() {
	var a args
	p := arg.MustParse(&a)
	log, err := logger(a.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
	defer log.Sync()
	sess := mexer.NewSession(mexer.WithLogger(log), mexer.MaxDepth(a.MaxDepth))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	switch {
	case a.Eval != nil:
		err = runEval(sess, a.Eval, os.Stdout)
	case a.Plot != nil:
		err = runPlot(ctx, sess, log, a.Plot, os.Stdout)
	case a.Repl != nil:
		err = runRepl(sess, a.Repl)
	case a.Serve != nil:
		err = server.New(sess, log, *a.Serve).ListenAndServe(ctx)
	default:
		p.WriteHelp(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}

func logger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// runEval evaluates each program in one session, so that later programs see
// the definitions of earlier ones.
func runEval(sess *mexer.Session, cmd *evalCmd, out io.Writer) error {
	var ins []io.Reader
	switch {
	case cmd.In == "-", cmd.In == "" && len(cmd.Exprs) == 0:
		ins = append(ins, os.Stdin)
	case cmd.In != "":
		f, err := os.Open(cmd.In)
		if err != nil {
			return err
		}
		defer f.Close()
		ins = append(ins, f)
	}
	for _, e := range cmd.Exprs {
		ins = append(ins, strings.NewReader(e))
	}
	for _, in := range ins {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			evalLine(sess, line, cmd.Echo, out)
		}
		if err := sc.Err(); err != nil {
			return err
		}
	}
	return nil
}

func evalLine(sess *mexer.Session, src string, echo bool, out io.Writer) {
	if echo {
		if prog, err := mexer.Parse(src); err == nil {
			fmt.Fprintf(out, "%v : ", prog)
		}
	}
	r := sess.Result(src)
	if r.IsError() {
		fmt.Fprintln(out, red(mexer.FormatError(r.Error())))
		return
	}
	fmt.Fprintln(out, mexer.Format(r.MustGet()))
}

// given parses a name=value definition. The value may be any program, which
// is evaluated in sess.
func given(sess *mexer.Session, def string) error {
	d := strings.SplitN(def, "=", 2)
	if len(d) != 2 {
		return fmt.Errorf(`variable definitions must be "name=value", not %q`, def)
	}
	name, val := strings.TrimSpace(d[0]), strings.TrimSpace(d[1])
	v, err := sess.Exec(val)
	if err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	sess.Env().Set(name, v)
	return nil
}

func runPlot(ctx context.Context, sess *mexer.Session, log *zap.Logger, cmd *plotCmd, out io.Writer) error {
	for _, g := range cmd.Given {
		if err := given(sess, g); err != nil {
			return err
		}
	}
	r := sample.Range{Min: cmd.Min, Max: cmd.Max, Step: cmd.Step, Limit: cmd.Limit}
	if err := r.Validate(); err != nil {
		return err
	}
	prog, err := mexer.Parse(cmd.Expr)
	if err != nil {
		return errors.New(mexer.FormatError(err))
	}
	if !lo.Contains(prog.Vars(), mexer.PlotVar) {
		log.Warn("plotted program does not use x", zap.String("expr", cmd.Expr))
	}
	p, err := sess.Prepare(cmd.Expr)
	if err != nil {
		return errors.New(mexer.FormatError(err))
	}
	workers := cmd.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	xs := r.Xs()
	ys, err := p.ManyParallel(ctx, xs, workers)
	if err != nil {
		return err
	}
	pts := sample.Finite(xs, ys)
	if len(pts) < 2 {
		return fmt.Errorf("%w: %d of %d", sample.ErrTooFewPoints, len(pts), len(xs))
	}
	w := csv.NewWriter(out)
	w.Write([]string{"x", "y"})
	for _, pt := range pts {
		w.Write([]string{mexer.Format(pt.X), mexer.Format(pt.Y)})
	}
	w.Flush()
	return w.Error()
}
