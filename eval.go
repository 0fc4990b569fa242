package mexer

import (
	"math"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"go.uber.org/zap"
)

// DefaultMaxDepth is the default limit on nested calls of user-defined
// functions.
const DefaultMaxDepth = 256

// Session evaluates programs against a persistent environment, so that
// variables and functions defined by one call are visible to later ones.
// A Session may be used concurrently; see Env for the consistency guarantees.
type Session struct {
	env      *Env
	funcs    map[string]Func
	log      *zap.Logger
	maxDepth int
}

// SessionOption is an option used when creating a session.
type SessionOption interface {
	sessionOption()
}

type (
	envopt   struct{ env *Env }
	logopt   struct{ log *zap.Logger }
	funcsopt map[string]Func
	depthopt int
)

func (envopt) sessionOption()   {}
func (logopt) sessionOption()   {}
func (funcsopt) sessionOption() {}
func (depthopt) sessionOption() {}

// WithEnv uses env as the session's persistent environment instead of a new
// empty one.
func WithEnv(env *Env) SessionOption {
	return envopt{env}
}

// WithLogger sets the logger for the session. The default discards logs.
func WithLogger(log *zap.Logger) SessionOption {
	return logopt{log}
}

// Funcs sets a group of built-in functions. To disable a default function,
// set it to nil.
func Funcs(fns map[string]Func) SessionOption {
	return funcsopt(fns)
}

// MaxDepth sets the limit on nested calls of user-defined functions.
func MaxDepth(depth int) SessionOption {
	return depthopt(depth)
}

// NewSession creates a new session.
func NewSession(opts ...SessionOption) *Session {
	s := Session{
		funcs:    globalfuncs,
		log:      zap.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case envopt:
			s.env = opt.env
		case logopt:
			if opt.log != nil {
				s.log = opt.log
			}
		case funcsopt:
			fns := make(map[string]Func, len(s.funcs)+len(opt))
			for k, v := range s.funcs {
				fns[k] = v
			}
			for k, v := range opt {
				if v == nil {
					delete(fns, k)
					continue
				}
				fns[k] = v
			}
			s.funcs = fns
		case depthopt:
			s.maxDepth = int(opt)
		default:
			panic("mexer: unknown option type")
		}
	}
	if s.env == nil {
		s.env = NewEnv()
	}
	return &s
}

// Env returns the session's persistent environment.
func (s *Session) Env() *Env {
	return s.env
}

// Builtins returns the names of the built-in functions available in the
// session, sorted.
func (s *Session) Builtins() []string {
	names := lo.Keys(s.funcs)
	sortstrs(names)
	return names
}

// Exec parses src and runs it. The result is the value of the last
// statement.
func (s *Session) Exec(src string) (float64, error) {
	prog, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return s.Run(prog)
}

// Run evaluates each statement of prog in order against the session's
// environment and returns the value of the last. The first failing statement
// stops the run; statements before it keep their effects.
func (s *Session) Run(prog *Program) (float64, error) {
	ev := s.evaluator(nil)
	var r float64
	for _, n := range prog.stmts {
		v, err := ev.stmt(n)
		if err != nil {
			return 0, err
		}
		r = v
	}
	return r, nil
}

// Result parses and runs src, returning the outcome as a single value.
func (s *Session) Result(src string) mo.Result[float64] {
	r, err := s.Exec(src)
	if err != nil {
		return mo.Err[float64](err)
	}
	return mo.Ok(r)
}

// scope is a transient layer of variable bindings, e.g. function parameters
// or the plot variable, which shadows the environment.
type scope struct {
	names  []string
	vals   []float64
	parent *scope
}

func (sc *scope) lookup(name string) (float64, bool) {
	for ; sc != nil; sc = sc.parent {
		for i, k := range sc.names {
			if k == name {
				return sc.vals[i], true
			}
		}
	}
	return 0, false
}

// evaluator holds the state of one evaluation. It is not safe to share.
type evaluator struct {
	s *Session
	// base is the outermost transient scope, visible in function bodies as
	// well as at the top level.
	base  *scope
	depth int
}

func (s *Session) evaluator(base *scope) *evaluator {
	return &evaluator{s: s, base: base}
}

// stmt evaluates a top-level statement.
func (ev *evaluator) stmt(n *node) (float64, error) {
	switch n.kind {
	case nodeAssign:
		v, err := ev.eval(n.left, ev.base)
		if err != nil {
			return 0, err
		}
		ev.s.env.Set(n.name, v)
		ev.s.log.Debug("assigned variable", zap.String("name", n.name), zap.Float64("value", v))
		return v, nil
	case nodeDef:
		ev.s.env.define(n.name, n.params, n.left)
		ev.s.log.Debug("defined function", zap.String("name", n.name), zap.Strings("params", n.params))
		return 0, nil
	default:
		return ev.eval(n, ev.base)
	}
}

// variable resolves a name in the transient scope, then the environment, then
// the constants.
func (ev *evaluator) variable(name string, sc *scope) (float64, bool) {
	if v, ok := sc.lookup(name); ok {
		return v, true
	}
	if v, ok := ev.s.env.lookup(name); ok {
		return v, true
	}
	v, ok := globalconsts[name]
	return v, ok
}

// eval evaluates an expression node.
func (ev *evaluator) eval(n *node, sc *scope) (float64, error) {
	switch n.kind {
	case nodeNum:
		return n.num, nil
	case nodeName:
		v, ok := ev.variable(n.name, sc)
		if !ok {
			return 0, &NameError{Name: n.name}
		}
		return v, nil
	case nodeCall:
		return ev.call(n, sc)
	case nodeNeg:
		v, err := ev.eval(n.left, sc)
		return -v, err
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeMod, nodePow:
		l, err := ev.eval(n.left, sc)
		if err != nil {
			return 0, err
		}
		r, err := ev.eval(n.right, sc)
		if err != nil {
			return 0, err
		}
		return arith(n.kind, l, r)
	case nodeAssign, nodeDef:
		panic("mexer: eval on statement " + n.kind.String())
	default:
		panic("mexer: invalid AST node " + n.kind.String())
	}
}

// arith applies a binary operator.
func arith(op nodeKind, l, r float64) (float64, error) {
	switch op {
	case nodeAdd:
		return l + r, nil
	case nodeSub:
		return l - r, nil
	case nodeMul:
		return l * r, nil
	case nodeDiv:
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	case nodeMod:
		if r == 0 {
			return 0, ErrModuloByZero
		}
		// math.Mod truncates, so the result has the sign of l.
		return math.Mod(l, r), nil
	case nodePow:
		return math.Pow(l, r), nil
	default:
		panic("mexer: invalid operator " + op.String())
	}
}

// call evaluates name(args...). User-defined functions take precedence over
// built-in functions. If the name is neither but is a variable and there is
// exactly one argument, the call is a multiplication.
func (ev *evaluator) call(n *node, sc *scope) (float64, error) {
	if f, ok := ev.s.env.function(n.name); ok {
		if len(n.args) != len(f.Params) {
			return 0, &CallError{Func: n.name, Len: len(n.args), Want: len(f.Params)}
		}
		if ev.depth >= ev.s.maxDepth {
			return 0, &DepthError{Func: n.name, Depth: ev.s.maxDepth}
		}
		args, err := ev.args(n.args, sc)
		if err != nil {
			return 0, err
		}
		// Parameters shadow the base scope but not the caller's parameters.
		frame := &scope{names: f.Params, vals: args, parent: ev.base}
		ev.depth++
		v, err := ev.eval(f.body, frame)
		ev.depth--
		return v, err
	}
	if fn := ev.s.funcs[n.name]; fn != nil {
		if !fn.CanCall(len(n.args)) {
			return 0, &CallError{Func: n.name, Len: len(n.args), Want: -1}
		}
		args, err := ev.args(n.args, sc)
		if err != nil {
			return 0, err
		}
		return fn.Call(args), nil
	}
	if len(n.args) == 1 {
		if l, ok := ev.variable(n.name, sc); ok {
			r, err := ev.eval(n.args[0], sc)
			if err != nil {
				return 0, err
			}
			return l * r, nil
		}
	}
	return 0, &FuncError{Name: n.name}
}

// args evaluates call arguments in the caller's scope.
func (ev *evaluator) args(nodes []*node, sc *scope) ([]float64, error) {
	args := make([]float64, len(nodes))
	for i, a := range nodes {
		v, err := ev.eval(a, sc)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
