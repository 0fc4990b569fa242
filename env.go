package mexer

import (
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Env is the persistent set of variables and user-defined functions shared by
// every evaluation in a session. Variables and functions are separate
// namespaces: defining a function f does not disturb a variable f, and the
// parser tells them apart by a trailing parenthesis.
//
// An Env is safe for concurrent use. Each operation is atomic on its own, but
// a sequence of statements run by one caller may interleave with another's.
type Env struct {
	mu    sync.RWMutex
	vars  map[string]float64
	funcs map[string]*Function
}

// Function is a user-defined function.
type Function struct {
	// Name is the name the function was defined with.
	Name string
	// Params are the parameter names, in order.
	Params []string

	body *node
}

// String formats the definition of the function.
func (f *Function) String() string {
	return f.Name + "(" + strings.Join(f.Params, ", ") + ") = " + f.body.String()
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{
		vars:  make(map[string]float64),
		funcs: make(map[string]*Function),
	}
}

// Lookup returns the value of a variable. If there is no such variable, the
// error is a *NameError.
func (env *Env) Lookup(name string) (float64, error) {
	v, ok := env.lookup(name)
	if !ok {
		return 0, &NameError{Name: name}
	}
	return v, nil
}

func (env *Env) lookup(name string) (float64, bool) {
	env.mu.RLock()
	v, ok := env.vars[name]
	env.mu.RUnlock()
	return v, ok
}

// Set sets the value of a variable, overwriting any previous value. Returns
// env for chaining.
func (env *Env) Set(name string, value float64) *Env {
	env.mu.Lock()
	env.vars[name] = value
	env.mu.Unlock()
	return env
}

// LookupFunc returns a user-defined function. If there is no such function,
// the error is a *FuncError.
func (env *Env) LookupFunc(name string) (*Function, error) {
	f, ok := env.function(name)
	if !ok {
		return nil, &FuncError{Name: name}
	}
	return f, nil
}

func (env *Env) function(name string) (*Function, bool) {
	env.mu.RLock()
	f, ok := env.funcs[name]
	env.mu.RUnlock()
	return f, ok
}

// define registers a function, replacing any previous definition regardless
// of its arity.
func (env *Env) define(name string, params []string, body *node) *Function {
	f := &Function{Name: name, Params: params, body: body}
	env.mu.Lock()
	env.funcs[name] = f
	env.mu.Unlock()
	return f
}

// Vars returns a copy of the variables in env.
func (env *Env) Vars() map[string]float64 {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return lo.Assign(env.vars)
}

// Names returns the names of the variables in env, sorted.
func (env *Env) Names() []string {
	env.mu.RLock()
	names := lo.Keys(env.vars)
	env.mu.RUnlock()
	sortstrs(names)
	return names
}

// Funcs returns the user-defined functions in env, sorted by name.
func (env *Env) Funcs() []*Function {
	env.mu.RLock()
	names := lo.Keys(env.funcs)
	fns := make([]*Function, 0, len(names))
	sortstrs(names)
	for _, name := range names {
		fns = append(fns, env.funcs[name])
	}
	env.mu.RUnlock()
	return fns
}

// Clone creates a copy of env. Function definitions are shared, since they
// are never modified after they are created.
func (env *Env) Clone() *Env {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return &Env{
		vars:  lo.Assign(env.vars),
		funcs: lo.Assign(env.funcs),
	}
}

// Reset removes all variables and functions from env.
func (env *Env) Reset() {
	env.mu.Lock()
	env.vars = make(map[string]float64)
	env.funcs = make(map[string]*Function)
	env.mu.Unlock()
}
