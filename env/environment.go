// Package env implements the chained-scope environment that backs
// variable storage during evaluation. Closures capture the
// *Environment pointer of the frame active when they were declared, so
// every alias of that frame observes the same mutations — there is no
// snapshot-on-capture step.
package env

import "fmt"

// Environment is one lexical scope frame: an ordered set of bindings
// plus an optional link to the enclosing frame.
type Environment struct {
	values  map[string]any
	order   []string
	parent  *Environment
}

// NewEnvironment creates a frame. parent is nil for the global frame.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{values: map[string]any{}, parent: parent}
}

// Define creates or overwrites a binding in this frame. Re-running a
// `var` declaration for the same name in the same frame is allowed (the
// resolver already rejects it within a single block; the global frame
// permits redefinition, matching REPL-style redeclaration).
func (e *Environment) Define(name string, value any) {
	if _, exists := e.values[name]; !exists {
		e.order = append(e.order, name)
	}
	e.values[name] = value
}

// Delete removes a binding defined directly in this frame, if present.
// Used to let a host disable individual builtins in the global frame.
func (e *Environment) Delete(name string) {
	if _, ok := e.values[name]; !ok {
		return
	}
	delete(e.values, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Get looks up name starting in this frame and walking to enclosing
// frames.
func (e *Environment) Get(name string) (any, bool) {
	if v, ok := e.values[name]; ok {
		return v, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, false
}

// Assign mutates the nearest existing binding for name, walking to
// enclosing frames. It reports false if name is not bound anywhere in
// the chain.
func (e *Environment) Assign(name string, value any) bool {
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		return true
	}
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return false
}

// Ancestor walks up distance frames from e.
func (e *Environment) Ancestor(distance int) *Environment {
	frame := e
	for i := 0; i < distance; i++ {
		frame = frame.parent
	}
	return frame
}

// GetAt reads name from the frame distance hops up the chain, as
// determined by the resolver. It panics if name is missing there —
// that would mean the resolver and the environment chain have gone out
// of sync, which is a bug rather than a user-facing error.
func (e *Environment) GetAt(distance int, name string) any {
	frame := e.Ancestor(distance)
	v, ok := frame.values[name]
	if !ok {
		panic(fmt.Sprintf("env: resolved variable %q missing at distance %d", name, distance))
	}
	return v
}

// AssignAt mutates name in the frame distance hops up the chain.
func (e *Environment) AssignAt(distance int, name string, value any) {
	frame := e.Ancestor(distance)
	if _, ok := frame.values[name]; !ok {
		panic(fmt.Sprintf("env: resolved variable %q missing at distance %d", name, distance))
	}
	frame.values[name] = value
}

// Names returns the bindings defined directly in this frame, in
// declaration order.
func (e *Environment) Names() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}
