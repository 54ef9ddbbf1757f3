package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/chinook/engine"
	"github.com/syssam/chinook/relation"
)

// DefaultParallelism bounds how many items of one list resolve at once.
const DefaultParallelism = 16

// Observer is notified once per request, after execution or rejection.
type Observer interface {
	ObserveOperation(operation string, took time.Duration, resp *Response)
}

// Executor executes GraphQL requests against the chinook schema.
// It is safe for concurrent use.
type Executor struct {
	schema      *ast.Schema
	engine      *engine.Engine
	rel         *relation.Resolver
	log         *slog.Logger
	batching    atomic.Bool
	parallelism int
	observer    Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(l *slog.Logger) Option {
	return func(x *Executor) {
		x.log = l
	}
}

// WithBatching enables or disables relation batching.
func WithBatching(on bool) Option {
	return func(x *Executor) {
		x.batching.Store(on)
	}
}

// WithParallelism bounds how many items of one list resolve at once. The
// bound does not apply to batched requests: there every item of a list has
// to reach the relation loaders before the batch is dispatched.
func WithParallelism(n int) Option {
	return func(x *Executor) {
		if n > 0 {
			x.parallelism = n
		}
	}
}

// WithObserver registers an observer, typically a metrics collector.
func WithObserver(o Observer) Option {
	return func(x *Executor) {
		x.observer = o
	}
}

// New returns an Executor resolving root fields through eng and relation
// fields through rel.
func New(eng *engine.Engine, rel *relation.Resolver, opts ...Option) (*Executor, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}
	x := &Executor{
		schema:      s,
		engine:      eng,
		rel:         rel,
		log:         slog.Default(),
		parallelism: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// SetBatching switches relation batching for requests started afterwards.
func (x *Executor) SetBatching(on bool) {
	x.batching.Store(on)
}

// Execute runs req. It never returns nil; failures are reported in the
// response.
func (x *Executor) Execute(ctx context.Context, req *Request) (resp *Response) {
	var (
		start = time.Now()
		name  = req.OperationName
	)
	defer func() {
		x.log.DebugContext(ctx, "graphql request executed",
			"operation", name,
			"duration", time.Since(start),
			"errors", len(resp.Errors),
			"executed", resp.Executed,
		)
		if x.observer != nil {
			x.observer.ObserveOperation(name, time.Since(start), resp)
		}
	}()
	doc, errs := gqlparser.LoadQuery(x.schema, req.Query)
	if len(errs) > 0 {
		return &Response{Errors: requestErrors(CodeValidation, errs...)}
	}
	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		msg := "must provide operation name if query contains multiple operations"
		if req.OperationName != "" {
			msg = "unknown operation named \"" + req.OperationName + "\""
		}
		return &Response{Errors: requestErrors(CodeUnknownOperation, gqlerror.Errorf("%s", msg))}
	}
	name = op.Name
	if op.Operation != ast.Query {
		return &Response{Errors: requestErrors(CodeValidation, gqlerror.Errorf("%s operations are not supported", op.Operation))}
	}
	vars, err := validator.VariableValues(x.schema, op, req.Variables)
	if err != nil {
		var gerr *gqlerror.Error
		if !errors.As(err, &gerr) {
			gerr = &gqlerror.Error{Err: err, Message: err.Error()}
		}
		return &Response{Errors: requestErrors(CodeBadVariables, gerr)}
	}
	batched := x.batching.Load()
	if batched {
		ctx = x.rel.Batching(ctx)
	}
	e := &execution{Executor: x, doc: doc, vars: vars, batched: batched}
	data, ok := e.object(ctx, x.schema.Query.Name, op.SelectionSet, nil, nil)
	resp = &Response{Executed: true, Errors: e.sortedErrors()}
	if ok {
		resp.Data = data
	}
	return resp
}

// execution holds the state of one request.
type execution struct {
	*Executor
	doc     *ast.QueryDocument
	vars    map[string]any
	batched bool

	mu   sync.Mutex
	errs gqlerror.List
}

func (e *execution) fail(err *gqlerror.Error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

// sortedErrors returns the errors ordered by path, so that concurrently
// resolved list items report in a stable order.
func (e *execution) sortedErrors() gqlerror.List {
	e.mu.Lock()
	defer e.mu.Unlock()
	slices.SortStableFunc(e.errs, func(a, b *gqlerror.Error) int {
		return comparePaths(a.Path, b.Path)
	})
	return e.errs
}

func comparePaths(a, b ast.Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch ai := a[i].(type) {
		case ast.PathIndex:
			if bi, ok := b[i].(ast.PathIndex); ok && ai != bi {
				return int(ai) - int(bi)
			}
		case ast.PathName:
			if bn, ok := b[i].(ast.PathName); ok {
				if c := strings.Compare(string(ai), string(bn)); c != 0 {
					return c
				}
			}
		}
	}
	return len(a) - len(b)
}

// fieldGroup is the set of fields sharing one response key.
type fieldGroup struct {
	key    string
	fields []*ast.Field
}

// collect flattens set for an object of type typeName, applying fragments
// and @skip/@include, and groups the fields by response key.
func (e *execution) collect(set ast.SelectionSet, typeName string) []*fieldGroup {
	var (
		groups  []*fieldGroup
		index   = make(map[string]*fieldGroup)
		visited = make(map[string]bool)
	)
	var walk func(ast.SelectionSet)
	walk = func(set ast.SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *ast.Field:
				if !e.included(sel.Directives) {
					continue
				}
				key := sel.Alias
				if key == "" {
					key = sel.Name
				}
				g, ok := index[key]
				if !ok {
					g = &fieldGroup{key: key}
					index[key] = g
					groups = append(groups, g)
				}
				g.fields = append(g.fields, sel)
			case *ast.InlineFragment:
				if e.included(sel.Directives) && applies(sel.TypeCondition, typeName) {
					walk(sel.SelectionSet)
				}
			case *ast.FragmentSpread:
				if visited[sel.Name] || !e.included(sel.Directives) {
					continue
				}
				visited[sel.Name] = true
				def := sel.Definition
				if def == nil {
					def = e.doc.Fragments.ForName(sel.Name)
				}
				if def != nil && applies(def.TypeCondition, typeName) {
					walk(def.SelectionSet)
				}
			}
		}
	}
	walk(set)
	return groups
}

// applies reports whether a fragment with the type condition applies to an
// object of type typeName. The schema has no interfaces or unions.
func applies(cond, typeName string) bool {
	return cond == "" || cond == typeName
}

func (e *execution) included(dirs ast.DirectiveList) bool {
	if d := dirs.ForName("skip"); d != nil {
		if skip, _ := d.ArgumentMap(e.vars)["if"].(bool); skip {
			return false
		}
	}
	if d := dirs.ForName("include"); d != nil {
		if include, _ := d.ArgumentMap(e.vars)["if"].(bool); !include {
			return false
		}
	}
	return true
}

// object resolves the selections of set on src, an object of type typeName.
// It returns false when a null reached a non-null field, in which case the
// object itself is null.
func (e *execution) object(ctx context.Context, typeName string, set ast.SelectionSet, path ast.Path, src any) (*Object, bool) {
	groups := e.collect(set, typeName)
	obj := NewObject(len(groups))
	def := e.schema.Types[typeName]
	for _, g := range groups {
		f := g.fields[0]
		fpath := extend(path, ast.PathName(g.key))
		if f.Name == "__typename" {
			obj.Set(g.key, typeName)
			continue
		}
		fdef := f.Definition
		if fdef == nil && def != nil {
			fdef = def.Fields.ForName(f.Name)
		}
		if fdef == nil {
			e.fail(fieldError(errUnknownField(typeName, f.Name), f, fpath))
			obj.Set(g.key, nil)
			continue
		}
		v, err := e.safeResolve(ctx, typeName, f, src)
		if err != nil {
			e.internal(ctx, err, fpath)
			e.fail(fieldError(err, f, fpath))
			v = nil
		}
		res, ok := e.complete(ctx, fdef.Type, g.fields, fpath, v)
		if !ok {
			return nil, false
		}
		obj.Set(g.key, res)
	}
	return obj, true
}

// safeResolve is resolve with panics turned into internal field errors.
// List items resolve on their own goroutines, out of reach of any recovery
// middleware.
func (e *execution) safeResolve(ctx context.Context, typeName string, f *ast.Field, src any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("graph: panic resolving %s.%s: %v\n%s", typeName, f.Name, r, debug.Stack())
		}
	}()
	return e.resolve(ctx, typeName, f, src)
}

// complete shapes a resolved value v according to typ. It returns false
// when v is null in a non-null position and the null has to bubble up.
func (e *execution) complete(ctx context.Context, typ *ast.Type, fields []*ast.Field, path ast.Path, v any) (any, bool) {
	if typ.NonNull {
		inner := *typ
		inner.NonNull = false
		res, ok := e.complete(ctx, &inner, fields, path, v)
		return res, ok && res != nil
	}
	if v == nil {
		return nil, true
	}
	if typ.Elem != nil {
		items, _ := v.([]any)
		return e.list(ctx, typ.Elem, fields, path, items), true
	}
	if def := e.schema.Types[typ.NamedType]; def != nil && def.Kind == ast.Object {
		var set ast.SelectionSet
		for _, f := range fields {
			set = append(set, f.SelectionSet...)
		}
		obj, ok := e.object(ctx, typ.NamedType, set, path, v)
		if !ok {
			return nil, true
		}
		return obj, true
	}
	return v, true
}

// list completes the items of a list concurrently. The list is null when
// any non-null item is.
func (e *execution) list(ctx context.Context, elem *ast.Type, fields []*ast.Field, path ast.Path, items []any) any {
	var (
		out    = make([]any, len(items))
		failed atomic.Bool
		g      errgroup.Group
	)
	if e.batched {
		g.SetLimit(-1)
	} else {
		g.SetLimit(e.parallelism)
	}
	for i, item := range items {
		g.Go(func() error {
			res, ok := e.complete(ctx, elem, fields, extend(path, ast.PathIndex(i)), item)
			if !ok {
				failed.Store(true)
			}
			out[i] = res
			return nil
		})
	}
	_ = g.Wait()
	if failed.Load() {
		return nil
	}
	return out
}

// internal logs errors that are reported to the caller without detail.
// Storage failures are logged where they happen.
func (e *execution) internal(ctx context.Context, err error, path ast.Path) {
	if fieldError(err, nil, path).Message == msgInternal {
		e.log.ErrorContext(ctx, "field resolution failed", "path", path.String(), "error", err)
	}
}

func extend(path ast.Path, el ast.PathElement) ast.Path {
	return append(path[:len(path):len(path)], el)
}
