package graph

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/communityhq/community-api/auth"
)

// Request is the body of a POST /graphql call.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

type ResponseError struct {
	Message string `json:"message"`
}

type Response struct {
	Data   map[string]interface{} `json:"data,omitempty"`
	Errors []ResponseError        `json:"errors,omitempty"`
}

type resolverFunc func(ctx context.Context, field *ast.Field, vars map[string]interface{}) (interface{}, error)

// resolver pairs an operation implementation with its guard chain. The
// guard runs first; if it fails the resolver never runs.
type resolver struct {
	guard   auth.Guard
	resolve resolverFunc
}

// Executor runs admission-controlled queries against the resolver
// registry. Every operation passes the complexity gate before any resolver
// executes.
type Executor struct {
	svc       *auth.Service
	gate      *Gate
	queries   map[string]resolver
	mutations map[string]resolver
}

func NewExecutor(svc *auth.Service, maxComplexity int) (*Executor, error) {
	if svc == nil {
		return nil, errors.New("[NewExecutor] auth service is required")
	}
	e := &Executor{
		svc:  svc,
		gate: NewGate(maxComplexity),
	}
	e.registerResolvers()
	return e, nil
}

func (e *Executor) Execute(ctx context.Context, req Request) Response {
	doc, errList := gqlparser.LoadQuery(Schema(), req.Query)
	if len(errList) > 0 {
		resp := Response{}
		for _, gqlErr := range errList {
			resp.Errors = append(resp.Errors, ResponseError{Message: gqlErr.Message})
		}
		return resp
	}

	op, err := e.operation(doc, req.OperationName)
	if err != nil {
		return Response{Errors: []ResponseError{{Message: err.Error()}}}
	}

	// Admission control runs once per query, before anything resolves.
	if _, err := e.gate.Admit(doc, op); err != nil {
		return Response{Errors: []ResponseError{{Message: err.Error()}}}
	}

	registry := e.queries
	if op.Operation == ast.Mutation {
		registry = e.mutations
	}

	vars := req.Variables
	if vars == nil {
		vars = map[string]interface{}{}
	}

	resp := Response{Data: map[string]interface{}{}}
	for _, selection := range op.SelectionSet {
		field, ok := selection.(*ast.Field)
		if !ok {
			resp.Errors = append(resp.Errors, ResponseError{Message: "fragments are not supported at the operation root"})
			continue
		}

		value, err := e.resolveField(ctx, registry, field, vars)
		if err != nil {
			resp.Data[field.Alias] = nil
			resp.Errors = append(resp.Errors, ResponseError{Message: err.Error()})
			continue
		}
		resp.Data[field.Alias] = value
	}
	return resp
}

func (e *Executor) resolveField(ctx context.Context, registry map[string]resolver, field *ast.Field, vars map[string]interface{}) (interface{}, error) {
	r, ok := registry[field.Name]
	if !ok {
		return nil, errors.Errorf("no resolver registered for %q", field.Name)
	}

	if r.guard != nil {
		guardedCtx, err := r.guard(ctx)
		if err != nil {
			return nil, err
		}
		ctx = guardedCtx
	}
	return r.resolve(ctx, field, vars)
}

func (e *Executor) operation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name != "" {
		op := doc.Operations.ForName(name)
		if op == nil {
			return nil, errors.Errorf("unknown operation %q", name)
		}
		return op, nil
	}
	if len(doc.Operations) != 1 {
		return nil, errors.New("operationName is required when the document contains multiple operations")
	}
	return doc.Operations[0], nil
}
