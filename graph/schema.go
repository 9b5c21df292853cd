package graph

import (
	_ "embed"
	"sync"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphql
var schemaSDL string

var (
	schemaOnce sync.Once
	schema     *ast.Schema
)

// Schema returns the parsed query schema, loaded once per process.
func Schema() *ast.Schema {
	schemaOnce.Do(func() {
		schema = gqlparser.MustLoadSchema(&ast.Source{
			Name:  "schema.graphql",
			Input: schemaSDL,
		})
	})
	return schema
}
