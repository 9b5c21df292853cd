package graph

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/vektah/gqlparser/v2/ast"
)

const costDirectiveName = "cost"

// ComplexityError reports a query whose estimated cost reached the
// admission threshold. No resolver has run when it is returned.
type ComplexityError struct {
	Cost      int
	Threshold int
}

func (e *ComplexityError) Error() string {
	return fmt.Sprintf("query is too complex: complexity %d is over the maximum allowed complexity of %d", e.Cost, e.Threshold)
}

// Gate estimates the cost of an operation before execution and rejects it
// outright when the estimate reaches the threshold.
type Gate struct {
	threshold int
}

func NewGate(threshold int) *Gate {
	return &Gate{threshold: threshold}
}

// Admit returns the estimated cost, and an error when the operation must
// not execute. Costs below the threshold are logged for observability.
func (g *Gate) Admit(doc *ast.QueryDocument, op *ast.OperationDefinition) (int, error) {
	cost := Estimate(doc, op)
	if cost >= g.threshold {
		return cost, &ComplexityError{Cost: cost, Threshold: g.threshold}
	}
	if cost > 0 {
		log.Info().Int("complexity", cost).Msg("used query complexity points")
	}
	return cost, nil
}

// Estimate walks the operation's selected fields. Each field contributes
// the weight declared by its @cost directive, or 1 when undeclared; costs
// add across nested selections, and a declared multiplier scales a field's
// subtree cost.
func Estimate(doc *ast.QueryDocument, op *ast.OperationDefinition) int {
	return selectionSetCost(doc, op.SelectionSet)
}

func selectionSetCost(doc *ast.QueryDocument, set ast.SelectionSet) int {
	total := 0
	for _, selection := range set {
		switch sel := selection.(type) {
		case *ast.Field:
			total += fieldCost(doc, sel)
		case *ast.InlineFragment:
			total += selectionSetCost(doc, sel.SelectionSet)
		case *ast.FragmentSpread:
			if fragment := doc.Fragments.ForName(sel.Name); fragment != nil {
				total += selectionSetCost(doc, fragment.SelectionSet)
			}
		}
	}
	return total
}

func fieldCost(doc *ast.QueryDocument, field *ast.Field) int {
	weight, multiplier := costDirective(field.Definition)

	childCost := 0
	if len(field.SelectionSet) > 0 {
		childCost = selectionSetCost(doc, field.SelectionSet)
	}
	if multiplier > 0 {
		childCost *= multiplier
	}
	return weight + childCost
}

func costDirective(definition *ast.FieldDefinition) (weight, multiplier int) {
	weight = 1
	if definition == nil {
		return weight, 0
	}
	directive := definition.Directives.ForName(costDirectiveName)
	if directive == nil {
		return weight, 0
	}
	if w, ok := intArgument(directive, "weight"); ok {
		weight = w
	}
	if m, ok := intArgument(directive, "multiplier"); ok {
		multiplier = m
	}
	return weight, multiplier
}

func intArgument(directive *ast.Directive, name string) (int, bool) {
	arg := directive.Arguments.ForName(name)
	if arg == nil {
		return 0, false
	}
	value, err := strconv.Atoi(arg.Value.Raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
