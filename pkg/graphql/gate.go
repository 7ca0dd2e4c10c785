// Mutation gating. Every query-execution request is parsed and classified
// before anything touches the network; a parse failure or a blocked mutation
// short-circuits without an upstream call.
package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Classification is the operation kind derived from parsing query text.
// It is computed fresh per request and never cached.
type Classification int

const (
	ClassificationQuery Classification = iota
	ClassificationMutation
	ClassificationSubscription
	ClassificationInvalid
)

// String returns the classification as lowercase text for logs.
func (c Classification) String() string {
	switch c {
	case ClassificationQuery:
		return "query"
	case ClassificationMutation:
		return "mutation"
	case ClassificationSubscription:
		return "subscription"
	default:
		return "invalid"
	}
}

// InvalidQueryError reports query text that failed to parse as GraphQL.
type InvalidQueryError struct {
	Err error
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid GraphQL query: %v", e.Err)
}

func (e *InvalidQueryError) Unwrap() error { return e.Err }

// Classify parses query text and derives its operation kind. A document
// containing multiple operations is classified as a mutation if any one of
// them is a mutation; the policy fails closed. Parse failures return
// ClassificationInvalid with an *InvalidQueryError.
func Classify(query string) (Classification, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return ClassificationInvalid, &InvalidQueryError{Err: err}
	}
	if len(doc.Operations) == 0 {
		return ClassificationInvalid, &InvalidQueryError{Err: fmt.Errorf("document contains no operations")}
	}

	class := ClassificationQuery
	for _, op := range doc.Operations {
		switch op.Operation {
		case ast.Mutation:
			return ClassificationMutation, nil
		case ast.Subscription:
			class = ClassificationSubscription
		}
	}
	return class, nil
}

// Gate enforces the mutation policy ahead of execution.
type Gate struct {
	// AllowMutations permits mutation operations when true. The default
	// policy blocks them.
	AllowMutations bool
}

// Check classifies query text and returns nil only when execution may
// proceed. Parse failures return an *InvalidQueryError; a mutation under a
// deny policy returns an error wrapping ErrMutationsDisabled. Check never
// performs network I/O, so a blocked request costs nothing upstream.
func (g Gate) Check(query string) error {
	class, err := Classify(query)
	if err != nil {
		return err
	}
	if class == ClassificationMutation && !g.AllowMutations {
		return fmt.Errorf("%w: mutation operations are not allowed (set ALLOW_MUTATIONS=true to enable them)", ErrMutationsDisabled)
	}
	return nil
}
