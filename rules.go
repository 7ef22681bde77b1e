package formsync

import (
	"fmt"

	"github.com/goliatone/go-formsync/pkg/rules"
)

// ValidationRule builds a ValidationPredicate from an expression evaluated
// with the response status bound to `status`, e.g. "status == 422 || status
// == 400". A nil evaluator uses expr. Results that are not true, including
// evaluation errors, count as "not a validation failure".
func ValidationRule(evaluator rules.Evaluator, expression string) (ValidationPredicate, error) {
	compiled, err := compileRule(evaluator, expression)
	if err != nil {
		return nil, err
	}
	return func(status int) bool {
		out, err := compiled.Evaluate(rules.Context{Snapshot: map[string]any{"status": status}})
		if err != nil {
			return false
		}
		matched, ok := out.(bool)
		return ok && matched
	}, nil
}

// TransformRule builds a TransformFunc from an expression that returns the
// payload to submit. Field names are bound as variables and the whole
// payload is available as `data`, unless a field is itself named "data", in
// which case the field value is bound instead. The expression must produce a
// map.
func TransformRule(evaluator rules.Evaluator, expression string) (TransformFunc, error) {
	compiled, err := compileRule(evaluator, expression)
	if err != nil {
		return nil, err
	}
	return func(data FieldData) (FieldData, error) {
		snapshot := make(map[string]any, len(data)+1)
		snapshot["data"] = data
		for key, value := range data {
			snapshot[key] = value
		}
		out, err := compiled.Evaluate(rules.Context{Snapshot: snapshot})
		if err != nil {
			return nil, err
		}
		payload, ok := out.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("formsync: transform rule %q returned %T, want a map", expression, out)
		}
		return payload, nil
	}, nil
}

func compileRule(evaluator rules.Evaluator, expression string) (rules.Compiled, error) {
	if evaluator == nil {
		evaluator = rules.NewExprEvaluator()
	}
	compiled, err := evaluator.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("formsync: compile rule: %w", err)
	}
	return compiled, nil
}
