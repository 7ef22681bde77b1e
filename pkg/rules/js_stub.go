//go:build !js_eval

package rules

// NewJSEvaluator returns nil unless the module is built with the js_eval tag.
func NewJSEvaluator(opts ...JSOption) Evaluator {
	_ = applyJSOptions(opts)
	return nil
}

// JSAvailable reports whether NewJSEvaluator returns a working evaluator.
func JSAvailable() bool {
	return false
}
