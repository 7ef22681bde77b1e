package rules

type jsConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSOption configures the JavaScript evaluator.
type JSOption func(*jsConfig)

// JSWithProgramCache shares compiled scripts across evaluations.
func JSWithProgramCache(cache ProgramCache) JSOption {
	return func(cfg *jsConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctions exposes registry helpers as globals and through call().
func JSWithFunctions(registry *FunctionRegistry) JSOption {
	return func(cfg *jsConfig) {
		if registry != nil {
			cfg.registry = registry.Clone()
		}
	}
}

func applyJSOptions(opts []JSOption) jsConfig {
	cfg := jsConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
