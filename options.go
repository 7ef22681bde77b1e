package formsync

import (
	"strings"

	"github.com/goliatone/go-formsync/pkg/activity"
	"github.com/goliatone/go-formsync/pkg/logging"
	"github.com/goliatone/go-formsync/pkg/state"
)

// Option configures a Form.
type Option func(*formConfig)

type formConfig struct {
	id         string
	transport  Transport
	initial    FieldData
	remember   *rememberConfig
	validation ValidationPredicate
	transform  TransformFunc
	logger     logging.Logger
	emitter    *activity.Emitter
	callbacks  Callbacks
}

type rememberConfig struct {
	key         string
	persistence state.Persistence
	ttlDays     int
}

func applyOptions(opts []Option) formConfig {
	cfg := formConfig{
		validation: DefaultValidationPredicate,
		logger:     logging.Noop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithID names the form in activity events and logs. A random id is used
// when none is given.
func WithID(id string) Option {
	return func(cfg *formConfig) {
		cfg.id = strings.TrimSpace(id)
	}
}

// WithTransport sets the collaborator that performs requests.
func WithTransport(transport Transport) Option {
	return func(cfg *formConfig) {
		cfg.transport = transport
	}
}

// WithInitialValues seeds data and defaults.
func WithInitialValues(values FieldData) Option {
	return func(cfg *formConfig) {
		cfg.initial = values
	}
}

// WithRemember restores defaults from persistence under key and writes them
// back after every change. A non-positive ttlDays uses state.DefaultTTLDays.
func WithRemember(key string, persistence state.Persistence, ttlDays int) Option {
	return func(cfg *formConfig) {
		key = strings.TrimSpace(key)
		if key == "" || persistence == nil {
			cfg.remember = nil
			return
		}
		if ttlDays <= 0 {
			ttlDays = state.DefaultTTLDays
		}
		cfg.remember = &rememberConfig{key: key, persistence: persistence, ttlDays: ttlDays}
	}
}

// WithValidationPredicate decides which failure statuses carry field errors.
func WithValidationPredicate(predicate ValidationPredicate) Option {
	return func(cfg *formConfig) {
		if predicate == nil {
			predicate = DefaultValidationPredicate
		}
		cfg.validation = predicate
	}
}

// WithTransform sets the initial payload transform.
func WithTransform(transform TransformFunc) Option {
	return func(cfg *formConfig) {
		cfg.transform = transform
	}
}

// WithLogger records submissions and persistence failures.
func WithLogger(logger logging.Logger) Option {
	return func(cfg *formConfig) {
		cfg.logger = logging.OrNoop(logger)
	}
}

// WithActivity emits lifecycle events through emitter.
func WithActivity(emitter *activity.Emitter) Option {
	return func(cfg *formConfig) {
		cfg.emitter = emitter
	}
}

// WithActivityHooks emits lifecycle events to hooks on the default channel.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	return func(cfg *formConfig) {
		cfg.emitter = activity.NewEmitter(activity.Hooks(hooks), activity.Config{Enabled: true})
	}
}

// WithDefaultCallbacks sets callbacks used by every submission. Per request
// callbacks replace them field by field.
func WithDefaultCallbacks(callbacks Callbacks) Option {
	return func(cfg *formConfig) {
		cfg.callbacks = callbacks
	}
}

// RequestOption configures a single submission.
type RequestOption func(*requestConfig)

type requestConfig struct {
	callbacks Callbacks
	config    map[string]any
}

func applyRequestOptions(defaults Callbacks, opts []RequestOption) requestConfig {
	cfg := requestConfig{callbacks: defaults}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithCallbacks overrides the form callbacks for one submission.
func WithCallbacks(callbacks Callbacks) RequestOption {
	return func(cfg *requestConfig) {
		cfg.callbacks = cfg.callbacks.merge(callbacks)
	}
}

// WithConfig passes transport specific settings through Request.Config.
func WithConfig(config map[string]any) RequestOption {
	return func(cfg *requestConfig) {
		if len(config) == 0 {
			return
		}
		if cfg.config == nil {
			cfg.config = make(map[string]any, len(config))
		}
		for key, value := range config {
			cfg.config[key] = value
		}
	}
}
