package formsync

// ErrorStore holds field error messages. Like FieldStore it relies on Form
// for synchronisation.
type ErrorStore struct {
	errors ErrorMap
}

func NewErrorStore() *ErrorStore {
	return &ErrorStore{errors: ErrorMap{}}
}

// SetError merges messages for field. A call without messages records the
// field with an empty list.
func (s *ErrorStore) SetError(field string, messages ...string) {
	s.errors[field] = copyMessages(messages)
}

// SetErrors merges every entry of errs.
func (s *ErrorStore) SetErrors(errs ErrorMap) {
	for field, messages := range errs {
		s.errors[field] = copyMessages(messages)
	}
}

// ClearErrors removes the named fields, or every field when none are given.
func (s *ErrorStore) ClearErrors(fields ...string) {
	if len(fields) == 0 {
		s.errors = ErrorMap{}
		return
	}
	for _, field := range fields {
		delete(s.errors, field)
	}
}

// HasErrors reports whether any field holds an entry.
func (s *ErrorStore) HasErrors() bool {
	return len(s.errors) > 0
}

// Errors returns a deep copy of the stored map.
func (s *ErrorStore) Errors() ErrorMap {
	return copyErrorMap(s.errors)
}

// FilterValidationPayload keeps the entries of a validation payload whose
// value is a non-empty list of strings. Non-string list items are dropped,
// and so are bare strings, other scalars and lists left empty.
func FilterValidationPayload(payload map[string]any) ErrorMap {
	out := ErrorMap{}
	for field, raw := range payload {
		var messages []string
		switch typed := raw.(type) {
		case []string:
			messages = append(messages, typed...)
		case []any:
			for _, item := range typed {
				if message, ok := item.(string); ok {
					messages = append(messages, message)
				}
			}
		}
		if len(messages) > 0 {
			out[field] = messages
		}
	}
	return out
}

func copyMessages(messages []string) []string {
	if len(messages) == 0 {
		return []string{}
	}
	return append([]string(nil), messages...)
}

func copyErrorMap(src ErrorMap) ErrorMap {
	out := make(ErrorMap, len(src))
	for field, messages := range src {
		out[field] = copyMessages(messages)
	}
	return out
}
