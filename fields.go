package formsync

import (
	"github.com/goliatone/go-formsync/layering"
)

// FieldStore holds the current values of a form and the defaults they are
// compared against. It is not safe for concurrent use; Form serialises
// access to its store.
type FieldStore struct {
	data      FieldData
	defaults  FieldData
	observers []func(FieldData)
}

// NewFieldStore seeds both data and defaults with a copy of initial.
func NewFieldStore(initial FieldData) *FieldStore {
	return &FieldStore{
		data:     layering.CloneMap(initial),
		defaults: layering.CloneMap(initial),
	}
}

// OnDefaultsChange registers fn to receive a copy of the defaults after
// every change to them.
func (s *FieldStore) OnDefaultsChange(fn func(FieldData)) {
	if fn != nil {
		s.observers = append(s.observers, fn)
	}
}

// Data returns a deep copy of the current values.
func (s *FieldStore) Data() FieldData {
	return layering.CloneMap(s.data)
}

// Defaults returns a deep copy of the defaults.
func (s *FieldStore) Defaults() FieldData {
	return layering.CloneMap(s.defaults)
}

// IsDirty reports whether data differs structurally from defaults.
func (s *FieldStore) IsDirty() bool {
	return !layering.Equal(s.data, s.defaults)
}

// SetData writes value at the resolved field name.
func (s *FieldStore) SetData(name string, value any) error {
	return assign(s.data, name, value)
}

// SetDataMap merges values into data key by key.
func (s *FieldStore) SetDataMap(values FieldData) {
	for key, value := range values {
		s.data[key] = layering.Clone(value)
	}
}

// SetDefault writes value at the resolved field name in defaults.
func (s *FieldStore) SetDefault(name string, value any) error {
	if err := assign(s.defaults, name, value); err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetDefaultsMap merges values into defaults key by key.
func (s *FieldStore) SetDefaultsMap(values FieldData) {
	for key, value := range values {
		s.defaults[key] = layering.Clone(value)
	}
	s.notify()
}

// CommitDefaults makes the current data the new defaults.
func (s *FieldStore) CommitDefaults() {
	s.replaceDefaults(s.data)
}

func (s *FieldStore) replaceDefaults(values FieldData) {
	s.defaults = layering.CloneMap(values)
	s.notify()
}

// Reset restores fields from defaults. Without arguments every field is
// restored and keys missing from defaults are dropped. With names, only
// those fields (or nested paths) are restored; the rest keep their current
// value. A named field missing from defaults is left alone, while a nested
// path missing under a field defaults do hold is removed from data. Names
// are validated before anything changes.
func (s *FieldStore) Reset(fields ...string) error {
	if len(fields) == 0 {
		s.data = layering.CloneMap(s.defaults)
		return nil
	}

	type target struct{ base, path string }
	targets := make([]target, 0, len(fields))
	for _, name := range fields {
		base, path, err := ResolveFieldName(name)
		if err != nil {
			return err
		}
		targets = append(targets, target{base: base, path: path})
	}

	for _, t := range targets {
		def, ok := s.defaults[t.base]
		if !ok {
			continue
		}
		if t.path == "" {
			s.data[t.base] = layering.Clone(def)
			continue
		}
		value, ok := layering.GetPath(def, t.path)
		if !ok {
			if current, exists := s.data[t.base]; exists {
				s.data[t.base] = layering.DeletePath(layering.Clone(current), t.path)
			}
			continue
		}
		updated, err := layering.SetPath(layering.Clone(s.data[t.base]), t.path, layering.Clone(value))
		if err != nil {
			// current data has an incompatible shape; restore the whole field
			s.data[t.base] = layering.Clone(def)
			continue
		}
		s.data[t.base] = updated
	}
	return nil
}

func (s *FieldStore) notify() {
	if len(s.observers) == 0 {
		return
	}
	for _, fn := range s.observers {
		fn(layering.CloneMap(s.defaults))
	}
}

// assign resolves name and writes value into target. Nested writes operate
// on a copy of the current base value so a failed write leaves target
// untouched.
func assign(target FieldData, name string, value any) error {
	base, path, err := ResolveFieldName(name)
	if err != nil {
		return err
	}
	if path == "" {
		target[base] = layering.Clone(value)
		return nil
	}
	updated, err := layering.SetPath(layering.Clone(target[base]), path, layering.Clone(value))
	if err != nil {
		return &FieldNameError{Name: name, Reason: err.Error()}
	}
	target[base] = updated
	return nil
}
