// Package credstore holds the client's key/value configuration, most notably
// the rotating refresh token, and writes it back to its origin file.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"
)

// RefreshTokenKey is the mandatory key holding the refresh token.
const RefreshTokenKey = "iq_refresh_token"

var (
	// ErrNotFound is returned when the configuration file does not exist.
	// It also matches os.ErrNotExist.
	ErrNotFound = fmt.Errorf("config file not found: %w", os.ErrNotExist)
	// ErrParse is returned when the file is not a JSON object.
	ErrParse = errors.New("config file is not a JSON object")
	// ErrMissingKey is returned when the refresh token key is absent.
	ErrMissingKey = errors.New("missing " + RefreshTokenKey)
)

// Store is a string keyed map of JSON values with optional write-back
type Store struct {
	mu      sync.Mutex
	values  map[string]any
	path    string
	persist bool
}

// Source selects where a Store is loaded from.
type Source interface {
	open(persist bool) (*Store, error)
}

// FileSource loads the store from a JSON file.
type FileSource string

func (p FileSource) open(persist bool) (*Store, error) { return Open(string(p), persist) }

// MapSource loads the store from a copy of an in-memory map.
type MapSource map[string]any

func (m MapSource) open(bool) (*Store, error) { return FromMap(m) }

// Load builds a store from either source.
func Load(src Source, persist bool) (*Store, error) {
	if src == nil {
		return nil, fmt.Errorf("nil source: %w", ErrParse)
	}
	return src.open(persist)
}

// Open reads path. When persist is set every Set rewrites the file.
func Open(path string, persist bool) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if values == nil {
		return nil, fmt.Errorf("%w: %s: null", ErrParse, path)
	}

	s := &Store{values: values, path: path, persist: persist}
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// FromMap copies m into a new store. The store never writes to disk and m is
// never modified.
func FromMap(m map[string]any) (*Store, error) {
	values, _ := deepCopy(m).(map[string]any)
	if values == nil {
		values = map[string]any{}
	}
	s := &Store{values: values}
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) check() error {
	v, ok := s.values[RefreshTokenKey]
	if !ok {
		return ErrMissingKey
	}
	if _, ok := v.(string); !ok {
		return fmt.Errorf("%w: not a string", ErrMissingKey)
	}
	return nil
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return deepCopy(v), ok
}

// GetString returns the value under key when it is a string.
func (s *Store) GetString(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key].(string)
	return v, ok
}

// Set updates key in memory and saves when the store is persistent.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = deepCopy(value)
	s.mu.Unlock()

	if !s.Persistent() {
		return nil
	}
	return s.Save()
}

// Save overwrites the origin file with the current values. It is a no-op for
// map backed stores.
func (s *Store) Save() error {
	if !s.FileBacked() {
		return nil
	}

	s.mu.Lock()
	data, err := json.MarshalIndent(s.values, "", "    ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// an existing file keeps its mode
	if err := os.WriteFile(s.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("write config file %s: %w", s.path, err)
	}
	return nil
}

// Snapshot returns a deep copy of all values.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, _ := deepCopy(s.values).(map[string]any)
	return out
}

func (s *Store) Path() string     { return s.path }
func (s *Store) FileBacked() bool { return s.path != "" }
func (s *Store) Persistent() bool { return s.FileBacked() && s.persist }

// deepCopy copies maps, slices, arrays and pointers recursively, whatever
// their element types. Other values are returned as they are.
func deepCopy(v any) any {
	if v == nil {
		return nil
	}
	return copyValue(reflect.ValueOf(v)).Interface()
}

func copyValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		return copyValue(v.Elem())
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), copyValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(copyValue(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(copyValue(v.Index(i)))
		}
		return out
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(copyValue(v.Elem()))
		return out
	}
	return v
}
