package questrade

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"iqtrade/pkg/model"
)

type refKind int

const (
	refID refKind = iota + 1
	refName
)

// Ref identifies a symbol either by numeric id or by ticker name. The zero
// Ref is invalid.
type Ref struct {
	kind refKind
	id   int
	name string
}

func ByID(id int) Ref        { return Ref{kind: refID, id: id} }
func ByName(name string) Ref { return Ref{kind: refName, name: name} }

// ByEntity refers to an already fetched entity through its symbol id. A nil
// entity gives the invalid zero Ref.
func ByEntity(e model.SymbolIdentifier) Ref {
	if isNil(e) {
		return Ref{}
	}
	return ByID(e.GetSymbolID())
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// ParseRef treats all-digit input as an id and anything else as a name.
func ParseRef(s string) Ref {
	if id, err := strconv.Atoi(s); err == nil && id > 0 {
		return ByID(id)
	}
	return ByName(s)
}

func (r Ref) ID() (int, bool)      { return r.id, r.kind == refID }
func (r Ref) Name() (string, bool) { return r.name, r.kind == refName }
func (r Ref) valid() bool          { return r.kind == refID && r.id > 0 || r.kind == refName && r.name != "" }

func (r Ref) String() string {
	switch r.kind {
	case refID:
		return strconv.Itoa(r.id)
	case refName:
		return r.name
	}
	return "<invalid>"
}

// Refs normalizes a dynamically typed ticker argument: a string, an integer,
// a Ref, a model.SymbolIdentifier, or a slice, array or set of those. Sets
// (maps with bool or struct{} values) are visited in sorted key order.
func Refs(v any) ([]Ref, error) {
	return normalize("tickers", v)
}

func normalize(arg string, v any) ([]Ref, error) {
	r, ok, err := single(arg, v)
	if err != nil {
		return nil, err
	}
	if ok {
		return []Ref{r}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]Ref, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			r, err := element(arg, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	case reflect.Map:
		if !isSet(rv.Type()) {
			break
		}
		out := make([]Ref, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			if rv.MapIndex(k).Kind() == reflect.Bool && !rv.MapIndex(k).Bool() {
				continue
			}
			r, err := element(arg, k.Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		sortRefs(out)
		return out, nil
	}
	return nil, &TypeInvalidError{Arg: arg, Value: v}
}

func element(arg string, v any) (Ref, error) {
	r, ok, err := single(arg, v)
	if err != nil {
		return Ref{}, err
	}
	if !ok {
		return Ref{}, &TypeInvalidError{Arg: arg, Value: v, Reason: fmt.Sprintf("unsupported element type %T", v)}
	}
	return r, nil
}

// single matches the scalar variants. ok is false when v is not a scalar.
func single(arg string, v any) (Ref, bool, error) {
	switch t := v.(type) {
	case Ref:
		if !t.valid() {
			return Ref{}, false, &TypeInvalidError{Arg: arg, Value: v, Reason: "invalid ref"}
		}
		return t, true, nil
	case string:
		if t == "" {
			return Ref{}, false, &TypeInvalidError{Arg: arg, Value: v, Reason: "empty ticker name"}
		}
		return ByName(t), true, nil
	case model.SymbolIdentifier:
		if isNil(t) {
			return Ref{}, false, &TypeInvalidError{Arg: arg, Value: v, Reason: "nil entity"}
		}
		r := ByEntity(t)
		if !r.valid() {
			return Ref{}, false, &TypeInvalidError{Arg: arg, Value: v, Reason: "entity has no symbol id"}
		}
		return r, true, nil
	case int, int8, int16, int32, int64:
		id := reflect.ValueOf(t).Int()
		if id <= 0 || id > math.MaxInt {
			return Ref{}, false, &TypeInvalidError{Arg: arg, Value: v, Reason: "symbol id must be positive"}
		}
		return ByID(int(id)), true, nil
	case uint, uint8, uint16, uint32, uint64:
		id := reflect.ValueOf(t).Uint()
		if id == 0 || id > math.MaxInt {
			return Ref{}, false, &TypeInvalidError{Arg: arg, Value: v, Reason: "symbol id out of range"}
		}
		return ByID(int(id)), true, nil
	}
	return Ref{}, false, nil
}

func isSet(t reflect.Type) bool {
	elem := t.Elem()
	return elem.Kind() == reflect.Bool || elem.Kind() == reflect.Struct && elem.NumField() == 0
}

// sortRefs orders ids before names, each ascending.
func sortRefs(refs []Ref) {
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		if a.kind == refID {
			return a.id < b.id
		}
		return a.name < b.name
	})
}

// partition splits refs into ids and names, keeping encounter order within
// each list.
func partition(refs []Ref) (ids []int, names []string) {
	for _, r := range refs {
		switch r.kind {
		case refID:
			ids = append(ids, r.id)
		case refName:
			names = append(names, r.name)
		}
	}
	return ids, names
}

func validateRefs(arg string, refs []Ref) error {
	for _, r := range refs {
		if !r.valid() {
			return &TypeInvalidError{Arg: arg, Value: r, Reason: "invalid ref"}
		}
	}
	return nil
}
