// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"fmt"
	"net/http"
	"reflect"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
)

// AttrFunc computes one span attribute value from a request.
// Resolvers must be total over valid requests; an error aborts the request.
type AttrFunc func(r *http.Request) (string, error)

// AttrSpec tells how one named span attribute is computed from the request.
// Create with Local, Remote, RemoteArgs or Func.
// The spec set is fixed when the middleware is constructed; New binds and
// validates the named methods then, not per request.
type AttrSpec struct {
	key    string
	module any
	name   string
	args   []any
	fn     AttrFunc
}

// Local names a resolver method on the middleware owner (see WithOwner).
// The attribute key is name as given. Method lookup tries the exact name,
// then the name with its first rune upper-cased, so the key "method" binds
// to an exported Method(*http.Request) resolver.
func Local(name string) AttrSpec {
	return AttrSpec{key: name, name: name}
}

// Remote names a resolver method on module. Key is name as given.
func Remote(module any, name string) AttrSpec {
	return AttrSpec{key: name, module: module, name: name}
}

// RemoteArgs is Remote with extra arguments passed to the resolver after
// the request.
func RemoteArgs(module any, name string, args ...any) AttrSpec {
	return AttrSpec{key: name, module: module, name: name, args: args}
}

// Func binds key to an explicit resolver function.
func Func(key string, fn AttrFunc) AttrSpec {
	return AttrSpec{key: key, fn: fn}
}

type boundAttr struct {
	key string
	fn  AttrFunc
}

var (
	requestType = reflect.TypeOf((*http.Request)(nil))
	stringType  = reflect.TypeOf("")
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// bind resolves the named method and checks its signature.
// Accepted forms: func(*http.Request, extraArgs...) string, optionally with
// a trailing error result.
func (s AttrSpec) bind(owner any) (boundAttr, error) {
	if s.fn != nil {
		return boundAttr{key: s.key, fn: s.fn}, nil
	}

	target := s.module
	if target == nil {
		target = owner
	}
	if target == nil {
		return boundAttr{}, fmt.Errorf("attribute %q: local resolver needs an owner", s.key)
	}

	m := methodByName(reflect.ValueOf(target), s.name)
	if !m.IsValid() {
		return boundAttr{}, fmt.Errorf("attribute %q: no method %q on %T", s.key, s.name, target)
	}

	t := m.Type()
	if t.NumIn() != 1+len(s.args) || t.In(0) != requestType {
		return boundAttr{}, fmt.Errorf("attribute %q: %T.%s must take *http.Request plus %d extra argument(s)", s.key, target, s.name, len(s.args))
	}
	extra := make([]reflect.Value, len(s.args))
	for i, arg := range s.args {
		v := reflect.ValueOf(arg)
		if !v.IsValid() || !v.Type().AssignableTo(t.In(i+1)) {
			return boundAttr{}, fmt.Errorf("attribute %q: argument %d not assignable to %s", s.key, i, t.In(i+1))
		}
		extra[i] = v
	}
	if t.NumOut() < 1 || t.NumOut() > 2 || t.Out(0) != stringType || (t.NumOut() == 2 && t.Out(1) != errorType) {
		return boundAttr{}, fmt.Errorf("attribute %q: %T.%s must return string or (string, error)", s.key, target, s.name)
	}

	fn := func(r *http.Request) (string, error) {
		in := make([]reflect.Value, 0, 1+len(extra))
		in = append(in, reflect.ValueOf(r))
		in = append(in, extra...)
		out := m.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return "", out[1].Interface().(error)
		}
		return out[0].String(), nil
	}
	return boundAttr{key: s.key, fn: fn}, nil
}

func methodByName(v reflect.Value, name string) reflect.Value {
	if m := v.MethodByName(name); m.IsValid() {
		return m
	}
	r, size := utf8.DecodeRuneInString(name)
	return v.MethodByName(string(unicode.ToUpper(r)) + name[size:])
}

// resolveAttrs computes the attribute values in declaration order.
// The first resolver error aborts; no attribute is silently dropped.
func resolveAttrs(r *http.Request, specs []boundAttr) ([]attribute.KeyValue, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	attrs := make([]attribute.KeyValue, 0, len(specs))
	for _, s := range specs {
		value, err := s.fn(r)
		if err != nil {
			return nil, fmt.Errorf("resolve attribute %q: %w", s.key, err)
		}
		attrs = append(attrs, attribute.String(s.key, value))
	}
	return attrs, nil
}
