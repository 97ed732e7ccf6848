// Package prompts holds one typed template per task. A template is bound to
// an input struct when it is built; referencing a placeholder the struct
// does not provide is a construction error, so rendering never leaves a
// "{name}" behind.
package prompts

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9_]*)\}`)

// Template renders a prompt from an input of type T. Placeholders are
// resolved against T's fields by their `prompt` tag, or by field name.
type Template[T any] struct {
	name   string
	text   string
	fields map[string]int
	used   []string
}

func New[T any](name, text string) (*Template[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("prompt %s: input must be a struct, got %s", name, typ.Kind())
	}

	fields := make(map[string]int, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		key := f.Tag.Get("prompt")
		if key == "-" {
			continue
		}
		if key == "" {
			key = f.Name
		}
		fields[key] = i
	}

	seen := map[string]bool{}
	var used, unknown []string
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		key := m[1]
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := fields[key]; !ok {
			unknown = append(unknown, key)
			continue
		}
		used = append(used, key)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("prompt %s: placeholders %v have no field in %s", name, unknown, typ.Name())
	}

	return &Template[T]{name: name, text: text, fields: fields, used: used}, nil
}

// Must is New for package-level templates; it panics at init on a bad
// template.
func Must[T any](name, text string) *Template[T] {
	t, err := New[T](name, text)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template[T]) Name() string { return t.name }

// Placeholders lists the placeholders the template uses, in first-use order.
func (t *Template[T]) Placeholders() []string {
	return append([]string(nil), t.used...)
}

func (t *Template[T]) Render(in T) string {
	v := reflect.ValueOf(in)
	return placeholderRe.ReplaceAllStringFunc(t.text, func(m string) string {
		idx, ok := t.fields[m[1:len(m)-1]]
		if !ok {
			return m
		}
		return format(v.Field(idx))
	})
}

func format(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = format(v.Index(i))
		}
		return strings.Join(parts, ", ")
	case reflect.String:
		return v.String()
	default:
		return fmt.Sprint(v.Interface())
	}
}
