/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package expr

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/rulego/featureagg/utils/fieldpath"
)

// Expression evaluates a value out of an opaque record. Implementations
// must not mutate the record.
type Expression interface {
	Evaluate(record interface{}) (interface{}, error)
	String() string
}

// PropertyGetter is implemented by records that expose named attributes.
type PropertyGetter interface {
	Property(name string) (interface{}, bool)
}

// PropertyMap is implemented by records that can present all of their
// attributes at once, which compiled expressions use as environment.
type PropertyMap interface {
	Properties() map[string]interface{}
}

var (
	identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	pathRegex       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*|\[(-?\d+|'[^']*'|"[^"]*")\])+$`)
)

// Property reads a named attribute. Nested paths such as "site.owner" or
// "rooms[0].area" walk into the attribute value. Missing attributes evaluate
// to nil.
type Property struct {
	name string
	path *fieldpath.Path
}

func NewProperty(name string) *Property {
	p := &Property{name: name}
	if fieldpath.IsNested(name) {
		if path, err := fieldpath.Parse(name); err == nil && path.Root() != "" {
			p.path = path
		}
	}
	return p
}

func (p *Property) Name() string {
	return p.name
}

// Root is the top level attribute the property reads.
func (p *Property) Root() string {
	if p.path != nil {
		return p.path.Root()
	}
	return p.name
}

func (p *Property) Evaluate(record interface{}) (interface{}, error) {
	v, err := lookup(record, p.Root())
	if err != nil || v == nil || p.path == nil {
		return v, err
	}
	nested, ok := p.path.GetFrom(v, 1)
	if !ok {
		return nil, nil
	}
	return nested, nil
}

func lookup(record interface{}, name string) (interface{}, error) {
	switch r := record.(type) {
	case nil:
		return nil, fmt.Errorf("property %s: record is nil", name)
	case map[string]interface{}:
		return r[name], nil
	case PropertyGetter:
		v, _ := r.Property(name)
		return v, nil
	case PropertyMap:
		return r.Properties()[name], nil
	}
	v := reflect.ValueOf(record)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("property %s: record is nil", name)
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		f, _ := fieldpath.StructField(v, name)
		return f, nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		f := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !f.IsValid() {
			return nil, nil
		}
		return f.Interface(), nil
	}
	return nil, fmt.Errorf("property %s: unsupported record type %T, expected struct or map", name, record)
}

func (p *Property) String() string {
	return p.name
}

// Literal always evaluates to the same value.
type Literal struct {
	value interface{}
}

func NewLiteral(value interface{}) *Literal {
	return &Literal{value: value}
}

func (l *Literal) Evaluate(interface{}) (interface{}, error) {
	return l.value, nil
}

func (l *Literal) String() string {
	if s, ok := l.value.(string); ok {
		return fmt.Sprintf("'%s'", s)
	}
	return fmt.Sprintf("%v", l.value)
}

// Compiled is an expr-lang program evaluated against the record attributes.
type Compiled struct {
	source  string
	program *vm.Program
	fields  []string
}

// Compile compiles source with expr-lang. Undefined attributes evaluate to nil.
func Compile(source string) (*Compiled, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("expression cannot be empty")
	}
	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression '%s': %w", source, err)
	}
	fields, err := referencedFields(source)
	if err != nil {
		return nil, err
	}
	return &Compiled{source: source, program: program, fields: fields}, nil
}

func (c *Compiled) Evaluate(record interface{}) (interface{}, error) {
	env := record
	switch r := record.(type) {
	case nil:
		env = map[string]interface{}{}
	case PropertyMap:
		env = r.Properties()
	}
	out, err := expr.Run(c.program, env)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression '%s': %w", c.source, err)
	}
	return out, nil
}

// Fields returns the attribute names referenced by the expression.
func (c *Compiled) Fields() []string {
	return append([]string(nil), c.fields...)
}

func (c *Compiled) String() string {
	return c.source
}

// Parse returns a Property for a bare attribute name or attribute path and a
// compiled expression for anything else.
func Parse(source string) (Expression, error) {
	trimmed := strings.TrimSpace(source)
	if identifierRegex.MatchString(trimmed) || pathRegex.MatchString(trimmed) {
		return NewProperty(trimmed), nil
	}
	return Compile(trimmed)
}

// MustParse is like Parse but panics on error. Intended for fixtures and
// package level variables.
func MustParse(source string) Expression {
	e, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return e
}

// PropertyNames collects the attribute names used by exprs, in first
// appearance order and without duplicates.
func PropertyNames(exprs ...Expression) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, e := range exprs {
		switch x := e.(type) {
		case *Property:
			add(x.Root())
		case *Compiled:
			for _, f := range x.fields {
				add(f)
			}
		}
	}
	return names
}

// Equal reports whether two expression lists are structurally identical.
func Equal(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if (a[i] == nil) != (b[i] == nil) {
			return false
		}
		if a[i] == nil {
			continue
		}
		if reflect.TypeOf(a[i]) != reflect.TypeOf(b[i]) || a[i].String() != b[i].String() {
			return false
		}
	}
	return true
}

type identifierCollector struct {
	names   []string
	counts  map[string]int
	callees map[string]int
}

func (c *identifierCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if c.counts[n.Value] == 0 {
			c.names = append(c.names, n.Value)
		}
		c.counts[n.Value]++
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.callees[id.Value]++
		}
	}
}

func referencedFields(source string) ([]string, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expression '%s': %w", source, err)
	}
	c := &identifierCollector{counts: map[string]int{}, callees: map[string]int{}}
	ast.Walk(&tree.Node, c)
	fields := make([]string, 0, len(c.names))
	for _, name := range c.names {
		if c.counts[name] > c.callees[name] {
			fields = append(fields, name)
		}
	}
	return fields, nil
}
