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

// Package fieldpath resolves nested attribute paths such as "site.owner",
// "rooms[0].area" or "tags['zone']" against maps, slices and structs.
package fieldpath

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// PartType tells how a path segment is applied.
type PartType int

const (
	// Field selects a map entry or a struct field by name.
	Field PartType = iota
	// Index selects a slice element. Negative indexes count from the end.
	Index
	// Key selects a map entry with a quoted key.
	Key
)

// Part is one segment of a Path.
type Part struct {
	Type  PartType
	Name  string
	Index int
}

// Path is a parsed attribute path.
type Path struct {
	source string
	parts  []Part
}

// Error reports a malformed path.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("field path '%s': %s", e.Path, e.Message)
}

// Parse splits a path into its segments.
func Parse(path string) (*Path, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, &Error{Path: path, Message: "empty path"}
	}
	p := &Path{source: path}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return nil, &Error{Path: path, Message: "empty segment"}
		}
		bracket := strings.IndexByte(segment, '[')
		if bracket < 0 {
			p.parts = append(p.parts, Part{Type: Field, Name: segment})
			continue
		}
		if bracket > 0 {
			p.parts = append(p.parts, Part{Type: Field, Name: segment[:bracket]})
		}
		rest := segment[bracket:]
		for rest != "" {
			if rest[0] != '[' {
				return nil, &Error{Path: path, Message: "unexpected text after bracket"}
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, &Error{Path: path, Message: "unmatched bracket"}
			}
			part, err := parseBracket(rest[1:end])
			if err != nil {
				return nil, &Error{Path: path, Message: err.Error()}
			}
			p.parts = append(p.parts, part)
			rest = rest[end+1:]
		}
	}
	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(path string) *Path {
	p, err := Parse(path)
	if err != nil {
		panic(err)
	}
	return p
}

func parseBracket(content string) (Part, error) {
	content = strings.TrimSpace(content)
	if len(content) >= 2 {
		q := content[0]
		if (q == '\'' || q == '"') && content[len(content)-1] == q {
			return Part{Type: Key, Name: content[1 : len(content)-1]}, nil
		}
	}
	i, err := strconv.Atoi(content)
	if err != nil {
		return Part{}, fmt.Errorf("invalid bracket content '%s', expected number or quoted string", content)
	}
	return Part{Type: Index, Name: content, Index: i}, nil
}

// IsNested reports whether path has more than one segment.
func IsNested(path string) bool {
	return strings.ContainsAny(path, ".[")
}

func (p *Path) Parts() []Part {
	return append([]Part(nil), p.parts...)
}

// Root is the name of the first segment, empty when the path starts with a
// bracket.
func (p *Path) Root() string {
	if len(p.parts) == 0 || p.parts[0].Type != Field {
		return ""
	}
	return p.parts[0].Name
}

func (p *Path) Depth() int {
	return len(p.parts)
}

func (p *Path) String() string {
	return p.source
}

// Get walks data along the path. ok is false when a segment is missing.
func (p *Path) Get(data interface{}) (interface{}, bool) {
	return p.GetFrom(data, 0)
}

// GetFrom walks data along the segments starting at from.
func (p *Path) GetFrom(data interface{}, from int) (interface{}, bool) {
	if from < 0 || from > len(p.parts) {
		return nil, false
	}
	current := data
	for _, part := range p.parts[from:] {
		next, ok := step(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(data interface{}, part Part) (interface{}, bool) {
	if data == nil {
		return nil, false
	}
	if m, ok := data.(map[string]interface{}); ok && part.Type != Index {
		v, found := m[part.Name]
		return v, found
	}
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		return mapValue(v, part)
	case reflect.Struct:
		if part.Type != Field {
			return nil, false
		}
		return StructField(v, part.Name)
	case reflect.Slice, reflect.Array:
		if part.Type != Index {
			return nil, false
		}
		i := part.Index
		if i < 0 {
			i += v.Len()
		}
		if i < 0 || i >= v.Len() {
			return nil, false
		}
		return v.Index(i).Interface(), true
	}
	return nil, false
}

func mapValue(v reflect.Value, part Part) (interface{}, bool) {
	keyType := v.Type().Key()
	var key reflect.Value
	switch {
	case keyType.Kind() == reflect.String:
		key = reflect.ValueOf(part.Name).Convert(keyType)
	case part.Type == Index && reflect.TypeOf(part.Index).ConvertibleTo(keyType):
		key = reflect.ValueOf(part.Index).Convert(keyType)
	default:
		return nil, false
	}
	found := v.MapIndex(key)
	if !found.IsValid() {
		return nil, false
	}
	return found.Interface(), true
}

// StructField reads an exported field of a struct value. Unexported and
// missing fields are reported as absent.
func StructField(v reflect.Value, name string) (interface{}, bool) {
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	f := v.FieldByName(name)
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}
