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
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a boolean predicate over records, written in expr-lang with the
// extra functions like_match(text, pattern) and is_null(value).
//
//	f, err := expr.NewFilter("building_type != 'HOUSE' && energy > 10")
type Filter struct {
	source  string
	program *vm.Program
}

var filterOptions = []expr.Option{
	expr.Function("like_match", func(params ...any) (any, error) {
		if len(params) != 2 {
			return false, fmt.Errorf("like_match function requires 2 parameters")
		}
		text, ok1 := params[0].(string)
		pattern, ok2 := params[1].(string)
		if !ok1 || !ok2 {
			return false, nil
		}
		return LikeMatch(text, pattern), nil
	}),
	expr.Function("is_null", func(params ...any) (any, error) {
		if len(params) != 1 {
			return false, fmt.Errorf("is_null function requires 1 parameter")
		}
		return params[0] == nil, nil
	}),
	expr.AllowUndefinedVariables(),
	expr.AsBool(),
}

func NewFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("filter cannot be empty")
	}
	program, err := expr.Compile(source, filterOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter '%s': %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// Match reports whether record satisfies the filter.
func (f *Filter) Match(record interface{}) (bool, error) {
	env := record
	switch r := record.(type) {
	case nil:
		env = map[string]interface{}{}
	case PropertyMap:
		env = r.Properties()
	}
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter '%s': %w", f.source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter '%s' returned %T, expected bool", f.source, out)
	}
	return b, nil
}

func (f *Filter) String() string {
	return f.source
}

// LikeMatch matches text against a SQL LIKE pattern where % matches any run
// of characters and _ exactly one.
func LikeMatch(text, pattern string) bool {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String()).MatchString(text)
}
