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

package visitor

import "fmt"

// CountVisitor counts records. It evaluates nothing, so records carrying
// null attributes are counted too.
type CountVisitor struct {
	count *int
}

func NewCountVisitor() *CountVisitor {
	return &CountVisitor{}
}

func (v *CountVisitor) Visit(interface{}) error {
	if v.count == nil {
		v.count = new(int)
	}
	*v.count++
	return nil
}

// SetValue injects a count computed elsewhere.
func (v *CountVisitor) SetValue(count int) {
	v.count = &count
}

func (v *CountVisitor) Count() int {
	if v.count == nil {
		return 0
	}
	return *v.count
}

func (v *CountVisitor) Result() CalcResult {
	if v.count == nil {
		return NullResult
	}
	return &CountResult{count: *v.count}
}

func (v *CountVisitor) Reset() {
	v.count = nil
}

// CountResult holds a number of records.
type CountResult struct {
	count int
}

func NewCountResult(count int) *CountResult {
	return &CountResult{count: count}
}

func (r *CountResult) Value() interface{} {
	return r.count
}

func (r *CountResult) Count() int {
	return r.count
}

func (r *CountResult) IsCompatible(other CalcResult) bool {
	switch other.(type) {
	case *CountResult, *SumResult, nullResult:
		return true
	}
	return false
}

// Merge adds two counts. Merging a SumResult yields an AverageResult.
func (r *CountResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	if !r.IsCompatible(other) {
		return nil, incompatible(r, other)
	}
	switch o := other.(type) {
	case *CountResult:
		return &CountResult{count: r.count + o.count}, nil
	case *SumResult:
		return o.Merge(r)
	}
	return nil, NewError(ErrorKindIncompatibleMerge, "no merge path from %T to %T", r, other)
}

func (r *CountResult) String() string {
	return fmt.Sprintf("Count(%d)", r.count)
}
