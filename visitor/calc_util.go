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

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/rulego/featureagg/utils/cast"
)

// ErrDivideByZero is returned by Divide for integral division by zero.
var ErrDivideByZero = errors.New("integer divide by zero")

// Comparable is implemented by values that define their own ordering.
// CompareTo returns a negative number, zero or a positive number when the
// receiver sorts before, equal to or after other.
type Comparable interface {
	CompareTo(other interface{}) int
}

type number interface {
	constraints.Integer | constraints.Float
}

// IsComparable reports whether v can be ordered by Compare.
func IsComparable(v interface{}) bool {
	switch v.(type) {
	case nil:
		return false
	case string, bool, time.Time, Comparable:
		return true
	}
	return cast.IsNumber(v)
}

// BestClass returns the widest class among values, ok is false when none of
// them is an Integer, Long, Float, Double or String.
func BestClass(values ...interface{}) (cast.Class, bool) {
	return cast.BestClass(values...)
}

// Convert converts v into the representation of class.
func Convert(v interface{}, class cast.Class) (interface{}, error) {
	return cast.Convert(v, class)
}

func sumAs[T number](values []interface{}, class cast.Class) (T, error) {
	var total T
	for _, v := range values {
		c, err := cast.Convert(v, class)
		if err != nil {
			return total, err
		}
		total += c.(T)
	}
	return total, nil
}

// Sum adds values using the arithmetic of their best class. Integral sums wrap
// around at the width of the promoted type.
func Sum(values ...interface{}) (interface{}, error) {
	class, ok := cast.BestClass(values...)
	if !ok {
		return nil, fmt.Errorf("sum: %w", cast.ErrUnsupportedType)
	}
	switch class {
	case cast.ClassInteger:
		return sumAs[int](values, class)
	case cast.ClassLong:
		return sumAs[int64](values, class)
	case cast.ClassFloat:
		return sumAs[float32](values, class)
	case cast.ClassDouble:
		return sumAs[float64](values, class)
	default:
		return nil, fmt.Errorf("sum of %s operands: %w", class, cast.ErrUnsupportedType)
	}
}

// Divide divides a by b. Integer operands divide as float64 while Long
// operands keep truncating int64 division.
func Divide(a, b interface{}) (interface{}, error) {
	class, ok := cast.BestClass(a, b)
	if !ok {
		return nil, fmt.Errorf("divide: %w", cast.ErrUnsupportedType)
	}
	switch class {
	case cast.ClassInteger:
		x, y, err := convertPair[float64](a, b, cast.ClassDouble)
		if err != nil {
			return nil, err
		}
		return x / y, nil
	case cast.ClassLong:
		x, y, err := convertPair[int64](a, b, class)
		if err != nil {
			return nil, err
		}
		if y == 0 {
			return nil, ErrDivideByZero
		}
		return x / y, nil
	case cast.ClassFloat:
		x, y, err := convertPair[float32](a, b, class)
		if err != nil {
			return nil, err
		}
		return x / y, nil
	case cast.ClassDouble:
		x, y, err := convertPair[float64](a, b, class)
		if err != nil {
			return nil, err
		}
		return x / y, nil
	default:
		return nil, fmt.Errorf("divide %s operands: %w", class, cast.ErrUnsupportedType)
	}
}

func convertPair[T number](a, b interface{}, class cast.Class) (T, T, error) {
	x, err := cast.Convert(a, class)
	if err != nil {
		return 0, 0, err
	}
	y, err := cast.Convert(b, class)
	if err != nil {
		return 0, 0, err
	}
	return x.(T), y.(T), nil
}

// Average is Divide(Sum(values), len(values)), the count being an Integer.
func Average(values ...interface{}) (interface{}, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("average of no values: %w", cast.ErrUnsupportedType)
	}
	sum, err := Sum(values...)
	if err != nil {
		return nil, err
	}
	return Divide(sum, len(values))
}

// Promote converts every element to the best class of the whole slice.
// Elements of unknown class are kept as they are.
func Promote(values []interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(values))
	class, ok := cast.BestClass(values...)
	if !ok {
		copy(out, values)
		return out, nil
	}
	for i, v := range values {
		if cast.ClassOf(v) == cast.ClassUnknown || cast.ClassOf(v) == class {
			out[i] = v
			continue
		}
		c, err := cast.Convert(v, class)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func cmpOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Compare orders a and b. Values of the same type compare directly, mixed
// numeric and string operands are promoted to their best class first.
func Compare(a, b interface{}) (int, error) {
	if a == nil || b == nil {
		return 0, NewError(ErrorKindNonComparableInput, "cannot compare %v with %v", a, b)
	}
	if reflect.TypeOf(a) == reflect.TypeOf(b) {
		switch x := a.(type) {
		case bool:
			y := b.(bool)
			if x == y {
				return 0, nil
			}
			if !x {
				return -1, nil
			}
			return 1, nil
		case time.Time:
			return x.Compare(b.(time.Time)), nil
		case Comparable:
			return x.CompareTo(b), nil
		}
	}
	class, ok := cast.BestClass(a, b)
	if !ok || cast.ClassOf(a) == cast.ClassUnknown || cast.ClassOf(b) == cast.ClassUnknown {
		if c, isComparable := a.(Comparable); isComparable {
			return c.CompareTo(b), nil
		}
		return 0, NewError(ErrorKindNonComparableInput, "cannot compare %T with %T", a, b)
	}
	switch class {
	case cast.ClassInteger:
		x, y, err := convertPair[int](a, b, class)
		return cmpOrdered(x, y), err
	case cast.ClassLong:
		x, y, err := convertPair[int64](a, b, class)
		return cmpOrdered(x, y), err
	case cast.ClassFloat:
		x, y, err := convertPair[float32](a, b, class)
		return cmpOrdered(x, y), err
	case cast.ClassDouble:
		x, y, err := convertPair[float64](a, b, class)
		return cmpOrdered(x, y), err
	default:
		x, err := cast.Convert(a, class)
		if err != nil {
			return 0, err
		}
		y, err := cast.Convert(b, class)
		if err != nil {
			return 0, err
		}
		return strings.Compare(x.(string), y.(string)), nil
	}
}
