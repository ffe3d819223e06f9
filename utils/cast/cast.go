/*
 * Copyright 2024 The RuleGo Authors.
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

// Package cast classifies dynamically typed operands into the numeric
// classes used by the aggregation engine and converts between them.
package cast

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// ErrUnsupportedType is returned when an operand does not belong to any
// recognized class.
var ErrUnsupportedType = errors.New("unsupported operand type")

// Class is the representation an operand is promoted to. Higher values win
// during promotion: String > Double > Float > Long > Integer.
type Class int

const (
	ClassUnknown Class = iota
	ClassInteger
	ClassLong
	ClassFloat
	ClassDouble
	ClassString
)

func (c Class) String() string {
	switch c {
	case ClassInteger:
		return "Integer"
	case ClassLong:
		return "Long"
	case ClassFloat:
		return "Float"
	case ClassDouble:
		return "Double"
	case ClassString:
		return "String"
	default:
		return "Unknown"
	}
}

// IsNumeric reports whether c is one of the four numeric classes.
func (c Class) IsNumeric() bool {
	return c >= ClassInteger && c <= ClassDouble
}

// ClassOf returns the class of v, or ClassUnknown.
func ClassOf(v interface{}) Class {
	switch v.(type) {
	case int, int8, int16, int32, uint8, uint16:
		return ClassInteger
	case int64, uint, uint32, uint64:
		return ClassLong
	case float32:
		return ClassFloat
	case float64:
		return ClassDouble
	case string:
		return ClassString
	default:
		return ClassUnknown
	}
}

// IsNumber reports whether v is a Go numeric value of a recognized class.
func IsNumber(v interface{}) bool {
	return ClassOf(v).IsNumeric()
}

// BestClass returns the widest class among values. ok is false when none of
// the values belongs to a recognized class.
func BestClass(values ...interface{}) (Class, bool) {
	best := ClassUnknown
	for _, v := range values {
		if c := ClassOf(v); c > best {
			best = c
		}
	}
	return best, best != ClassUnknown
}

// Convert converts v into the Go representation of class:
// int, int64, float32, float64 or string.
func Convert(v interface{}, class Class) (interface{}, error) {
	var (
		out interface{}
		err error
	)
	switch class {
	case ClassInteger:
		out, err = cast.ToIntE(v)
	case ClassLong:
		out, err = cast.ToInt64E(v)
	case ClassFloat:
		out, err = cast.ToFloat32E(v)
	case ClassDouble:
		out, err = cast.ToFloat64E(v)
	case ClassString:
		out, err = cast.ToStringE(v)
	default:
		return nil, fmt.Errorf("convert %T: %w", v, ErrUnsupportedType)
	}
	if err != nil {
		return nil, fmt.Errorf("convert %T to %s: %w", v, class, err)
	}
	return out, nil
}

// ToFloat returns v as float64. ok is false for non-numeric values.
func ToFloat(v interface{}) (float64, bool) {
	if !IsNumber(v) {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsNaNOrInf reports whether v is a floating point NaN or infinity.
func IsNaNOrInf(v interface{}) bool {
	switch x := v.(type) {
	case float64:
		return math.IsNaN(x) || math.IsInf(x, 0)
	case float32:
		f := float64(x)
		return math.IsNaN(f) || math.IsInf(f, 0)
	}
	return false
}

// ToString renders arg with the default %v format.
func ToString(arg any) string {
	return fmt.Sprintf("%v", arg)
}
