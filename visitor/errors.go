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
	"fmt"
)

// ErrorKind classifies calculation errors. All kinds are programmer or
// configuration errors and are never worth retrying.
type ErrorKind int

const (
	ErrorKindIncompatibleMerge ErrorKind = iota
	ErrorKindIllegalOptimizedMerge
	ErrorKindNonComparableInput
	ErrorKindPrematureResultAccess
	ErrorKindUnsupportedWrap
	ErrorKindUnknownAggregate
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindIncompatibleMerge:
		return "INCOMPATIBLE_MERGE"
	case ErrorKindIllegalOptimizedMerge:
		return "ILLEGAL_OPTIMIZED_MERGE"
	case ErrorKindNonComparableInput:
		return "NON_COMPARABLE_INPUT"
	case ErrorKindPrematureResultAccess:
		return "PREMATURE_RESULT_ACCESS"
	case ErrorKindUnsupportedWrap:
		return "UNSUPPORTED_WRAP"
	case ErrorKindUnknownAggregate:
		return "UNKNOWN_AGGREGATE"
	default:
		return "UNKNOWN_ERROR"
	}
}

// CalcError is returned by merges, visits and registry lookups.
// errors.Is matches any CalcError of the same kind, so callers test against
// the Err* sentinels below.
type CalcError struct {
	Kind    ErrorKind
	Message string
}

func (e *CalcError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("[%s]", e.Kind)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *CalcError) Is(target error) bool {
	t, ok := target.(*CalcError)
	return ok && t.Kind == e.Kind
}

var (
	ErrIncompatibleMerge     = &CalcError{Kind: ErrorKindIncompatibleMerge}
	ErrIllegalOptimizedMerge = &CalcError{Kind: ErrorKindIllegalOptimizedMerge}
	ErrNonComparableInput    = &CalcError{Kind: ErrorKindNonComparableInput}
	ErrPrematureResultAccess = &CalcError{Kind: ErrorKindPrematureResultAccess}
	ErrUnsupportedWrap       = &CalcError{Kind: ErrorKindUnsupportedWrap}
	ErrUnknownAggregate      = &CalcError{Kind: ErrorKindUnknownAggregate}
)

// NewError builds a CalcError with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *CalcError {
	return &CalcError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func incompatible(a, b CalcResult) error {
	return NewError(ErrorKindIncompatibleMerge, "cannot merge %T with %T", a, b)
}
