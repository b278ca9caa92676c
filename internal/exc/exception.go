// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"

	"gopkg.microglot.org/erlc.go/internal/idl"
)

type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

type Exception interface {
	error
	Code() string
	Message() string
	Severity() Severity
	Location() Location
	Labels() []Label
}

type Location struct {
	idl.Span
	URI string
}

// Label attaches a message to a source span. The first label on an exception
// is the primary one; any further labels are secondary context.
type Label struct {
	Span    idl.Span
	Message string
}

type exc struct {
	code     string
	message  string
	severity Severity
	location Location
	labels   []Label
}

func (e *exc) Error() string {
	return fmt.Sprintf("%s:%d:%d -- %s %s: %s", e.location.URI, e.location.Start.Line, e.location.Start.Column, e.severity, e.code, e.message)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Severity() Severity {
	return e.severity
}

func (e *exc) Location() Location {
	return e.location
}

func (e *exc) Labels() []Label {
	return e.labels
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

func New(location Location, code string, message string, labels ...Label) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
		severity: SeverityError,
		labels:   labels,
	}
}

// NewWarning builds a recoverable exception. Reporting it never aborts the
// surrounding parse.
func NewWarning(location Location, code string, message string, labels ...Label) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
		severity: SeverityWarning,
		labels:   labels,
	}
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: New(location, code, e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}
