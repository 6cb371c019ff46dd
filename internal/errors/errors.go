package errors

import (
	"fmt"
	"time"
)

// Error types for the file-search matching core
type ErrorType string

const (
	// Query layer errors. These never reach callers of the search API:
	// the orchestrator degrades to fallback matching instead.
	ErrorTypeParse   ErrorType = "parse"
	ErrorTypePattern ErrorType = "pattern"
	ErrorTypeCompile ErrorType = "compile"

	// Search errors
	ErrorTypeSearch ErrorType = "search"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// ParseError represents a query that could not be parsed into an AST.
// It is a signal for the fallback path, not a user-visible failure.
type ParseError struct {
	Type      ErrorType
	Query     string
	Position  int
	Token     string
	Timestamp time.Time
}

// NewParseError creates a new parse error with context
func NewParseError(query string, position int, token string) *ParseError {
	return &ParseError{
		Type:      ErrorTypeParse,
		Query:     query,
		Position:  position,
		Token:     token,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("cannot parse query %q near token %q", e.Query, e.Token)
	}
	return fmt.Sprintf("cannot parse query %q", e.Query)
}

// PatternError represents a regular expression that failed to compile.
type PatternError struct {
	Type       ErrorType
	Pattern    string
	Underlying error
	Timestamp  time.Time
}

// NewPatternError creates a new pattern compile error
func NewPatternError(pattern string, err error) *PatternError {
	return &PatternError{
		Type:       ErrorTypePattern,
		Pattern:    pattern,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q failed to compile: %v", e.Pattern, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *PatternError) Unwrap() error {
	return e.Underlying
}

// CompileError represents an AST shape the query compiler does not handle.
// Every AST variant is handled exhaustively, so this only fires for node
// kinds added to the AST but not yet to the compiler.
type CompileError struct {
	Type      ErrorType
	NodeKind  string
	Timestamp time.Time
}

// NewCompileError creates a new compile error for an unhandled node kind
func NewCompileError(nodeKind string) *CompileError {
	return &CompileError{
		Type:      ErrorTypeCompile,
		NodeKind:  nodeKind,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *CompileError) Error() string {
	return fmt.Sprintf("no compilation rule for AST node kind %s", e.NodeKind)
}

// SearchError represents a search operation error
type SearchError struct {
	Type       ErrorType
	Query      string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError creates a new search error
func NewSearchError(op, query string, err error) *SearchError {
	return &SearchError{
		Type:       ErrorTypeSearch,
		Query:      query,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SearchError) Error() string {
	return fmt.Sprintf("search %s failed for query %q: %v", e.Operation, e.Query, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SearchError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Type       ErrorType
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Type:       ErrorTypeConfig,
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}
