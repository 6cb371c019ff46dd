package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	err := NewParseError("size<", 5, "<")
	assert.Equal(t, ErrorTypeParse, err.Type)
	assert.Contains(t, err.Error(), "size<")
	assert.NotZero(t, err.Timestamp)
}

func TestPatternErrorUnwrap(t *testing.T) {
	underlying := errors.New("missing closing )")
	err := NewPatternError("(unclosed", underlying)

	assert.Equal(t, ErrorTypePattern, err.Type)
	assert.Equal(t, "(unclosed", err.Pattern)
	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "(unclosed")
}

func TestCompileError(t *testing.T) {
	err := NewCompileError("42")
	assert.Equal(t, ErrorTypeCompile, err.Type)
	assert.Contains(t, err.Error(), "42")
}

func TestSearchErrorUnwrap(t *testing.T) {
	underlying := errors.New("root vanished")
	err := NewSearchError("index build", "/gone", underlying)

	assert.Equal(t, ErrorTypeSearch, err.Type)
	assert.Equal(t, "index build", err.Operation)
	assert.ErrorIs(t, err, underlying)
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("search.workers", "-1", nil)
	require.Error(t, err)
	assert.Equal(t, ErrorTypeConfig, err.Type)
	assert.Contains(t, err.Error(), "search.workers")
}
