package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetError_IsKind(t *testing.T) {
	err := New(BadSelection, "selection must be a single cell")

	assert.True(t, stderrors.Is(err, BadSelection))
	assert.False(t, stderrors.Is(err, BadSyntax))
	assert.Equal(t, "BAD_SELECTION: selection must be a single cell", err.Error())
}

func TestSheetError_WrappedChain(t *testing.T) {
	inner := New(BadFormat, "unterminated quote")
	outer := fmt.Errorf("load table: %w", inner)

	kind, ok := KindOf(outer)
	require.True(t, ok)
	assert.Equal(t, BadFormat, kind)
	assert.True(t, IsKind(outer, BadFormat))
}

func TestSheetError_Cause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := NewFileAccessError("table.txt", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: permission denied")

	path, ok := err.GetContext("path")
	require.True(t, ok)
	assert.Equal(t, "table.txt", path)
}

func TestBareKindIsSentinel(t *testing.T) {
	err := fmt.Errorf("step 3: %w", InfiniteLoop)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, InfiniteLoop, kind)
}

func TestKindOf_Unclassified(t *testing.T) {
	_, ok := KindOf(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestNewCommandNotFoundError_Suggestion(t *testing.T) {
	err := NewCommandNotFoundError("irwo", 4, "irow")
	assert.Contains(t, err.Error(), `did you mean "irow"?`)

	err = NewCommandNotFoundError("zzz", 0, "")
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestNewCommandNotFoundError_EmptyText(t *testing.T) {
	err := NewCommandNotFoundError("", 6, "")
	assert.Equal(t, "COMMAND_NOT_FOUND: empty command at offset 6", err.Error())
}
