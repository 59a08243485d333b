package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrSynthesisFailure, "no unified response").
		WithCause(root).
		WithStrategy("parallel").
		WithStage("synthesize").
		WithReasoning("empty response set").
		WithHTTPStatus(500)

	assert.Equal(t, ErrSynthesisFailure, GetErrorCode(err))
	assert.True(t, errors.Is(err, root))
	assert.Contains(t, err.Error(), "strategy=parallel")
	assert.Contains(t, err.Error(), "root")
	assert.Equal(t, "synthesize", err.Stage)
}

func TestError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	sentinel := NewError(ErrInsufficientResponses, "sentinel")
	err := fmt.Errorf("execute: %w", NewError(ErrInsufficientResponses, "all agents failed").WithStrategy("parallel"))

	assert.True(t, errors.Is(err, sentinel))
	assert.False(t, errors.Is(err, NewError(ErrSynthesisFailure, "other")))
	assert.True(t, IsErrorCode(err, ErrInsufficientResponses))

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "parallel", e.Strategy)
}

func TestErrorCode_Fatal(t *testing.T) {
	t.Parallel()

	assert.True(t, ErrNoSuitableStrategy.Fatal())
	assert.True(t, ErrStrategyRequirementsUnmet.Fatal())
	assert.True(t, ErrInsufficientResponses.Fatal())
	assert.True(t, ErrSynthesisFailure.Fatal())
	assert.False(t, ErrAgentExecutionFailure.Fatal())
	assert.False(t, ErrConsensusBuildingFailure.Fatal())
}

func TestGetErrorCode_PlainError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	_, ok := AsError(errors.New("plain"))
	assert.False(t, ok)
}
