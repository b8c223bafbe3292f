package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propgraph/internal/graph"
	"github.com/roach88/propgraph/internal/projection"
	"github.com/roach88/propgraph/internal/querysql"
)

func TestExitError(t *testing.T) {
	err := NewExitError(ExitCommandError, "bad flags")
	assert.Equal(t, "bad flags", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	cause := errors.New("disk full")
	wrapped := WrapExitError(ExitFailure, "write failed", cause)
	assert.Equal(t, "write failed: disk full", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("outer: %w", err)))
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"operator", &projection.UnrecognizedOperatorError{Keyword: "$eqq"}, ErrCodeFilter},
		{"malformed", &projection.MalformedFilterError{Message: "empty clause"}, ErrCodeFilter},
		{"not found", fmt.Errorf("node x: %w", graph.ErrNotFound), ErrCodeNotFound},
		{"unsupported", fmt.Errorf("%w: $all on tags has no SQL form", querysql.ErrUnsupported), ErrCodeUnsupported},
		{"load", fmt.Errorf("%w: missing.json", errLoad), ErrCodeLoadFailed},
		{"wrapped", WrapExitError(ExitFailure, "find failed", fmt.Errorf("x: %w", graph.ErrNotFound)), ErrCodeNotFound},
		{"other", errors.New("boom"), ErrCodeGeneric},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorCode(tc.err))
		})
	}
}

func TestOutputFormatter_Text(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &errOut}

	require.NoError(t, f.Success(map[string]int{"count": 2}, "2"))
	assert.Equal(t, "2\n", out.String())

	require.NoError(t, f.Error(ErrCodeGeneric, "boom", nil))
	assert.Contains(t, errOut.String(), "boom")
	assert.Equal(t, "2\n", out.String())
}

func TestOutputFormatter_JSON(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out}

	require.NoError(t, f.Success(map[string]int{"count": 2}, "ignored"))
	resp := decode[map[string]int](t, out.String())
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data["count"])
	assert.Nil(t, resp.Error)

	out.Reset()
	require.NoError(t, f.Error(ErrCodeNotFound, "node x: not found", nil))
	resp = decode[map[string]int](t, out.String())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}
