package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorFormatting(t *testing.T) {
	err := LoadFailure("executing request", io.ErrUnexpectedEOF)
	assert.Equal(t, "LOAD_FAILURE: executing request: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotEmpty(t, err.StackTrace())

	bare := Internal("boom", nil)
	assert.Equal(t, "INTERNAL: boom", bare.Error())
	assert.NotEmpty(t, bare.StackTrace())
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("load postings: %w", LoadFailure("status 500", nil))
	assert.True(t, Is(err, ErrTypeLoadFailure))
	assert.False(t, Is(err, ErrTypeInternal))
	assert.False(t, Is(io.EOF, ErrTypeLoadFailure))
	assert.False(t, Is(nil, ErrTypeLoadFailure))
}

func TestPublicMessage(t *testing.T) {
	const fallback = "Error Loading Job Postings"

	assert.Equal(t, fallback, PublicMessage(nil, fallback))
	assert.Equal(t, fallback, PublicMessage(io.EOF, fallback))
	assert.Equal(t, fallback, PublicMessage(LoadFailure("no body", nil), fallback))

	withMsg := LoadFailure("status 403", nil).WithPublic("Insufficient access")
	assert.Equal(t, "Insufficient access", PublicMessage(withMsg, fallback))

	wrapped := fmt.Errorf("outer: %w", withMsg)
	assert.Equal(t, "Insufficient access", PublicMessage(wrapped, fallback))

	nested := Internal("outer", LoadFailure("inner", nil).WithPublic("from inner"))
	require.Empty(t, nested.Public)
	assert.Equal(t, "from inner", PublicMessage(nested, fallback))
}
