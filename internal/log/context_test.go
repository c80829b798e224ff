// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := ContextWithRunID(context.Background(), "run-123")
	assert.Equal(t, "run-123", RunIDFromContext(ctx))
}

func TestRunIDFromContextMissing(t *testing.T) {
	assert.Equal(t, "", RunIDFromContext(context.Background()))
	assert.Equal(t, "", RunIDFromContext(nil)) //nolint:staticcheck // nil guard is part of the contract
}

func TestContextWithRunIDNilContext(t *testing.T) {
	ctx := ContextWithRunID(nil, "run-456") //nolint:staticcheck // nil guard is part of the contract
	assert.Equal(t, "run-456", RunIDFromContext(ctx))
}
