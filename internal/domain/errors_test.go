package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := domain.NotFound("warehouse %s not found", "w-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, errors.Is(err, domain.ErrConflict))

	wrapped := fmt.Errorf("inbound: %w", err)
	assert.True(t, errors.Is(wrapped, domain.ErrNotFound))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(wrapped))
}

func TestInsufficientStock_MessageCarriesAmounts(t *testing.T) {
	err := domain.InsufficientStock(decimal.NewFromInt(300), decimal.NewFromInt(500))
	assert.Equal(t, "insufficient stock: available 300 KG, requested 500 KG", err.Error())
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.False(t, domain.IsRetryable(err))
}

func TestInsufficientStock_KeepsGramPrecision(t *testing.T) {
	err := domain.InsufficientStock(decimal.RequireFromString("0.004"), decimal.RequireFromString("0.005"))
	assert.Equal(t, "insufficient stock: available 0.004 KG, requested 0.005 KG", err.Error())
}

func TestRetryableKinds(t *testing.T) {
	cause := errors.New("canceling statement due to lock timeout")
	assert.True(t, domain.IsRetryable(domain.LockTimeout(cause)))
	assert.True(t, domain.IsRetryable(domain.Conflict("stale balance version", nil)))
	assert.False(t, domain.IsRetryable(domain.InvalidOperation("same warehouse")))
	assert.False(t, domain.IsRetryable(errors.New("boom")))

	lt := domain.LockTimeout(cause)
	assert.ErrorIs(t, lt, cause)
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, domain.KindInternal, domain.KindOf(errors.New("boom")))
}
