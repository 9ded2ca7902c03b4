package id

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestEventScopedDeterministic(t *testing.T) {
	a := EventScoped("0xabc", 3, 1)
	b := EventScoped("0xabc", 3, 1)
	assert.Equal(t, a, b)
	assert.Equal(t, "0xabc-3-1", a)

	assert.NotEqual(t, a, EventScoped("0xabc", 3, 2))
	assert.NotEqual(t, a, EventScoped("0xabc", 4, 1))
}

func TestVersionedAndBucketed(t *testing.T) {
	base := Composite("acct", "mkt", "SUPPLIER")
	assert.Equal(t, "acct-mkt-SUPPLIER-0", Versioned(base, 0))
	assert.Equal(t, "acct-mkt-SUPPLIER-7", Versioned(base, 7))
	assert.Equal(t, "acct-mkt-SUPPLIER-19723", Bucketed(base, 19723))
}

func TestTraceIDFromStable(t *testing.T) {
	assert.Equal(t, TraceIDFrom("hello"), TraceIDFrom("hello"))
	assert.NotEqual(t, TraceIDFrom("hello"), TraceIDFrom("world"))
}
