package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	options := []Option{
		New("limit", 3),
		New("name", "citizens"),
		New("limit", 7),
		New("verbose", "not a bool"),
	}

	assert.Equal(t, 7, Get(options, "limit", 0), "last option wins")
	assert.Equal(t, "citizens", Get(options, "name", ""))
	assert.Equal(t, true, Get(options, "verbose", true), "mistyped value falls back to default")
	assert.Equal(t, 42, Get(options, "missing", 42))
	assert.Equal(t, 42, Get(nil, "missing", 42))
}
