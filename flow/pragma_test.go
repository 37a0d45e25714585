package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPragma(t *testing.T) {
	t.Parallel()

	assert.True(t, HasPragma([]byte("/* @flow */\nvar x = 1;")))
	assert.True(t, HasPragma([]byte("// @flow\nvar x = 1;")))
	assert.True(t, HasPragma([]byte("/**\n * @flow strict\n */")))
	assert.False(t, HasPragma([]byte("var x = 1;")))
	assert.False(t, HasPragma(nil))
}
