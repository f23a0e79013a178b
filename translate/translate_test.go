package translate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	Use()
	assert.Equal("Invalid opcode 0x10", From("Invalid opcode 0x%x", 16))
	assert.Equal("line 3 'stop' oops", From("line %d '%v' %v", 3, "stop", "oops"))
}

func TestFprintf(t *testing.T) {
	assert := assert.New(t)

	Use(DEFAULT_LANGUAGE)

	buf := &bytes.Buffer{}
	n, err := Fprintf(buf, "%v = %d\n", "total", 7)
	assert.NoError(err)
	assert.Equal(10, n)
	assert.Equal("total = 7\n", buf.String())
}
