package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestParseInt(t *testing.T) {
	assert.Equal(t, 0, parseInt(nil))
	assert.Equal(t, 0, parseInt(strptr("")))
	assert.Equal(t, 0, parseInt(strptr("abc")))
	assert.Equal(t, 0, parseInt(strptr("12.5")))
	assert.Equal(t, 42, parseInt(strptr("42")))
	assert.Equal(t, 42, parseInt(strptr(" 42 ")))
	assert.Equal(t, -7, parseInt(strptr("-7")))
}

func TestParseInt64(t *testing.T) {
	assert.Equal(t, int64(0), parseInt64(nil))
	assert.Equal(t, int64(0), parseInt64(strptr("not a number")))
	assert.Equal(t, int64(9000000000), parseInt64(strptr("9000000000")))
}

func TestFormatRoundTrip(t *testing.T) {
	assert.Equal(t, 123, parseInt(strptr(formatInt(123))))
	assert.Equal(t, int64(456), parseInt64(strptr(formatInt64(456))))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "paracetamol", escapeLike("paracetamol"))
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `\\\%`, escapeLike(`\%`))
}
