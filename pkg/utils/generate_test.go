package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateBookingReferenceFormat(t *testing.T) {
	ref := GenerateBookingReference()
	assert.Regexp(t, regexp.MustCompile(`^BUS-\d{8}-\d{6}-\d{4}$`), ref)
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, ParseInt("5", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 10, ParseInt("0", 10))
	assert.Equal(t, 10, ParseInt("-3", 10))
}
