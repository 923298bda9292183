package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "u***@example.com", MaskEmail("user@example.com"))
	assert.Equal(t, "a***@example.com", MaskEmail("a@example.com"))
	assert.Equal(t, "***", MaskEmail("not-an-email"))
}

func TestMaskKey(t *testing.T) {
	key := "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"
	assert.Equal(t, "zpub6rFR7y4Q...tZYs", MaskKey(key))
	assert.Equal(t, "***", MaskKey("short"))
}
