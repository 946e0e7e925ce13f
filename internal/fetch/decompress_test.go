package fetch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompressBi5_EmptyInput(t *testing.T) {
	_, err := DecompressBi5(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestDecompressBi5_GarbageInput(t *testing.T) {
	_, err := DecompressBi5([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyInput))
}
