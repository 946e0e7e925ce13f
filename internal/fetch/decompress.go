package fetch

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// ErrEmptyInput is returned by DecompressBi5 for a zero-length buffer,
// distinct from a genuine LZMA decode failure.
var ErrEmptyInput = errors.New("empty input: nothing to decompress")

// DecompressBi5 inflates a raw LZMA stream (no container framing) as served
// by the .bi5 hour files. Output size is not known a priori.
func DecompressBi5(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return nil, ErrEmptyInput
	}

	r, err := lzma.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	return out, nil
}
