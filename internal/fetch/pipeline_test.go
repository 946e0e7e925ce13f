package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	present map[string][]byte // url -> compressed body
	fail    map[string]error
}

func (f *fakeDownloader) Download(_ context.Context, url string) ([]byte, bool, error) {
	if err, ok := f.fail[url]; ok {
		return nil, false, err
	}
	if body, ok := f.present[url]; ok {
		return body, true, nil
	}
	return nil, false, nil // absent / 404
}

func TestTickBatch_Helpers(t *testing.T) {
	hour := time.Now()
	b := NewTickBatch(hour, nil)
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.HadError)

	skipped := SkippedErrorBatch(hour)
	assert.True(t, skipped.IsEmpty())
	assert.True(t, skipped.HadError)
}

func TestFetchAndDecode_Absent(t *testing.T) {
	hour := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fd := &fakeDownloader{}

	batch, err := fetchAndDecode(context.Background(), fd, "eurusd", 100000, hour)
	require.NoError(t, err)
	assert.True(t, batch.IsEmpty())
	assert.False(t, batch.HadError)
}

func TestFetchAndDecode_HTTPErrorWraps(t *testing.T) {
	hour := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	url := TickURL("eurusd", hour)
	fd := &fakeDownloader{fail: map[string]error{url: errors.New("boom")}}

	_, err := fetchAndDecode(context.Background(), fd, "eurusd", 100000, hour)
	require.Error(t, err)
	var pe *ParacasError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "http", pe.Kind)
}

func TestFetchAndDecode_DecompressErrorWraps(t *testing.T) {
	hour := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	url := TickURL("eurusd", hour)
	fd := &fakeDownloader{present: map[string][]byte{url: []byte("not lzma data")}}

	_, err := fetchAndDecode(context.Background(), fd, "eurusd", 100000, hour)
	require.Error(t, err)
	var pe *ParacasError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "decompress", pe.Kind)
}
