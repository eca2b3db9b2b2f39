package s3io_test

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studio1767/phonesync/internal/s3io"
)

func TestReadCounterIsZeroWhenCreated(t *testing.T) {
	rc := s3io.NewReadCounter(new(bytes.Buffer))

	require.Equal(t, 0, rc.TotalReads())
	require.Equal(t, int64(0), rc.TotalBytes())
}

func TestFiveReadsCountsFive(t *testing.T) {
	var dsize int64 = 1024

	rc := s3io.NewReadCounter(bytes.NewBuffer(make([]byte, dsize*5)))
	dstData := make([]byte, dsize)

	for i := 0; i < 5; i++ {
		size, err := rc.Read(dstData)
		require.NoError(t, err)
		require.Equal(t, dsize, int64(size))
	}

	require.Equal(t, 5, rc.TotalReads())
	require.Equal(t, 5*dsize, rc.TotalBytes())
}

func TestCountedReadDataMatches(t *testing.T) {
	srcData := make([]byte, 300*1024)
	_, err := rand.Read(srcData)
	require.NoError(t, err)

	rc := s3io.NewReadCounter(bytes.NewReader(srcData))
	dstData, err := io.ReadAll(rc)

	require.NoError(t, err)
	require.Equal(t, srcData, dstData)
	require.Equal(t, int64(len(srcData)), rc.TotalBytes())
	require.Greater(t, rc.TotalReads(), 1)
}
