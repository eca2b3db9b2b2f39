package s3io_test

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"fmt"
	mrand "math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpDown(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	prefix := fmt.Sprintf("test-%s/", time.Now().Format("20060102150405"))

	numBuffers := 3
	if client.CanEncrypt() {
		numBuffers = 4
	}
	buffers := make([][]byte, numBuffers)
	for i := range buffers {
		size := 5*1024*1024 + mrand.Int31n(5*1024*1024)
		buffer := make([]byte, size)
		_, err := crand.Read(buffer)
		require.NoError(t, err)

		buffers[i] = buffer
	}

	for idx, buffer := range buffers {
		key := fmt.Sprintf("%s%09d", prefix, idx)
		ubuffer := bytes.NewReader(buffer)

		var size int64
		var err error

		switch idx {
		case 0:
			size, err = client.Upload(ctx, key, ubuffer)
			require.Equal(t, len(buffer), int(size))
		case 1:
			_, err = client.UploadPassphrase(ctx, key, ubuffer, false)
		case 2:
			_, err = client.UploadPassphrase(ctx, key, ubuffer, true)
		default:
			_, err = client.UploadEncrypted(ctx, key, ubuffer, true)
		}

		require.NoError(t, err)
	}

	for idx, buffer := range buffers {
		key := fmt.Sprintf("%s%09d", prefix, idx)
		dbuffer := bytes.NewBuffer(nil)

		size, err := client.Download(ctx, key, dbuffer)

		require.NoError(t, err)
		require.Equal(t, len(buffer), int(size))
		require.Equal(t, buffer, dbuffer.Bytes(), fmt.Sprintf("iteration %d", idx))
	}

	expectedKey := fmt.Sprintf("%s%09d", prefix, len(buffers)-1)

	key, _, err := client.LatestMatching(ctx, prefix)
	require.NoError(t, err)
	require.Equal(t, expectedKey, key)
}
