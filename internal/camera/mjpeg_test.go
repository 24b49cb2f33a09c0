package camera

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMJPEGSplitFunc(t *testing.T) {
	frame1 := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}
	frame2 := []byte{0xFF, 0xD8, 0x03, 0xFF, 0xD9}
	stream := append(append([]byte{}, frame1...), frame2...)

	scanner := bufio.NewScanner(bytes.NewReader(stream))
	scanner.Split(mjpegSplitFunc)

	require.True(t, scanner.Scan())
	assert.Equal(t, frame1, scanner.Bytes())
	require.True(t, scanner.Scan())
	assert.Equal(t, frame2, scanner.Bytes())
	assert.False(t, scanner.Scan())
	assert.NoError(t, scanner.Err())
}

func TestMJPEGSplitFuncPartialFrame(t *testing.T) {
	// No trailer yet: the split func must request more data.
	advance, token, err := mjpegSplitFunc([]byte{0xFF, 0xD8, 0x01}, false)
	require.NoError(t, err)
	assert.Zero(t, advance)
	assert.Nil(t, token)
}

func TestMJPEGSplitFuncEOF(t *testing.T) {
	advance, token, err := mjpegSplitFunc(nil, true)
	require.NoError(t, err)
	assert.Zero(t, advance)
	assert.Nil(t, token)
}
