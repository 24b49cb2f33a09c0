package camera_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scanline/internal/camera"
	"github.com/MeKo-Tech/scanline/internal/testutil"
)

func fastConstraints() camera.Constraints {
	c := camera.DefaultConstraints()
	c.FrameRate = 200
	return c
}

func TestPlaybackDeliversFramesInOrder(t *testing.T) {
	frames := []camera.Frame{
		{Data: testutil.JPEG(t, testutil.QRFrame(t, "one", 160, 120))},
		{Data: testutil.JPEG(t, testutil.QRFrame(t, "two", 160, 120))},
	}
	dev := camera.NewPlayback(frames, false)

	stream, err := dev.Open(context.Background(), fastConstraints())
	require.NoError(t, err)
	defer stream.Stop()

	var got []uint64
	for f := range stream.Frames() {
		got = append(got, f.Seq)
		img, err := f.Decode()
		require.NoError(t, err)
		assert.Equal(t, 160, img.Bounds().Dx())
	}
	assert.Equal(t, []uint64{1, 2}, got)
}

func TestPlaybackExclusiveAcquisition(t *testing.T) {
	dev := camera.NewPlayback([]camera.Frame{
		{Data: testutil.JPEG(t, testutil.BlankFrame(64, 64))},
	}, true)

	stream, err := dev.Open(context.Background(), fastConstraints())
	require.NoError(t, err)

	_, err = dev.Open(context.Background(), fastConstraints())
	assert.ErrorIs(t, err, camera.ErrDeviceBusy)

	stream.Stop()
	// Stop is idempotent.
	stream.Stop()

	// After the stream winds down, the device can be reacquired.
	require.Eventually(t, func() bool {
		s, err := dev.Open(context.Background(), fastConstraints())
		if err != nil {
			return false
		}
		s.Stop()
		return true
	}, time.Second, 10*time.Millisecond)
}

func TestPlaybackFromDir(t *testing.T) {
	dir := t.TempDir()
	data := testutil.JPEG(t, testutil.QRFrame(t, "dir-frame", 160, 120))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000.jpg"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0o644))

	dev, err := camera.PlaybackFromDir(dir)
	require.NoError(t, err)

	stream, err := dev.Open(context.Background(), fastConstraints())
	require.NoError(t, err)
	defer stream.Stop()

	f, ok := <-stream.Frames()
	require.True(t, ok)
	assert.Equal(t, data, f.Data)
}

func TestPlaybackFromEmptyDir(t *testing.T) {
	_, err := camera.PlaybackFromDir(t.TempDir())
	require.Error(t, err)
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := camera.New(camera.Config{Driver: "no-such-driver"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-driver")
}
