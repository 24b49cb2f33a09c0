package camera

import "bytes"

var (
	jpegHeader  = []byte{0xFF, 0xD8}
	jpegTrailer = []byte{0xFF, 0xD9}
)

// mjpegSplitFunc splits an MJPEG byte stream into individual JPEG frames by
// locating the JPEG trailer at the end of each frame. It is intended as a
// bufio.SplitFunc:
//
//	scanner := bufio.NewScanner(stdout)
//	scanner.Split(mjpegSplitFunc)
func mjpegSplitFunc(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.Index(data, jpegTrailer); i >= 0 {
		return i + 2, data[0 : i+2], nil
	}

	// Request more data.
	return 0, nil, nil
}
