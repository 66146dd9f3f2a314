//go:build nocgo

package piper

import "errors"

const bytesPerSample = 2

func newDevicePlayer() (Player, error) {
	return nil, errors.New("audio not available in nocgo build")
}
