package core

import "errors"

// Protocol and network defaults shared across the multicast receiver and
// its configuration surface.
const (
	DefaultMulticastPort = 30000
	DefaultBufferSize    = 1600
	DefaultBufferCount   = 2
)

// Error definitions shared by the receiver and its configuration layer.
var (
	ErrInvalidMulticastGroup = errors.New("invalid multicast group address")
	ErrInvalidPort           = errors.New("invalid port")
	ErrBufferCountTooSmall   = errors.New("buffer count must be at least 1")
)
