package host

import "errors"

// Client errors
var (
	// ErrNoGreeting indicates the device never sent its "start" handshake
	ErrNoGreeting = errors.New("no boot greeting received from device")

	// ErrInvalidRate indicates an unparseable or out-of-range sample rate
	ErrInvalidRate = errors.New("invalid sample rate")

	// ErrInvalidFrequency indicates an out-of-range generator frequency
	ErrInvalidFrequency = errors.New("invalid generator frequency")

	// ErrInvalidDuty indicates a duty ratio outside (0, 1)
	ErrInvalidDuty = errors.New("duty ratio must be between 0 and 1")
)
