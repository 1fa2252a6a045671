package uatransport

import "github.com/foundry-iiot/opcua/pkg/uaerr"

// Sentinel-style error constructors, following the per-package
// Err*-var convention of backkem/matter's pkg/transport/errors.go,
// adapted to uaerr's Kind-tagged Error so callers can branch on
// failure class.
var (
	ErrClosed            = uaerr.TransportErr("connection closed")
	ErrNotConnected       = uaerr.TransportErr("not connected")
	ErrAlreadyConnected   = uaerr.TransportErr("already connected")
	ErrInvalidEndpointURL = uaerr.UsageErr("invalid endpoint URL")
	ErrMessageTooLarge    = uaerr.FramingErr("message exceeds negotiated buffer size")
)
