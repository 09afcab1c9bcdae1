package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Engine state.
	ErrStopped       = "E_STOPPED"
	ErrWorldNotFound = "E_WORLD_NOT_FOUND"

	// Trigger layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrConflict      = "E_CONFLICT"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrStopped:         {},
	ErrWorldNotFound:   {},
	ErrBadRequest:      {},
	ErrInvalidTarget:   {},
	ErrConflict:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
