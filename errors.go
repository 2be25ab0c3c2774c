package tape

import "errors"

var (
	// ErrNoSurface means no estimated surface lies under the reticle.
	ErrNoSurface = errors.New("no surface under the reticle")
	// ErrObjectNotRegistered is a caller bug: the object was never loaded or was
	// already removed.
	ErrObjectNotRegistered = errors.New("object is not registered")
	ErrCameraPermission    = errors.New("camera permission not granted")
	ErrUnknownAction       = errors.New("unknown action")
	ErrMissingCollaborator = errors.New("missing collaborator")
)
