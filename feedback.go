package tape

// Haptics is the device's impact feedback generator.
type Haptics interface {
	ImpactOccurred()
}

// Messenger shows user-facing status and error text.
type Messenger interface {
	ShowMessage(text string)
	ShowError(title, message string)
}

const (
	MsgCannotPlace     = "CANNOT PLACE OBJECT\nTry moving left or right."
	MsgFindSurface     = "FIND A SURFACE TO PLACE AN OBJECT"
	MsgSurfaceDetected = "SURFACE DETECTED"
	MsgTryMoving       = "TRY MOVING LEFT OR RIGHT"
	MsgSessionFailed   = "The AR session failed."
)

type nopHaptics struct{}

func (nopHaptics) ImpactOccurred() {}

// LogMessenger writes user-facing messages to a Logger.
type LogMessenger struct {
	Log Logger
}

func (m LogMessenger) ShowMessage(text string) {
	m.Log.Infof("%s", text)
}

func (m LogMessenger) ShowError(title, message string) {
	m.Log.Errorf("%s: %s", title, message)
}
