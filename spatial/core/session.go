package core

import "strings"

// PlaneDetection is a bit set of surface orientations the session should detect.
type PlaneDetection int

const (
	DetectHorizontal PlaneDetection = 1 << iota
	DetectVertical
)

type EnvironmentTexturing int

const (
	TexturingNone EnvironmentTexturing = iota
	TexturingManual
	TexturingAutomatic
)

// SessionConfig is the world-tracking configuration handed to Run.
type SessionConfig struct {
	PlaneDetection       PlaneDetection
	EnvironmentTexturing EnvironmentTexturing
}

type RunOptions struct {
	ResetTracking         bool
	RemoveExistingAnchors bool
}

// SessionError is a tracking-session failure as reported by the host.
type SessionError struct {
	Description        string
	FailureReason      string
	RecoverySuggestion string
}

func (e *SessionError) Error() string {
	return "tracking session failed: " + e.Description
}

// Message joins the non-empty description, reason and suggestion lines.
func (e *SessionError) Message() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Description, e.FailureReason, e.RecoverySuggestion} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}
