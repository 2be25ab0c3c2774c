package tape

import (
	"context"
	"fmt"
	"sync"
)

type AuthorizationStatus int

const (
	AuthorizationNotDetermined AuthorizationStatus = iota
	AuthorizationAuthorized
	AuthorizationDenied
	AuthorizationRestricted
)

// CameraAuthority is the platform's camera permission service.
type CameraAuthority interface {
	AuthorizationStatus() AuthorizationStatus
	// RequestAccess prompts the user and blocks until they answer.
	RequestAccess(ctx context.Context) (bool, error)
}

type CameraConfiguration int

const (
	ConfigurationFailed CameraConfiguration = iota
	ConfigurationSuccess
	ConfigurationPermissionDenied
)

func (c CameraConfiguration) String() string {
	switch c {
	case ConfigurationSuccess:
		return "success"
	case ConfigurationPermissionDenied:
		return "permission denied"
	}
	return "failed"
}

// CameraPermission tracks whether the camera may be used. Create one per
// engine and pass it in; there is no shared instance.
type CameraPermission struct {
	authority CameraAuthority

	mu            sync.Mutex
	configuration CameraConfiguration
}

func NewCameraPermission(authority CameraAuthority) *CameraPermission {
	return &CameraPermission{authority: authority}
}

// Configure resolves the permission, prompting when the user has not decided yet.
func (p *CameraPermission) Configure(ctx context.Context) (CameraConfiguration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.authority.AuthorizationStatus() {
	case AuthorizationAuthorized:
		p.configuration = ConfigurationSuccess
	case AuthorizationNotDetermined:
		granted, err := p.authority.RequestAccess(ctx)
		if err != nil {
			return p.configuration, fmt.Errorf("request camera access: %w", err)
		}
		if granted {
			p.configuration = ConfigurationSuccess
		} else {
			p.configuration = ConfigurationPermissionDenied
		}
	case AuthorizationDenied:
		p.configuration = ConfigurationPermissionDenied
	}
	return p.configuration, nil
}

func (p *CameraPermission) Configuration() CameraConfiguration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.configuration
}

func (p *CameraPermission) Granted() bool {
	return p.Configuration() == ConfigurationSuccess
}

// StaticAuthority answers from fixed values. Useful for simulators and tests.
type StaticAuthority struct {
	Status AuthorizationStatus
	// Grant is the user's answer when prompted.
	Grant bool
}

func (a StaticAuthority) AuthorizationStatus() AuthorizationStatus { return a.Status }

func (a StaticAuthority) RequestAccess(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return a.Grant, nil
}
