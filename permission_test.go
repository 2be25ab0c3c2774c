package tape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAuthority struct{}

func (failingAuthority) AuthorizationStatus() AuthorizationStatus { return AuthorizationNotDetermined }

func (failingAuthority) RequestAccess(context.Context) (bool, error) {
	return false, errors.New("prompt dismissed")
}

func TestCameraPermissionConfigure(t *testing.T) {
	tests := []struct {
		name      string
		authority StaticAuthority
		want      CameraConfiguration
	}{
		{"authorized", StaticAuthority{Status: AuthorizationAuthorized}, ConfigurationSuccess},
		{"prompt granted", StaticAuthority{Status: AuthorizationNotDetermined, Grant: true}, ConfigurationSuccess},
		{"prompt refused", StaticAuthority{Status: AuthorizationNotDetermined}, ConfigurationPermissionDenied},
		{"denied", StaticAuthority{Status: AuthorizationDenied}, ConfigurationPermissionDenied},
		{"restricted", StaticAuthority{Status: AuthorizationRestricted}, ConfigurationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCameraPermission(tt.authority)
			got, err := p.Configure(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, p.Configuration())
			assert.Equal(t, tt.want == ConfigurationSuccess, p.Granted())
		})
	}
}

func TestCameraPermissionPromptErrors(t *testing.T) {
	p := NewCameraPermission(failingAuthority{})
	got, err := p.Configure(context.Background())
	assert.ErrorContains(t, err, "prompt dismissed")
	assert.Equal(t, ConfigurationFailed, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewCameraPermission(StaticAuthority{Grant: true}).Configure(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCameraConfigurationString(t *testing.T) {
	assert.Equal(t, "success", ConfigurationSuccess.String())
	assert.Equal(t, "permission denied", ConfigurationPermissionDenied.String())
	assert.Equal(t, "failed", ConfigurationFailed.String())
}
