package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestIsCompatibleVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		server  string
		client  string
		want    bool
		wantErr bool
	}{
		{name: "same version", server: "v1.0.0", client: "v1.0.0", want: true},
		{name: "newer minor", server: "v1.4.2", client: "v1.0.0", want: true},
		{name: "different major", server: "v2.0.0", client: "v1.0.0", want: false},
		{name: "invalid server", server: "1.0.0", client: "v1.0.0", wantErr: true},
		{name: "invalid client", server: "v1.0.0", client: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := IsCompatibleVersion(tt.server, tt.client)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsCompatibleVersion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsCompatibleVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckVersion(t *testing.T) {
	t.Parallel()

	if err := CheckVersion(Version); err != nil {
		t.Fatalf("CheckVersion(%s) = %v, want nil", Version, err)
	}
	if err := CheckVersion("v1.9.3"); err != nil {
		t.Errorf("CheckVersion(v1.9.3) = %v, want nil", err)
	}

	err := CheckVersion("v2.0.0")
	if !errors.Is(err, ErrIncompatibleVersion) {
		t.Fatalf("CheckVersion(v2.0.0) = %v, want ErrIncompatibleVersion", err)
	}
	if !strings.Contains(err.Error(), "v2.0.0") {
		t.Errorf("error %q does not name the server version", err)
	}

	if err := CheckVersion("garbage"); err == nil || errors.Is(err, ErrIncompatibleVersion) {
		t.Errorf("CheckVersion(garbage) = %v, want a parse error", err)
	}
}
