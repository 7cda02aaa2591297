package protocol

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// Version is the HTTP API version reported by GET /api/version. Routes and
// JSON field names only change on a major bump.
const Version = "v1.0.0"

// ErrIncompatibleVersion is returned by CheckVersion when the API majors differ
var ErrIncompatibleVersion = errors.New("incompatible API version")

// IsCompatibleVersion reports whether a client built against clientVersion
// (the `gentexts client` command, or any caller of the JSON API) can talk to
// a `gentexts serve` instance reporting serverVersion. Only the majors must
// match; a server may add routes or fields in minor releases.
func IsCompatibleVersion(serverVersion, clientVersion string) (bool, error) {
	if !semver.IsValid(serverVersion) {
		return false, fmt.Errorf("invalid server version: %s", serverVersion)
	}
	if !semver.IsValid(clientVersion) {
		return false, fmt.Errorf("invalid client version: %s", clientVersion)
	}

	return semver.Major(serverVersion) == semver.Major(clientVersion), nil
}

// CheckVersion checks serverVersion against this build's Version
func CheckVersion(serverVersion string) error {
	ok, err := IsCompatibleVersion(serverVersion, Version)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: server speaks %s, this client needs %s.x.x",
			ErrIncompatibleVersion, serverVersion, semver.Major(Version))
	}

	return nil
}
