package core

import (
	"fmt"
	"strings"
)

// SigningProfile names the credential configuration used to sign the final
// artifact. Signing itself is done by the external toolchain.
type SigningProfile int

// Signing profiles.
const (
	// SigningUnknown is the zero value and never appears in a resolved descriptor.
	SigningUnknown SigningProfile = iota
	// SigningDebug signs with the toolchain's debug keystore.
	SigningDebug
	// SigningRelease signs with the release credentials.
	SigningRelease
)

// String returns the string representation of the signing profile.
func (p SigningProfile) String() string {
	switch p {
	case SigningDebug:
		return "debug"
	case SigningRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ParseSigningProfile converts a string to a SigningProfile value.
// Matching is case-insensitive and ignores surrounding whitespace.
// Returns SigningUnknown and false if the name is not a known profile.
func ParseSigningProfile(s string) (SigningProfile, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return SigningDebug, true
	case "release":
		return SigningRelease, true
	default:
		return SigningUnknown, false
	}
}

// SigningProfiles returns all valid profile names.
func SigningProfiles() []string {
	return []string{SigningDebug.String(), SigningRelease.String()}
}

// MarshalText implements encoding.TextMarshaler. Only profiles that
// UnmarshalText accepts can be encoded.
func (p SigningProfile) MarshalText() ([]byte, error) {
	if p != SigningDebug && p != SigningRelease {
		return nil, fmt.Errorf("cannot encode signing profile %s", p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SigningProfile) UnmarshalText(text []byte) error {
	parsed, ok := ParseSigningProfile(string(text))
	if !ok {
		return fmt.Errorf("unknown signing profile %q (valid: %s)", string(text), strings.Join(SigningProfiles(), ", "))
	}
	*p = parsed
	return nil
}
