package domain

import "strings"

// ValidateIdentity checks that a user identity is email-shaped.
// The check is deliberately a heuristic (the identity is a scoping key,
// not a mailbox): it must contain both "@" and ".".
func ValidateIdentity(identity string) error {
	if !strings.Contains(identity, "@") || !strings.Contains(identity, ".") {
		return ErrIdentityFormat
	}
	return nil
}
