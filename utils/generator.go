package utils

import (
	"strings"

	"github.com/google/uuid"
)

const referencePrefix = "payment-"

// GenerateReference returns a merchant reference of the form payment-<8 hex>.
func GenerateReference() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return referencePrefix + hex[:8]
}

func IsReference(s string) bool {
	if len(s) != len(referencePrefix)+8 || !strings.HasPrefix(s, referencePrefix) {
		return false
	}
	for _, c := range s[len(referencePrefix):] {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}
