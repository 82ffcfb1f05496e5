package common

import (
	"fmt"
	"strings"
	"time"
)

const loginHeader = "FailVault admin login"

// LoginMessage is the text an admin signs with personal_sign to obtain an
// access token.
func LoginMessage(address string, issued time.Time) string {
	return fmt.Sprintf("%s\naddress: %s\nissued: %s", loginHeader, address, issued.UTC().Format(time.RFC3339))
}

// ParseLoginMessage is the inverse of LoginMessage.
func ParseLoginMessage(msg string) (address string, issued time.Time, err error) {
	lines := strings.Split(msg, "\n")
	if len(lines) != 3 || lines[0] != loginHeader {
		return "", time.Time{}, fmt.Errorf("%w: malformed login message", ErrBadSignature)
	}
	address, ok := strings.CutPrefix(lines[1], "address: ")
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: missing address", ErrBadSignature)
	}
	ts, ok := strings.CutPrefix(lines[2], "issued: ")
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: missing timestamp", ErrBadSignature)
	}
	issued, err = time.Parse(time.RFC3339, ts)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return address, issued, nil
}
