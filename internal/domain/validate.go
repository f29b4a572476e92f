package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxServiceNameLen = 255
	maxObjectPathLen  = 1024
)

// ValidateServiceName applies basic syntactic checks to a caller-supplied
// bus name
func ValidateServiceName(name string) error {
	if name == "" {
		return invalid("service name cannot be empty")
	}
	if len(name) > maxServiceNameLen {
		return invalid("service name too long")
	}
	if strings.IndexFunc(name, func(r rune) bool {
		return !isAlnum(r) && r != '.' && r != '_' && r != '-'
	}) >= 0 {
		return invalid("invalid characters in service name")
	}
	return nil
}

// ValidateObjectPath applies basic syntactic checks to a caller-supplied
// object path
func ValidateObjectPath(path string) error {
	if path == "" {
		return invalid("object path cannot be empty")
	}
	if !strings.HasPrefix(path, "/") {
		return invalid("object path must start with '/'")
	}
	if len(path) > maxObjectPathLen {
		return invalid("object path too long")
	}
	if strings.IndexFunc(path, func(r rune) bool {
		return !isAlnum(r) && r != '/' && r != '_' && r != '-'
	}) >= 0 {
		return invalid("invalid characters in object path")
	}
	return nil
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func invalid(msg string) *Fault {
	return NewFault(KindValidation, fmt.Sprintf("invalid input: %s", msg), nil)
}
