package types

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/crytic/medusa-geth/crypto"
)

// placeholderExp matches the placeholder formats solc emits for unlinked libraries: "__$<hash>$__" (solc >= 0.5.0)
// and "__<name>__" padded with underscores (older releases).
var placeholderExp = regexp.MustCompile(`__(\$[0-9a-fA-F]*\$|\w*)__`)

// FullyQualifiedName returns the "sourceName:libraryName" form of a library name.
func FullyQualifiedName(sourceName string, libraryName string) string {
	return sourceName + ":" + libraryName
}

// SplitFullyQualifiedName splits a "sourceName:libraryName" string on its last colon. If the name is not
// fully-qualified, the source name is empty.
func SplitFullyQualifiedName(name string) (string, string) {
	idx := strings.LastIndex(name, ":")
	if idx == -1 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

// GenerateLibraryPlaceholder creates a library placeholder based on the keccak256 hash of the fully qualified library
// name according to Solidity's algorithm. The returned string is the 34 hex character hash, without the "__$" and
// "$__" delimiters.
func GenerateLibraryPlaceholder(fullyQualifiedName string) string {
	hash := crypto.Keccak256Hash([]byte(fullyQualifiedName))

	// Take the first 34 characters of the hash (17 bytes)
	return hex.EncodeToString(hash.Bytes())[:34]
}

// PlaceholderPattern wraps a placeholder hash in the delimiters used within bytecode, producing a string that is
// exactly as long as the hex encoding of an address.
func PlaceholderPattern(placeholder string) string {
	return "__$" + placeholder + "$__"
}

// ParseBytecodeForPlaceholders identifies the library placeholders embedded within the given bytecode string.
//
// Returns a set keyed by the placeholder identifiers with the "_" and "$" delimiters removed. The set is empty if the
// bytecode is fully linked.
func ParseBytecodeForPlaceholders(bytecode string) map[string]struct{} {
	substrings := placeholderExp.FindAllString(bytecode, -1)

	placeholders := make(map[string]struct{}, len(substrings))
	for _, substring := range substrings {
		substring = strings.ReplaceAll(strings.ReplaceAll(substring, "_", ""), "$", "")
		placeholders[substring] = struct{}{}
	}
	return placeholders
}

// ReadLinkReference returns the hex characters that currently occupy the given link reference region of bytecode. For
// unlinked bytecode this is the library's placeholder pattern. An empty string is returned if the region lies outside
// of the bytecode.
func ReadLinkReference(bytecode string, ref LinkReference) string {
	if len(bytecode) < 2 {
		return ""
	}
	byteLength := (len(bytecode) - 2) / 2
	if ref.Start < 0 || ref.Length < 0 || ref.Start > byteLength-ref.Length {
		return ""
	}
	start := 2 + ref.Start*2
	return bytecode[start : start+ref.Length*2]
}
