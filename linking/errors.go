package linking

import (
	"fmt"
	"strings"
)

// AmbiguousLibraryNameError indicates a library mapping key matches more than one library needed by a contract. The
// caller must disambiguate the key by using one of the fully qualified names in MatchingLibraries.
type AmbiguousLibraryNameError struct {
	ContractName      string
	LibraryName       string
	MatchingLibraries []string
}

// Error returns the error message string, implementing the `error` interface.
func (e *AmbiguousLibraryNameError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "the library name %q is ambiguous for contract %q, it may resolve to one of the following libraries:\n", e.LibraryName, e.ContractName)
	for _, fqName := range e.MatchingLibraries {
		fmt.Fprintf(&sb, "\t* %s\n", fqName)
	}
	sb.WriteString("use one of these fully qualified library names instead")
	return sb.String()
}

// UnnecessaryLibraryLinkError indicates a library mapping key does not correspond to any library needed by a contract.
type UnnecessaryLibraryLinkError struct {
	ContractName string
	LibraryName  string
}

// Error returns the error message string, implementing the `error` interface.
func (e *UnnecessaryLibraryLinkError) Error() string {
	return fmt.Sprintf("the library name %q was linked but it is not referenced by contract %q", e.LibraryName, e.ContractName)
}

// OverlappingLibraryNamesError indicates both the fully qualified name and the short name of one needed library were
// provided in a library mapping.
type OverlappingLibraryNamesError struct {
	SourceName  string
	LibraryName string
}

// Error returns the error message string, implementing the `error` interface.
func (e *OverlappingLibraryNamesError) Error() string {
	return fmt.Sprintf(
		"the library names %q and %q refer to the same library, provide only one of them",
		e.LibraryName, NeededLibrary{SourceName: e.SourceName, LibraryName: e.LibraryName}.FullyQualifiedName(),
	)
}

// MissingLibraryAddressError indicates one or more libraries needed by a contract were given no address.
type MissingLibraryAddressError struct {
	ContractName     string
	MissingLibraries []NeededLibrary
}

// Error returns the error message string, implementing the `error` interface.
func (e *MissingLibraryAddressError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "contract %q needs the following libraries to be linked:\n", e.ContractName)
	for _, library := range e.MissingLibraries {
		fmt.Fprintf(&sb, "\t* %s\n", library.FullyQualifiedName())
	}
	sb.WriteString("deploy them first and provide their addresses")
	return sb.String()
}

// InvalidLibraryAddressError indicates one or more libraries needed by a contract resolved to an address which is not a
// "0x"-prefixed, 20-byte hex string. An empty Address means no address was resolved at all.
type InvalidLibraryAddressError struct {
	ContractName     string
	InvalidLibraries []Link
}

// Error returns the error message string, implementing the `error` interface.
func (e *InvalidLibraryAddressError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "contract %q has libraries linked to invalid addresses:\n", e.ContractName)
	for _, link := range e.InvalidLibraries {
		address := link.Address
		if address == "" {
			address = "<none>"
		}
		fmt.Fprintf(&sb, "\t* %s: %s\n", link.FullyQualifiedName(), address)
	}
	sb.WriteString("provide 0x-prefixed, 40 hex character addresses")
	return sb.String()
}
