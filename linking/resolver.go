package linking

import (
	"slices"

	"github.com/crytic/solink/compilation/types"
	"golang.org/x/exp/maps"
)

// ResolveBytecodeWithLinkedLibraries validates the provided library mapping against the libraries the artifact needs
// and returns the artifact's bytecode with every library placeholder replaced by its address.
//
// The mapping is validated in a fixed order, and the first failing check determines the returned error:
//  1. every key must match exactly one needed library (AmbiguousLibraryNameError, UnnecessaryLibraryLinkError)
//  2. no needed library may be provided under both its short and fully qualified name (OverlappingLibraryNamesError)
//  3. every needed library must resolve to an address (MissingLibraryAddressError)
//  4. every resolved address must be well-formed (InvalidLibraryAddressError)
//
// The artifact is never mutated and no partially linked bytecode is ever returned.
func ResolveBytecodeWithLinkedLibraries(artifact *types.Artifact, libraries Libraries) (string, error) {
	neededLibraries := GetNeededLibraries(artifact.LinkReferences)

	err := CheckAmbiguousLibraryNameOrUnnecessaryLink(artifact.ContractName, libraries, neededLibraries)
	if err != nil {
		return "", err
	}
	err = CheckOverlappingLibraryNames(libraries, neededLibraries)
	if err != nil {
		return "", err
	}
	err = CheckMissingLibraryAddresses(artifact.ContractName, libraries, neededLibraries)
	if err != nil {
		return "", err
	}

	links := make([]Link, 0, len(neededLibraries))
	for _, library := range neededLibraries {
		address, _ := lookupAddress(libraries, library)
		links = append(links, Link{
			SourceName:  library.SourceName,
			LibraryName: library.LibraryName,
			Address:     address,
		})
	}

	err = CheckInvalidLibraryAddresses(artifact.ContractName, libraries, links)
	if err != nil {
		return "", err
	}

	// Regions are only patchable if they are address-sized slots within the bytecode
	err = types.ValidateLinkReferences(artifact.Bytecode, artifact.LinkReferences)
	if err != nil {
		return "", err
	}

	return LinkBytecode(artifact, links), nil
}

// CheckAmbiguousLibraryNameOrUnnecessaryLink verifies every key in libraries matches exactly one needed library, either
// by short name or by fully qualified name. Keys are checked in sorted order.
func CheckAmbiguousLibraryNameOrUnnecessaryLink(contractName string, libraries Libraries, neededLibraries []NeededLibrary) error {
	linkedLibraryNames := maps.Keys(libraries)
	slices.Sort(linkedLibraryNames)
	for _, linkedLibraryName := range linkedLibraryNames {
		matchingLibraries := make([]string, 0)
		for _, library := range neededLibraries {
			if library.matches(linkedLibraryName) {
				matchingLibraries = append(matchingLibraries, library.FullyQualifiedName())
			}
		}

		if len(matchingLibraries) > 1 {
			return &AmbiguousLibraryNameError{
				ContractName:      contractName,
				LibraryName:       linkedLibraryName,
				MatchingLibraries: matchingLibraries,
			}
		} else if len(matchingLibraries) == 0 {
			return &UnnecessaryLibraryLinkError{
				ContractName: contractName,
				LibraryName:  linkedLibraryName,
			}
		}
	}
	return nil
}

// CheckOverlappingLibraryNames verifies no needed library was provided under both its fully qualified name and its
// short name.
func CheckOverlappingLibraryNames(libraries Libraries, neededLibraries []NeededLibrary) error {
	for _, library := range neededLibraries {
		_, hasFullyQualified := libraries[library.FullyQualifiedName()]
		_, hasShort := libraries[library.LibraryName]
		if hasFullyQualified && hasShort {
			return &OverlappingLibraryNamesError{
				SourceName:  library.SourceName,
				LibraryName: library.LibraryName,
			}
		}
	}
	return nil
}

// CheckMissingLibraryAddresses verifies every needed library resolves to an address by its fully qualified name or its
// short name. All missing libraries are reported together.
func CheckMissingLibraryAddresses(contractName string, libraries Libraries, neededLibraries []NeededLibrary) error {
	missingLibraries := make([]NeededLibrary, 0)
	for _, library := range neededLibraries {
		if _, ok := lookupAddress(libraries, library); !ok {
			missingLibraries = append(missingLibraries, library)
		}
	}

	if len(missingLibraries) > 0 {
		return &MissingLibraryAddressError{
			ContractName:     contractName,
			MissingLibraries: missingLibraries,
		}
	}
	return nil
}

// CheckInvalidLibraryAddresses re-resolves the address of every link from libraries and verifies it is present and
// well-formed. All offending links are reported together, with whatever address was found.
//
// An absent address is reported here as well as by CheckMissingLibraryAddresses. When run through
// ResolveBytecodeWithLinkedLibraries the missing check always fails first, so only present but malformed addresses
// (including empty strings) surface from this check.
func CheckInvalidLibraryAddresses(contractName string, libraries Libraries, links []Link) error {
	invalidLibraries := make([]Link, 0)
	for _, link := range links {
		address, ok := lookupAddress(libraries, NeededLibrary{SourceName: link.SourceName, LibraryName: link.LibraryName})
		if !ok || !IsValidLibraryAddress(address) {
			invalidLibraries = append(invalidLibraries, Link{
				SourceName:  link.SourceName,
				LibraryName: link.LibraryName,
				Address:     address,
			})
		}
	}

	if len(invalidLibraries) > 0 {
		return &InvalidLibraryAddressError{
			ContractName:     contractName,
			InvalidLibraries: invalidLibraries,
		}
	}
	return nil
}
