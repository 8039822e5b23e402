package linking

import (
	"slices"
	"strings"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/solink/compilation/types"
	"golang.org/x/exp/maps"
)

// Libraries maps a library name to the address it should be linked to. A name is either a short library name
// ("SafeMath") or a fully qualified one ("contracts/SafeMath.sol:SafeMath").
type Libraries map[string]string

// NeededLibrary describes a library a contract's bytecode must be linked against.
type NeededLibrary struct {
	SourceName  string
	LibraryName string
}

// FullyQualifiedName returns the "sourceName:libraryName" form of the library name.
func (n NeededLibrary) FullyQualifiedName() string {
	return types.FullyQualifiedName(n.SourceName, n.LibraryName)
}

// Link describes a needed library paired with the address it resolves to.
type Link struct {
	SourceName  string
	LibraryName string
	Address     string
}

// FullyQualifiedName returns the "sourceName:libraryName" form of the linked library name.
func (l Link) FullyQualifiedName() string {
	return types.FullyQualifiedName(l.SourceName, l.LibraryName)
}

// GetNeededLibraries returns one NeededLibrary per library name referenced from each source file, regardless of how
// many bytecode regions reference it. The result is ordered by source name, then library name.
func GetNeededLibraries(linkReferences types.LinkReferences) []NeededLibrary {
	neededLibraries := make([]NeededLibrary, 0)
	sourceNames := maps.Keys(linkReferences)
	slices.Sort(sourceNames)
	for _, sourceName := range sourceNames {
		libraryNames := maps.Keys(linkReferences[sourceName])
		slices.Sort(libraryNames)
		for _, libraryName := range libraryNames {
			neededLibraries = append(neededLibraries, NeededLibrary{
				SourceName:  sourceName,
				LibraryName: libraryName,
			})
		}
	}
	return neededLibraries
}

// matches indicates whether a library mapping key refers to the needed library, by short or fully qualified name.
func (n NeededLibrary) matches(key string) bool {
	return n.LibraryName == key || n.FullyQualifiedName() == key
}

// SelectLibrariesForLinkReferences returns the subset of libraries whose keys refer to at least one library needed by
// linkReferences. It allows a mapping built for a contract's init bytecode to be reused for its runtime bytecode, which
// may need fewer libraries. Keys matching several needed libraries are kept so that they are still reported as
// ambiguous.
func SelectLibrariesForLinkReferences(linkReferences types.LinkReferences, libraries Libraries) Libraries {
	neededLibraries := GetNeededLibraries(linkReferences)

	selected := make(Libraries)
	for key, address := range libraries {
		for _, library := range neededLibraries {
			if library.matches(key) {
				selected[key] = address
				break
			}
		}
	}
	return selected
}

// lookupAddress resolves the address for a needed library, trying its fully qualified name before its short name.
// Returns the address and a boolean indicating whether either key was present.
func lookupAddress(libraries Libraries, library NeededLibrary) (string, bool) {
	if address, ok := libraries[library.FullyQualifiedName()]; ok {
		return address, true
	}
	address, ok := libraries[library.LibraryName]
	return address, ok
}

// IsValidLibraryAddress indicates whether address is a "0x"-prefixed, 40 hex character address. Casing is not
// checked against the EIP-55 checksum.
func IsValidLibraryAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	return common.IsHexAddress(address)
}
