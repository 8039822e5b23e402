package linking

import (
	"strings"

	"github.com/crytic/solink/compilation/types"
)

// LinkBytecode returns the artifact's bytecode with every link reference region of each provided link overwritten by
// the link's address. Addresses are inserted as supplied, without case normalization.
//
// Links must have been validated: every link must name a library present in the artifact's link references and carry a
// "0x"-prefixed address, and every region must lie within the bytecode. Regions are replaced one after another over the
// progressively updated string; as addresses are exactly as long as the regions they fill, offsets never shift.
func LinkBytecode(artifact *types.Artifact, links []Link) string {
	bytecode := artifact.Bytecode

	for _, link := range links {
		addressHex := link.Address[2:]
		for _, ref := range artifact.LinkReferences[link.SourceName][link.LibraryName] {
			start := 2 + ref.Start*2
			end := 2 + (ref.Start+ref.Length)*2

			var sb strings.Builder
			sb.Grow(len(bytecode) - (end - start) + len(addressHex))
			sb.WriteString(bytecode[:start])
			sb.WriteString(addressHex)
			sb.WriteString(bytecode[end:])
			bytecode = sb.String()
		}
	}

	return bytecode
}
