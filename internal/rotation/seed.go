package rotation

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

const (
	tagBase     byte = 'b'
	tagUser     byte = 'u'
	tagResource byte = 'r'
	tagSection  byte = 's'
)

// DeriveSeed hashes the seed components into one 64-bit seed. Empty user and
// resource identifiers are omitted. Each component is written as a tag byte and
// a length prefix, so no two distinct tuples produce the same hash input.
func DeriveSeed(baseSeed, userSourcedID, resourceSourcedID, sectionID string) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 64)

	buf = appendComponent(buf, tagBase, baseSeed)
	if userSourcedID != "" {
		buf = appendComponent(buf, tagUser, userSourcedID)
	}
	if resourceSourcedID != "" {
		buf = appendComponent(buf, tagResource, resourceSourcedID)
	}
	buf = appendComponent(buf, tagSection, sectionID)

	_, _ = d.Write(buf)
	return d.Sum64()
}

func appendComponent(buf []byte, tag byte, value string) []byte {
	buf = append(buf, tag)
	buf = binary.AppendUvarint(buf, uint64(len(value)))
	return append(buf, value...)
}
