// Package chunkenc implements the per-chunk Base64 transform.
//
// Each chunk is encoded as an independent RFC 4648 block with its own
// padding. The concatenated output is therefore NOT a valid encoding of the
// whole image; receivers must decode chunk by chunk and concatenate the
// decoded bytes.
package chunkenc

import (
	"fmt"

	cristalbase64 "github.com/cristalhq/base64"
)

// EncodedLen returns the padded RFC 4648 output length for n input bytes.
func EncodedLen(n int) int {
	return (n + 2) / 3 * 4
}

// Encode writes the standard-alphabet, padded Base64 encoding of src into
// dst and returns the number of bytes written. dst must have capacity for
// EncodedLen(len(src)) bytes; a too-small dst is an error rather than a
// panic because the caller sizes dst once for the whole session.
func Encode(dst, src []byte) (int, error) {
	need := EncodedLen(len(src))
	if len(dst) < need {
		return 0, fmt.Errorf("chunkenc: dst holds %d bytes, need %d", len(dst), need)
	}
	cristalbase64.StdEncoding.Encode(dst, src)
	return need, nil
}
