package descriptor

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"

	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
)

// Fingerprint identifies the descriptor's content: base58 of the SHA-256 of
// its canonical JSON form. Map keys are sorted, so it is stable across
// loads and source formats.
func (d *InterfaceDescriptor) Fingerprint() (string, error) {
	data, err := format.JSON.Marshal(d)
	if err != nil {
		return "", errors.Wrap(err, "encode descriptor for fingerprint")
	}
	sum := sha256.Sum256(data)
	return base58.Encode(sum[:]), nil
}
