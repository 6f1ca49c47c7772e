package certs

import "encoding/pem"

// leafOnly drops the chain lego appends to a bundled certificate, ACM wants it separately.
func leafOnly(bundle []byte) []byte {
	block, _ := pem.Decode(bundle)
	if block == nil {
		return bundle
	}
	return pem.EncodeToMemory(block)
}
