package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

// canonicalJSON keeps map keys sorted so two payloads with identical content
// always serialize to identical bytes.
var canonicalJSON = sonic.Config{SortMapKeys: true}.Froze()

// PayloadHash computes the content hash used by the change detector. Hashing
// the decoded tree rather than the raw response ignores formatting noise
// (whitespace, field order) in the transport.
func PayloadHash(payload Payload) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := canonicalJSON.NewEncoder(buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode payload for hashing: %w", err)
	}

	sum := sha256.Sum256(buf.B)
	return hex.EncodeToString(sum[:]), nil
}
