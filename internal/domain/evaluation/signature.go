package evaluation

import (
	"encoding/base64"
	"strings"
)

// DecodeSignature accepts a base64 signature image, optionally carrying a
// data-URL prefix, and returns the raw bytes. The only acceptance check
// is the decoded minimum length; the blob stays opaque beyond that.
func DecodeSignature(encoded string) ([]byte, error) {
	trimmed := strings.TrimSpace(encoded)
	if trimmed == "" {
		return nil, badRequest("signature is required")
	}

	if strings.HasPrefix(trimmed, "data:") {
		idx := strings.Index(trimmed, ";base64,")
		if idx < 0 {
			return nil, badRequest("signature data URL must be base64 encoded")
		}
		trimmed = trimmed[idx+len(";base64,"):]
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(trimmed)
	}
	if err != nil {
		return nil, badRequest("signature is not valid base64")
	}
	if len(decoded) < MinSignatureBytes {
		return nil, badRequest("signature must decode to at least %d bytes", MinSignatureBytes)
	}
	return decoded, nil
}
