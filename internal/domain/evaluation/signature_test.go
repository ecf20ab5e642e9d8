package evaluation

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestDecodeSignaturePlainBase64(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB}, 20)
	decoded, err := DecodeSignature(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Fatal("decoded bytes differ from input")
	}
}

func TestDecodeSignatureDataURL(t *testing.T) {
	raw := bytes.Repeat([]byte{0x01, 0x02}, 16)
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	decoded, err := DecodeSignature(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Fatal("decoded bytes differ from input")
	}
}

func TestDecodeSignatureTooShort(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("short"))
	_, err := DecodeSignature(encoded)
	assertWorkflowError(t, err, "bad_request")
}

func TestDecodeSignatureInvalid(t *testing.T) {
	for _, input := range []string{"", "%%%not base64%%%", "data:image/png;url,abcd"} {
		_, err := DecodeSignature(input)
		assertWorkflowError(t, err, "bad_request")
	}
}

func TestDecodeSignatureRawBase64(t *testing.T) {
	raw := bytes.Repeat([]byte{0x7F}, 17)
	unpadded := strings.TrimRight(base64.StdEncoding.EncodeToString(raw), "=")
	decoded, err := DecodeSignature(unpadded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Fatal("decoded bytes differ from input")
	}
}

func assertWorkflowError(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var wErr *Error
	if !errors.As(err, &wErr) {
		t.Fatalf("expected *evaluation.Error, got %T: %v", err, err)
	}
	if wErr.Code != code {
		t.Fatalf("expected code %q, got %q (%v)", code, wErr.Code, err)
	}
}
