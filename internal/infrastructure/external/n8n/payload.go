package n8n

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// docxMagic is the ZIP local-file-header signature every DOCX starts with.
const docxMagic = "PK\x03\x04"

// normalizeDocument decodes a workflow document field into raw bytes. The
// upstream does not fix the encoding, so four shapes are accepted:
//
//	"..."                 latin1-encoded string
//	{"raw": "..."}        latin1-encoded string, wrapped
//	{"binary": [...]}     byte array (plain or Buffer-style {"data": [...]})
//	{"data": "..."}       base64-encoded string
//
// Returns (nil, nil) for an absent or null field. Anything else is an error.
func normalizeDocument(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("failed to decode document string: %w", err)
		}
		return decodeLatin1(s)
	}

	if trimmed[0] != '{' {
		return nil, fmt.Errorf("unrecognized document payload shape")
	}

	var env struct {
		Raw    json.RawMessage `json:"raw"`
		Binary json.RawMessage `json:"binary"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode document envelope: %w", err)
	}

	switch {
	case isPresent(env.Raw):
		var s string
		if err := json.Unmarshal(env.Raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode raw field: %w", err)
		}
		return decodeLatin1(s)

	case isPresent(env.Binary):
		return decodeByteArray(env.Binary)

	case isPresent(env.Data):
		var s string
		if err := json.Unmarshal(env.Data, &s); err != nil {
			return nil, fmt.Errorf("failed to decode data field: %w", err)
		}
		out, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 data: %w", err)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unrecognized document payload shape")
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeLatin1 maps each code point back to the byte it was decoded from.
// Code points above 0xFF mean the string was not latin1 to begin with.
func decodeLatin1(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, fmt.Errorf("code point %U outside latin1 range", r)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// decodeByteArray handles both a plain number array and the Buffer-style
// {"type": "Buffer", "data": [...]} object some workflow nodes emit.
func decodeByteArray(raw json.RawMessage) ([]byte, error) {
	var nums []int
	if err := json.Unmarshal(raw, &nums); err != nil {
		var nested struct {
			Data []int `json:"data"`
		}
		if err2 := json.Unmarshal(raw, &nested); err2 != nil || nested.Data == nil {
			return nil, fmt.Errorf("binary field is neither a byte array nor a buffer object")
		}
		nums = nested.Data
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("binary value %d at index %d out of byte range", n, i)
		}
		out[i] = byte(n)
	}
	return out, nil
}

// hasDOCXSignature reports whether the bytes start with the DOCX magic number.
func hasDOCXSignature(b []byte) bool {
	return bytes.HasPrefix(b, []byte(docxMagic))
}
