package forest

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io"
)

// Codec serializes and deserializes a packed Forest. gob is the fast,
// Go-native wire format used to move a forest between training and
// prediction processes on the same architecture; JSON trades size and
// speed for interoperability with front ends outside this module, in the
// layout spec.md §6 names (Pred/Num/Bump/TreeOrigin/FacOff/FacBits).
type Codec int

const (
	// GobCodec is the default: encoding/gob round-trips the Forest struct
	// directly, bit-exact, with no intermediate representation.
	GobCodec Codec = iota
	// JSONCodec emits the wire layout spec.md §6 describes.
	JSONCodec
)

// Encode writes f to w using c's wire format.
func Encode(w io.Writer, f *Forest, c Codec) error {
	switch c {
	case JSONCodec:
		return json.NewEncoder(w).Encode(f)
	default:
		return gob.NewEncoder(w).Encode(f)
	}
}

// Decode reads a Forest from r using c's wire format.
func Decode(r io.Reader, c Codec) (*Forest, error) {
	f := &Forest{}
	var err error
	switch c {
	case JSONCodec:
		err = json.NewDecoder(r).Decode(f)
	default:
		err = gob.NewDecoder(r).Decode(f)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Marshal encodes f as a byte slice using c's wire format, for callers
// (trainqueue's Redis backend, dataset's cache writers) that need a
// []byte rather than a stream.
func Marshal(f *Forest, c Codec) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a Forest from data using c's wire format.
func Unmarshal(data []byte, c Codec) (*Forest, error) {
	return Decode(bytes.NewReader(data), c)
}
