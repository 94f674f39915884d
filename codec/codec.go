// Package codec converts cached values to and from the bytes a provider stores.
//
// JSON is the default and the format other tools are expected to read: a
// structured text tree where numbers, strings, booleans, null and nested
// objects/arrays round-trip losslessly. Types outside that model (time.Time,
// []byte) come back in their JSON form.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
