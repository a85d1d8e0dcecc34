package rvdata

// Codec translates between the engine's serialized byte form and the Value
// graph. The pipelines treat it as an opaque collaborator; internal/marshal
// supplies the default implementation.
type Codec interface {
	Decode(data []byte) (Value, error)
	Encode(v Value) ([]byte, error)
}
