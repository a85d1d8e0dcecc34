package marshal

import "vxscripts/internal/rvdata"

// Codec adapts this package to the rvdata.Codec interface.
type Codec struct{}

func New() Codec { return Codec{} }

func (Codec) Decode(data []byte) (rvdata.Value, error) { return Decode(data) }

func (Codec) Encode(v rvdata.Value) ([]byte, error) { return Encode(v) }
