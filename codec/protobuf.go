package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Protobuf stores any JSON-representable V as a binary structpb.Value.
// V goes through its JSON form first, so json tags apply and numbers are
// carried as doubles (integers above 2^53 lose precision).
// The zero value is ready to use.
type Protobuf[V any] struct{}

var _ Codec[any] = Protobuf[any]{}

func (Protobuf[V]) Encode(v V) ([]byte, error) {
	j, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	pv := &structpb.Value{}
	if err := protojson.Unmarshal(j, pv); err != nil {
		return nil, fmt.Errorf("protobuf codec: to struct value: %w", err)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(pv)
}

func (Protobuf[V]) Decode(b []byte) (V, error) {
	var v V
	pv := &structpb.Value{}
	if err := proto.Unmarshal(b, pv); err != nil {
		return v, err
	}
	if pv.GetKind() == nil {
		return v, fmt.Errorf("protobuf codec: empty value")
	}
	j, err := protojson.Marshal(pv)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(j, &v)
	return v, err
}
