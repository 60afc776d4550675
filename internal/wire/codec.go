package wire

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content subtype of the JSON codec.
const CodecName = "json"

func init() { //nolint:gochecknoinits // gRPC codecs are registered globally on import.
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec marshals gRPC messages as JSON.
// Protobuf messages use the canonical protojson mapping, plain structs encoding/json.
type jsonCodec struct{}

// Marshal encodes v.
func (jsonCodec) Marshal(v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if m, ok := v.(proto.Message); ok {
		data, err = protojson.Marshal(m)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}

	return data, nil
}

// Unmarshal decodes data into v.
func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}

	var err error

	if m, ok := v.(proto.Message); ok {
		err = protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	} else {
		err = json.Unmarshal(data, v)
	}

	if err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}

	return nil
}

// Name returns the content subtype.
func (jsonCodec) Name() string {
	return CodecName
}
