package bridge

import (
	"encoding/json"
	"fmt"

	grpcEncoding "google.golang.org/grpc/encoding"
	_ "google.golang.org/grpc/encoding/proto" // ensure default proto codec is registered first
	"google.golang.org/protobuf/proto"
)

func init() {
	// Replace the default proto codec with a thin wrapper that JSON-encodes
	// bridge messages and delegates all other (protobuf) messages to
	// proto.Marshal, so no code generation is needed.
	grpcEncoding.RegisterCodec(codec{})
}

type codec struct{}

func (codec) Name() string { return "proto" }

func (codec) Marshal(v any) ([]byte, error) {
	if _, ok := v.(bridgeMsg); ok {
		return json.Marshal(v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("bridge codec: unsupported message type %T", v)
}

func (codec) Unmarshal(data []byte, v any) error {
	if _, ok := v.(bridgeMsg); ok {
		return json.Unmarshal(data, v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("bridge codec: unsupported message type %T", v)
}
