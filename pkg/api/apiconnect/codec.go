package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec names registered for the Connect protocol's JSON content types.
const (
	codecNameJSON            = "json"
	codecNameJSONCharsetUTF8 = "json; charset=utf-8"
)

// jsonCodec encodes plain Go messages with encoding/json. It takes over the
// "json" content types from connect's protobuf-only JSON codec.
type jsonCodec struct {
	name string
}

var _ connect.Codec = jsonCodec{}

func (c jsonCodec) Name() string {
	return c.name
}

func (c jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (c jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func handlerCodecs() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(jsonCodec{name: codecNameJSON}),
		connect.WithCodec(jsonCodec{name: codecNameJSONCharsetUTF8}),
	}
}

func clientCodec() connect.ClientOption {
	return connect.WithCodec(jsonCodec{name: codecNameJSON})
}
