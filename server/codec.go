package server

import (
	"encoding/json"
	"fmt"
)

// jsonCodec is a plain encoding/json connect codec. The wire types in
// dto.go are hand-written structs rather than generated protobuf, so
// the default proto codecs don't apply; registering this codec under
// the "json" name lets Connect clients speak ordinary HTTP/JSON.
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("server: unmarshal request: %w", err)
	}
	return nil
}
