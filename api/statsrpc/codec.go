package statsrpc

import "fmt"

// rawCodec moves pre-encoded message bytes through grpc untouched.
// Samples are already in protobuf wire form when they reach the
// transport, so marshalling again would only copy.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case *[]byte:
		return *b, nil
	}
	return nil, fmt.Errorf("statsrpc: raw codec cannot marshal %T", v)
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	out, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("statsrpc: raw codec cannot unmarshal into %T", v)
	}
	*out = data
	return nil
}

func (rawCodec) Name() string { return "raw" }
