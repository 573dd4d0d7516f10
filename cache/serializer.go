package cache

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects how a value is written; reads try every known encoding
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMsgpack
)

// Serializer converts values to and from stored bytes
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	Name() string
}

type JSONSerializer struct{}

func (JSONSerializer) Serialize(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONSerializer) Deserialize(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONSerializer) Name() string                         { return "json" }

// MsgpackSerializer is the compact binary encoding.
// Struct fields are keyed by their json tags so one model serves both formats.
type MsgpackSerializer struct{}

func (MsgpackSerializer) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackSerializer) Deserialize(data []byte, v any) error {
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (MsgpackSerializer) Name() string { return "msgpack" }

func serializerFor(enc Encoding) Serializer {
	if enc == EncodingMsgpack {
		return MsgpackSerializer{}
	}
	return JSONSerializer{}
}

// decoders are tried in order; the first success wins
var decoders = []Serializer{JSONSerializer{}, MsgpackSerializer{}}

func decode(data []byte, dst any) (string, error) {
	var firstErr error
	for _, d := range decoders {
		err := d.Deserialize(data, dst)
		if err == nil {
			return d.Name(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", ErrDeserialize.Wrap(firstErr)
}
