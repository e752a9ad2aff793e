package user

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/linkedin/goavro/v2"
)

// Format names a payload encoding.
type Format string

const (
	FormatAvro Format = "avro"
	FormatJSON Format = "json"
)

// AvroSchema is the record schema published on the topic.
const AvroSchema = `{
	"type": "record",
	"name": "User",
	"namespace": "com.sachin.kafka",
	"fields": [
		{"name": "name", "type": "string"},
		{"name": "age", "type": "int"}
	]
}`

// confluentMagicByte prefixes payloads framed in the Confluent wire format.
const confluentMagicByte byte = 0

// Encoder serializes a User into a message value.
type Encoder interface {
	Encode(u User) ([]byte, error)
	ContentType() string
}

// NewEncoder returns the encoder for format. schemaID is only used by avro;
// when > 0 payloads carry the Confluent wire format header.
func NewEncoder(format Format, schemaID int) (Encoder, error) {
	switch format {
	case "", FormatAvro:
		return NewAvroEncoder(schemaID)
	case FormatJSON:
		return JSONEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// AvroEncoder encodes users as Avro binary.
type AvroEncoder struct {
	codec    *goavro.Codec
	schemaID int
}

func NewAvroEncoder(schemaID int) (*AvroEncoder, error) {
	if schemaID < 0 {
		return nil, fmt.Errorf("invalid schema id: %d", schemaID)
	}
	codec, err := goavro.NewCodec(AvroSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile avro schema: %w", err)
	}
	return &AvroEncoder{codec: codec, schemaID: schemaID}, nil
}

func (e *AvroEncoder) Encode(u User) ([]byte, error) {
	var buf []byte
	if e.schemaID > 0 {
		buf = make([]byte, 5, 5+len(u.Name)+8)
		buf[0] = confluentMagicByte
		binary.BigEndian.PutUint32(buf[1:], uint32(e.schemaID))
	}

	out, err := e.codec.BinaryFromNative(buf, map[string]any{
		"name": u.Name,
		"age":  u.Age,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode user as avro: %w", err)
	}
	return out, nil
}

// decode reverses Encode.
func (e *AvroEncoder) decode(b []byte) (User, error) {
	if e.schemaID > 0 {
		if len(b) < 5 || b[0] != confluentMagicByte {
			return User{}, fmt.Errorf("missing confluent wire format header")
		}
		if id := binary.BigEndian.Uint32(b[1:5]); id != uint32(e.schemaID) {
			return User{}, fmt.Errorf("unexpected schema id %d", id)
		}
		b = b[5:]
	}

	native, _, err := e.codec.NativeFromBinary(b)
	if err != nil {
		return User{}, fmt.Errorf("failed to decode avro user: %w", err)
	}
	m, ok := native.(map[string]any)
	if !ok {
		return User{}, fmt.Errorf("unexpected avro native type %T", native)
	}
	name, _ := m["name"].(string)
	age, _ := m["age"].(int32)
	return User{Name: name, Age: age}, nil
}

func (e *AvroEncoder) ContentType() string {
	return "application/avro"
}

// JSONEncoder encodes users as JSON objects.
type JSONEncoder struct{}

func (JSONEncoder) Encode(u User) ([]byte, error) {
	return json.Marshal(u)
}

func (JSONEncoder) ContentType() string {
	return "application/json"
}
