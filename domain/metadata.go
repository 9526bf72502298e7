package domain

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
	"golang.org/x/xerrors"
)

// Metadata is an opaque json document attached to listings, bids, offers, sales
// and activities. It is stored as a json string.
type Metadata json.RawMessage

// NewMetadata encodes v, nil v gives empty metadata
func NewMetadata(v interface{}) (Metadata, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, xerrors.Errorf("metadata encode: %w", ErrValidation)
	}
	return Metadata(b), nil
}

// Decode unmarshals the payload into v, empty metadata leaves v untouched
func (m Metadata) Decode(v interface{}) error {
	if m.IsEmpty() {
		return nil
	}
	if err := json.Unmarshal(m, v); err != nil {
		return xerrors.Errorf("metadata decode: %v: %w", err, ErrValidation)
	}
	return nil
}

func (m Metadata) IsEmpty() bool {
	return len(bytes.TrimSpace(m)) == 0 || bytes.Equal(bytes.TrimSpace(m), []byte("null"))
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if m.IsEmpty() {
		return []byte("null"), nil
	}
	return m, nil
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	if m == nil {
		return xerrors.New("domain.Metadata: UnmarshalJSON on nil pointer")
	}
	if !json.Valid(data) {
		return xerrors.Errorf("metadata: %w", ErrValidation)
	}
	*m = append((*m)[0:0], data...)
	return nil
}

func (m Metadata) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if m.IsEmpty() {
		return bsontype.Null, nil, nil
	}
	return bsontype.String, bsoncore.AppendString(nil, string(m)), nil
}

func (m *Metadata) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*m = nil
		return nil
	case bsontype.String:
		s, ok := bsoncore.Value{Type: t, Data: data}.StringValueOK()
		if !ok {
			return xerrors.New("metadata: malformed bson string")
		}
		*m = Metadata(s)
		return nil
	default:
		return xerrors.Errorf("metadata: unexpected bson type %v", t)
	}
}
