package util

import "encoding/json"

// EncoderDecoder converts one row type to and from its stored byte form.
// The DAOs are parameterized on it so the wire codec can change without
// touching storage logic.
type EncoderDecoder[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (*T, error)
}

var _ EncoderDecoder[any] = jsonEncoderDecoder[any]{}

type jsonEncoderDecoder[T any] struct{}

func NewJsonEncoderDecoder[T any]() EncoderDecoder[T] {
	return jsonEncoderDecoder[T]{}
}

func (jsonEncoderDecoder[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (jsonEncoderDecoder[T]) Decode(data []byte) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
