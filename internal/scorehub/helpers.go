package scorehub

import (
	"encoding/json"
	"errors"
)

type envelope map[string]any

var ErrNoValueForKey = errors.New("no value found for key")
var ErrValueNotAsserted = errors.New("value could not be asserted to specified type")

func checkAndAssertStringFromMap(src map[string]any, key string) (string, error) {
	data, ok := src[key]
	if !ok {
		return "", ErrNoValueForKey
	}
	value, ok := data.(string)
	if !ok {
		return "", ErrValueNotAsserted
	}

	return value, nil
}

func checkAndAssertInt64FromMap(src map[string]any, key string) (int64, error) {
	data, ok := src[key]
	if !ok {
		return 0, ErrNoValueForKey
	}
	value, ok := data.(float64)
	if !ok {
		return 0, ErrValueNotAsserted
	}

	return int64(value), nil
}

func checkAndAssertFloatFromMap(src map[string]any, key string) (float64, error) {
	data, ok := src[key]
	if !ok {
		return 0, ErrNoValueForKey
	}
	value, ok := data.(float64)
	if !ok {
		return 0, ErrValueNotAsserted
	}

	return value, nil
}

// optionalInt64FromMap treats a missing key as zero; a present key must
// still be numeric.
func optionalInt64FromMap(src map[string]any, key string) (int64, error) {
	if _, ok := src[key]; !ok {
		return 0, nil
	}
	return checkAndAssertInt64FromMap(src, key)
}

// optionalFloatFromMap returns nil for a missing or null value. A present
// non-numeric value is an error so a bad payload is dropped, never applied.
func optionalFloatFromMap(src map[string]any, key string) (*float64, error) {
	data, ok := src[key]
	if !ok || data == nil {
		return nil, nil
	}
	value, ok := data.(float64)
	if !ok {
		return nil, ErrValueNotAsserted
	}

	return &value, nil
}

func marshalEvent(event string, data envelope) []byte {
	msg, err := json.Marshal(envelope{"event": event, "data": data})
	if err != nil {
		return nil
	}
	return msg
}
