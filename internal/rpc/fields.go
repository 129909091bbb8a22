package rpc

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"
)

// InvalidArgumentError reports a malformed request field.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

func field(req *structpb.Struct, name string) (*structpb.Value, bool) {
	if req == nil {
		return nil, false
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

// OptionalString returns nil when name is absent or null.
func OptionalString(req *structpb.Struct, name string) (*string, error) {
	v, ok := field(req, name)
	if !ok {
		return nil, nil
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return nil, invalid(name, "must be a string")
	}
	return &s.StringValue, nil
}

func String(req *structpb.Struct, name string) (string, error) {
	s, err := OptionalString(req, name)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", invalid(name, "is required")
	}
	return *s, nil
}

// OptionalNumber returns nil when name is absent or null.
func OptionalNumber(req *structpb.Struct, name string) (*float64, error) {
	v, ok := field(req, name)
	if !ok {
		return nil, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return nil, invalid(name, "must be a number")
	}
	return &n.NumberValue, nil
}

func Number(req *structpb.Struct, name string) (float64, error) {
	n, err := OptionalNumber(req, name)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, invalid(name, "is required")
	}
	return *n, nil
}

// OptionalInt returns fallback when name is absent.
func OptionalInt(req *structpb.Struct, name string, fallback int64) (int64, error) {
	n, err := OptionalNumber(req, name)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return fallback, nil
	}
	if *n != math.Trunc(*n) || math.Abs(*n) > 1<<53 {
		return 0, invalid(name, "must be an integer")
	}
	return int64(*n), nil
}

func Int(req *structpb.Struct, name string) (int64, error) {
	if _, ok := field(req, name); !ok {
		return 0, invalid(name, "is required")
	}
	return OptionalInt(req, name, 0)
}
