package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Binder decodes a Table into a Go struct and validates the result.
//
// Binder uses two-stage processing:
//  1. Decode: converts the Table's plain values to typed fields using mapstructure
//  2. Validate: checks field values against validation rules
//
// Struct fields use `config` tags for field mapping and `validate` tags for
// validation rules. Input is weakly typed, so string values from environment
// variables and flags decode into ints, bools and durations.
//
// Example struct:
//
//	type ServerConfig struct {
//	    Addr    string        `config:"addr" validate:"required,hostname_port"`
//	    Timeout time.Duration `config:"timeout"`
//	}
type Binder struct {
	validator *validator.Validate
}

// BindError represents an error that occurred during the bind or validate stage.
//
// BindError wraps the underlying error and indicates which stage failed, so
// callers can tell decode errors (invalid data types) from validation errors
// (invalid data values).
type BindError struct {
	// Stage indicates which phase failed: "decode" or "validate"
	Stage string

	// Err is the underlying error from mapstructure or validator
	Err error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As.
func (e *BindError) Unwrap() error {
	return e.Err
}

// NewBinder creates a new Binder with default decode hooks and validators.
func NewBinder() *Binder {
	return &Binder{
		validator: validator.New(),
	}
}

// Bind decodes source into target, which must be a pointer to a struct, and
// validates it. The target may be partially populated if decode succeeds but
// validation fails.
//
// Returns a BindError if:
//   - Decode fails: type mismatch, invalid format
//   - Validate fails: value violates validation rules
func (b *Binder) Bind(source Table, target any) error {
	if err := b.Decode(source, target); err != nil {
		return err
	}

	return b.Validate(target)
}

// Decode runs the decode stage alone, leaving fields absent from source
// untouched.
func (b *Binder) Decode(source Table, target any) error {
	if err := b.decode(source, target); err != nil {
		return &BindError{
			Stage: "decode",
			Err:   err,
		}
	}
	return nil
}

// Validate runs the validation stage alone, for structs completed after
// decoding (for example once defaults were merged in).
func (b *Binder) Validate(target any) error {
	if err := b.validator.Struct(target); err != nil {
		return &BindError{
			Stage: "validate",
			Err:   err,
		}
	}
	return nil
}

func (b *Binder) decode(source Table, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		TagName: "config",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(source.Map())
}
