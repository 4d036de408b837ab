package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFieldErrorThroughWrapping(t *testing.T) {
	err := NewFieldError(NotANumber, "values", 1, "All values must be numbers")
	wrapped := fmt.Errorf("submit: %w", err)

	if !IsValidationError(wrapped) {
		t.Fatalf("expected validation error, got %v", wrapped)
	}
	fe, ok := AsFieldError(wrapped)
	if !ok {
		t.Fatalf("expected FieldError in chain")
	}
	if fe.Kind != NotANumber || fe.Field != "values" || fe.Index != 1 {
		t.Errorf("unexpected field error %+v", fe)
	}
	if err.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %s", err.Code)
	}
}

func TestTypeHelpers(t *testing.T) {
	cases := []struct {
		err  error
		is   func(error) bool
		code string
	}{
		{NewNotFoundError("missing", nil), IsNotFoundError, "NOT_FOUND"},
		{NewNetworkError("down", errors.New("dial")), IsNetworkError, "NETWORK_ERROR"},
		{NewUnsupportedFormatError("gif"), IsUnsupportedFormat, "UNSUPPORTED_FORMAT"},
		{NewConflictError("busy", nil), IsConflictError, "CONFLICT"},
	}
	for _, tc := range cases {
		if !tc.is(tc.err) {
			t.Errorf("%v: helper returned false", tc.err)
		}
		var app *AppError
		if !errors.As(tc.err, &app) || app.Code != tc.code {
			t.Errorf("%v: code mismatch, want %s", tc.err, tc.code)
		}
	}
	if IsNotFoundError(errors.New("plain")) {
		t.Errorf("plain error must not be classified")
	}
}

func TestWrapErrorKeepsType(t *testing.T) {
	base := NewNetworkError("export failed", nil)
	err := WrapError(base, "csv", ErrorTypeError)
	if !IsNetworkError(err) {
		t.Fatalf("wrapped error lost its type: %v", err)
	}
	if WrapError(nil, "x", ErrorTypeError) != nil {
		t.Errorf("wrapping nil must return nil")
	}
	plain := WrapError(errors.New("boom"), "render", ErrorTypeError)
	if TypeOf(plain) != ErrorTypeError {
		t.Errorf("plain error should get the given type")
	}
}
