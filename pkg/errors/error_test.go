package errors_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	. "codefix/pkg/errors"
)

func TestErrorCode_Message(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{Success, "Success"},
		{SessionNotFound, "Session not found"},
		{InvalidParams, "Invalid parameters"},
		{AINotConfigured, "AI API configuration is missing"},
		{ErrorCode(99999), "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.Message(); got != tt.want {
				t.Errorf("Message() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code       ErrorCode
		wantStatus int
	}{
		{Success, 200},
		{InvalidParams, 400},
		{ValidationFailed, 400},
		{LanguageNotSupported, 400},
		{NotFound, 404},
		{RouteNotFound, 404},
		{SessionNotFound, 404},
		{TooManyRequests, 429},
		{InternalServerError, 500},
		{AIRequestFailed, 500},
		{AINotConfigured, 503},
		{ExecutionQueueFull, 503},
	}

	for _, tt := range tests {
		t.Run(tt.code.Message(), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.wantStatus)
			}
		})
	}
}

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{AINotConfigured, "AI_NOT_CONFIGURED"},
		{ExecutionQueueFull, "EXECUTION_QUEUE_FULL"},
		{ValidationFailed, "VALIDATION_ERROR"},
		{SessionStoreFailed, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("String() = %v, want %v", got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	err := New(SessionNotFound)

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if err.Code != SessionNotFound {
		t.Errorf("Code = %v, want %v", err.Code, SessionNotFound)
	}
	if err.Error() != SessionNotFound.Message() {
		t.Errorf("Error() = %v, want %v", err.Error(), SessionNotFound.Message())
	}
}

func TestNewf(t *testing.T) {
	err := Newf(LanguageNotSupported, "Language %s is not supported yet", "ruby")

	want := "Language ruby is not supported yet"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrappedErr := Wrap(originalErr, CacheError)

	if wrappedErr.Code != CacheError {
		t.Errorf("Code = %v, want %v", wrappedErr.Code, CacheError)
	}
	if wrappedErr.Unwrap() != originalErr {
		t.Error("Unwrap() should return original error")
	}
	if Wrap(nil, CacheError) != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestError_WithMessage(t *testing.T) {
	customMsg := "custom error message"
	err := New(InternalServerError).WithMessage(customMsg)

	if err.Error() != customMsg {
		t.Errorf("Error() = %v, want %v", err.Error(), customMsg)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil error", err: nil, want: Success},
		{name: "custom error", err: New(SessionNotFound), want: SessionNotFound},
		{name: "wrapped custom error", err: fmt.Errorf("get: %w", New(ExecutionQueueFull)), want: ExecutionQueueFull},
		{name: "standard error", err: errors.New("standard error"), want: InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(SessionNotFound)

	if !Is(err, SessionNotFound) {
		t.Error("Is() should return true for matching code")
	}
	if Is(err, CacheError) {
		t.Error("Is() should return false for non-matching code")
	}
	if Is(nil, SessionNotFound) {
		t.Error("Is() should return false for nil error")
	}
}

func TestValidationErrors(t *testing.T) {
	err := ValidationErrors([]FieldError{
		{Field: "code", Message: "Code is required"},
		{Field: "language", Message: "Language is required"},
	})

	if err.Code != ValidationFailed {
		t.Fatalf("Code = %v, want %v", err.Code, ValidationFailed)
	}
	if err.Error() != "Validation failed" {
		t.Fatalf("Error() = %v", err.Error())
	}
	fields := err.Fields()
	if len(fields) != 2 || fields[1].Field != "language" {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	single := ValidationError("description", "Description is required")
	if got := single.Fields(); len(got) != 1 || got[0].Message != "Description is required" {
		t.Fatalf("unexpected fields: %+v", got)
	}
	if New(InvalidParams).Fields() != nil {
		t.Fatal("non-validation error should have no fields")
	}
}

func TestStackStartsAtCaller(t *testing.T) {
	err := New(CacheError)

	if !strings.Contains(err.Stack, "TestStackStartsAtCaller") {
		t.Fatalf("stack should name the caller: %s", err.Stack)
	}
	if strings.Contains(err.Stack, "errors.build") {
		t.Fatalf("stack should skip constructor frames: %s", err.Stack)
	}
}

func TestInternalErrorAndGetError(t *testing.T) {
	if got := InternalError(nil); got.Code != InternalServerError {
		t.Fatalf("Code = %v, want %v", got.Code, InternalServerError)
	}
	cause := errors.New("disk full")
	wrapped := GetError(fmt.Errorf("save: %w", cause))
	if wrapped.Code != InternalServerError || !errors.Is(wrapped, cause) {
		t.Fatalf("unexpected error: %+v", wrapped)
	}
	typed := Wrapf(cause, StorageError, "upload failed")
	if GetError(fmt.Errorf("outer: %w", typed)) != typed {
		t.Fatal("GetError should find the wrapped *Error")
	}
}
