package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Wrap(ErrCodeLoadFailed, cause, "read manifest")

	if err.Code != ErrCodeLoadFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeLoadFailed)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := err.Error(); got != "LOAD_FAILED: read manifest: unexpected end of JSON input" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"different code", New(ErrCodeInvalidInput, "test"), ErrCodeNotFound, false},
		{"wrapped in fmt", fmt.Errorf("outer: %w", New(ErrCodeTableNotFound, "x")), ErrCodeTableNotFound, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil error", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New(ErrCodeFileNotFound, "manifest.json not found"))
	if GetCode(err) != ErrCodeFileNotFound {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if UserMessage(err) != "manifest.json not found" {
		t.Errorf("UserMessage() = %q", UserMessage(err))
	}
	if UserMessage(errors.New("plain")) != "plain" {
		t.Error("UserMessage() should pass through plain errors")
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode() should be empty for plain errors")
	}
}

func TestClassOf(t *testing.T) {
	tests := []struct {
		err  error
		want Class
	}{
		{New(ErrCodeSessionNotFound, "x"), ClassNotFound},
		{fmt.Errorf("wrapped: %w", New(ErrCodeTableNotFound, "x")), ClassNotFound},
		{New(ErrCodeInvalidAction, "x"), ClassInvalid},
		{New(ErrCodeTimeout, "x"), ClassUnavailable},
		{New(ErrCodeUnsupported, "x"), ClassUnsupported},
		{New(ErrCodeLoadFailed, "x"), ClassInternal},
		{errors.New("plain"), ClassInternal},
	}
	for _, tt := range tests {
		if got := ClassOf(tt.err); got != tt.want {
			t.Errorf("ClassOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}

	if !IsNotFound(New(ErrCodeFileNotFound, "x")) || IsNotFound(New(ErrCodeInvalidInput, "x")) {
		t.Error("IsNotFound disagrees with ClassOf")
	}
	if !IsInvalid(New(ErrCodeInvalidPath, "x")) || IsInvalid(New(ErrCodeLoadFailed, "x")) {
		t.Error("IsInvalid disagrees with ClassOf")
	}
}

func TestValidateTableID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"model.shop.orders", false},
		{"source.shop.raw.users", false},
		{"", true},
		{"bad\x00id", true},
		{"bad\nid", true},
		{strings.Repeat("a", 513), true},
	}
	for _, tt := range tests {
		err := ValidateTableID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTableID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateTableID(%q) code = %v", tt.id, GetCode(err))
		}
	}
}

func TestValidateSearch(t *testing.T) {
	if err := ValidateSearch(""); err != nil {
		t.Errorf("empty search should be valid: %v", err)
	}
	if err := ValidateSearch("customer_id"); err != nil {
		t.Errorf("plain search should be valid: %v", err)
	}
	if err := ValidateSearch("a\x00b"); err == nil {
		t.Error("null byte should be rejected")
	}
	if err := ValidateSearch(strings.Repeat("x", 257)); err == nil {
		t.Error("oversized search should be rejected")
	}
}

func TestValidateTags(t *testing.T) {
	if err := ValidateTags([]string{"finance", "pii"}); err != nil {
		t.Errorf("ValidateTags() = %v", err)
	}
	if err := ValidateTags([]string{"finance", " "}); err == nil {
		t.Error("blank tag should be rejected")
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("target/manifest.json"); err != nil {
		t.Errorf("ValidatePath() = %v", err)
	}
	if err := ValidatePath(""); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("empty path code = %v", GetCode(err))
	}
	if err := ValidatePath("a\x01b"); err == nil {
		t.Error("control characters should be rejected")
	}
}

func TestValidateFormat(t *testing.T) {
	supported := []string{"json", "dot", "svg", "png"}
	if err := ValidateFormat("svg", supported); err != nil {
		t.Errorf("ValidateFormat(svg) = %v", err)
	}
	if err := ValidateFormat("pdf", supported); !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(pdf) code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
	}
}
