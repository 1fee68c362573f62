package errors

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestHasCodeWalksChain(t *testing.T) {
	inner := FileNotFoundError("a.json", os.ErrNotExist)
	outer := Wrap(inner, ErrCodeStorageFailure, "load failed")
	wrapped := fmt.Errorf("context: %w", outer)

	if !HasCode(wrapped, ErrCodeStorageFailure) {
		t.Error("expected STORAGE_FAILURE in chain")
	}
	if !HasCode(wrapped, ErrCodeFileNotFound) {
		t.Error("expected FILE_NOT_FOUND in chain")
	}
	if HasCode(wrapped, ErrCodeInvalidArgument) {
		t.Error("did not expect INVALID_ARGUMENT in chain")
	}
	if HasCode(nil, ErrCodeNotFound) {
		t.Error("nil error should carry no code")
	}
}

func TestCategorization(t *testing.T) {
	testCases := []struct {
		code     ErrorCode
		category ErrorCategory
		contract bool
	}{
		{ErrCodeInvalidArgument, CategoryValidation, true},
		{ErrCodeValidation, CategoryValidation, true},
		{ErrCodeInvalidState, CategoryState, true},
		{ErrCodeFileCorrupted, CategoryStorage, false},
		{ErrCodeFileNotFound, CategoryStorage, false},
		{ErrCodeNotFound, CategoryService, false},
		{ErrCodeAlreadyExists, CategoryService, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.code), func(t *testing.T) {
			err := NewAppError(tc.code, "msg")
			if err.Category != tc.category {
				t.Errorf("expected category %s, got %s", tc.category, err.Category)
			}
			if err.IsContractViolation() != tc.contract {
				t.Errorf("expected contract violation %v, got %v", tc.contract, err.IsContractViolation())
			}
		})
	}
}

func TestGetAppErrorConvertsPlainErrors(t *testing.T) {
	appErr := GetAppError(fmt.Errorf("boom"))
	if appErr.Code != ErrCodeInternalError {
		t.Errorf("expected INTERNAL_ERROR, got %s", appErr.Code)
	}
	if appErr.Cause == nil || appErr.Cause.Error() != "boom" {
		t.Errorf("expected cause to be preserved, got %v", appErr.Cause)
	}
}

func TestCLIFormatError(t *testing.T) {
	h := NewCLIErrorHandler(nil, true)
	msg := h.FormatError(InvalidArgumentError("title %q is empty", "").WithDetails("metadata"))
	if !strings.HasPrefix(msg, "WARNING: ") {
		t.Errorf("expected warning prefix, got %q", msg)
	}
	if !strings.Contains(msg, "metadata") {
		t.Errorf("verbose output should include details, got %q", msg)
	}
}
