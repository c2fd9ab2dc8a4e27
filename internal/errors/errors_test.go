package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "profile not found",
			},
			want: "profile not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInvalidAssertion,
				Message: "identity assertion rejected",
				Cause:   errors.New("token expired"),
			},
			want: "identity assertion rejected: token expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := InvalidAssertion(cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should reach the cause through %v", err)
	}
}

func TestConstructorsAndPredicates(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name      string
		err       error
		wantCode  ErrorCode
		predicate func(error) bool
	}{
		{"invalid assertion", InvalidAssertion(cause), ErrCodeInvalidAssertion, IsInvalidAssertion},
		{"profile lookup", ProfileLookup(cause), ErrCodeProfileLookup, IsProfileLookup},
		{"credential verification", CredentialVerification(cause), ErrCodeCredentialVerification, IsCredentialVerification},
		{"stale credential", StaleCredential("credential too old"), ErrCodeStaleCredential, IsStaleCredential},
		{"cookie write", CookieWrite(cause), ErrCodeCookieWrite, IsCookieWrite},
		{"not found", NotFound("profile not found"), ErrCodeNotFound, IsNotFound},
		{"conflict", Conflict("profile already exists"), ErrCodeConflict, IsConflict},
		{"validation", Validation("subject is required"), ErrCodeValidation, IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode() = %v, want %v", got, tt.wantCode)
			}
			if !tt.predicate(tt.err) {
				t.Errorf("predicate for %v returned false", tt.wantCode)
			}
			if IsNotFound(tt.err) != (tt.wantCode == ErrCodeNotFound) {
				t.Error("predicate matched a foreign code")
			}
		})
	}
}

func TestPredicates_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("establish session: %w", ProfileLookup(errors.New("db down")))
	if !IsProfileLookup(wrapped) {
		t.Error("predicate should see through plain wrapping")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "ignored") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	wrapped := Wrapf(errors.New("db down"), ErrCodeProfileLookup, "get profile %s", "user-1")
	if !IsProfileLookup(wrapped) {
		t.Errorf("Wrapf should carry the code, got %v", GetCode(wrapped))
	}
	if wrapped.Message != "get profile user-1" {
		t.Errorf("unexpected message %q", wrapped.Message)
	}
}

func TestGetCode_ForeignError(t *testing.T) {
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain error) = %v, want empty", got)
	}
}
