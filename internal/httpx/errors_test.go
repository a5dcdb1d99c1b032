package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"leasesync/internal/dnstypes"
	"leasesync/internal/lock"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without internal err",
			err:  NewAppError(http.StatusBadRequest, CodeParamInvalid, "bad dry_run", nil),
			want: "code=2002, message=bad dry_run",
		},
		{
			name: "error with internal err",
			err:  NewAppError(http.StatusInternalServerError, CodeInternalError, "internal error", errors.New("db connection failed")),
			want: "code=5001, message=internal error, err=db connection failed",
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

func TestErrUnauthorized(t *testing.T) {
	err := ErrUnauthorized("")
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusUnauthorized, err.HTTPStatus)
	}
	if err.Code != CodeUnauthorized {
		t.Errorf("Expected code %d, got %d", CodeUnauthorized, err.Code)
	}
	if err.Message != "unauthorized" {
		t.Errorf("Expected message 'unauthorized', got '%s'", err.Message)
	}
}

func TestErrInternalError(t *testing.T) {
	internalErr := errors.New("database connection failed")
	err := ErrInternalError("internal error", internalErr)

	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusInternalServerError, err.HTTPStatus)
	}
	if err.Err != internalErr {
		t.Errorf("Expected internal error to be preserved")
	}
}

func TestFromSyncError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"locked", fmt.Errorf("run: %w", lock.ErrLocked), http.StatusConflict, CodeStateConflict},
		{"source down", dnstypes.NewError("unifi", dnstypes.KindSourceUnavailable, errors.New("refused")), http.StatusBadGateway, CodeSourceError},
		{"source protocol", dnstypes.NewError("unifi", dnstypes.KindSourceProtocol, errors.New("bad json")), http.StatusBadGateway, CodeSourceError},
		{"sink auth", dnstypes.NewError("pihole", dnstypes.KindSinkAuth, errors.New("401")), http.StatusBadGateway, CodeSinkAuthError},
		{"sink down", dnstypes.NewError("pihole", dnstypes.KindSinkUnavailable, errors.New("timeout")), http.StatusBadGateway, CodeSinkError},
		{"record failures", dnstypes.NewError("apply", dnstypes.KindRecordApply, errors.New("500")), http.StatusBadGateway, CodeRecordError},
		{"unclassified", errors.New("build plan: duplicate name"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromSyncError(tt.err)
			if appErr.HTTPStatus != tt.status || appErr.Code != tt.code {
				t.Errorf("FromSyncError() = %d/%d, want %d/%d", appErr.HTTPStatus, appErr.Code, tt.status, tt.code)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		min  int
		max  int
	}{
		{"CodeSuccess", CodeSuccess, 0, 0},
		{"CodeUnauthorized", CodeUnauthorized, 1000, 1099},
		{"CodeInvalidToken", CodeInvalidToken, 1000, 1099},
		{"CodeTokenExpired", CodeTokenExpired, 1000, 1099},
		{"CodeParamInvalid", CodeParamInvalid, 2000, 2099},
		{"CodeNotFound", CodeNotFound, 3000, 3999},
		{"CodeStateConflict", CodeStateConflict, 3000, 3999},
		{"CodeInternalError", CodeInternalError, 5000, 5999},
		{"CodeDatabaseError", CodeDatabaseError, 5000, 5999},
		{"CodeSourceError", CodeSourceError, 5000, 5999},
		{"CodeSinkError", CodeSinkError, 5000, 5999},
		{"CodeSinkAuthError", CodeSinkAuthError, 5000, 5999},
		{"CodeServiceMissing", CodeServiceMissing, 5000, 5999},
		{"CodeRecordError", CodeRecordError, 5000, 5999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code < tt.min || tt.code > tt.max {
				t.Errorf("%s = %d, expected to be in range [%d, %d]", tt.name, tt.code, tt.min, tt.max)
			}
		})
	}
}
