package utils

import "testing"

func TestCLIErrorBuilder(t *testing.T) {
	err := NewCLIError(ErrCodeFileNotFound, "file not found").
		WithHTTPStatus(404).
		WithDriveReason("notFound").
		WithRetryable(false).
		WithContext("fileId", "abc123").
		Build()

	if err.Code != ErrCodeFileNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeFileNotFound)
	}
	if err.HTTPStatus != 404 {
		t.Errorf("HTTPStatus = %d, want 404", err.HTTPStatus)
	}
	if err.DriveReason != "notFound" {
		t.Errorf("DriveReason = %q, want notFound", err.DriveReason)
	}
	if err.Context["fileId"] != "abc123" {
		t.Errorf("Context[fileId] = %v, want abc123", err.Context["fileId"])
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeAuthRequired, ExitAuthRequired},
		{ErrCodeFileNotFound, ExitFileNotFound},
		{ErrCodeInvalidPath, ExitInvalidPath},
		{ErrCodeAmbiguousPath, ExitAmbiguousPath},
		{ErrCodeMirrorPartialFailure, ExitMirrorPartialFailure},
		{ErrCodeRateLimited, ExitRateLimited},
		{ErrCodeCancelled, ExitCancelled},
		{"SOMETHING_ELSE", ExitUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetExitCode(tt.code); got != tt.want {
				t.Errorf("GetExitCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	appErr := NewAppError(NewCLIError(ErrCodeQuotaExceeded, "storage full").Build())
	want := "QUOTA_EXCEEDED: storage full"
	if appErr.Error() != want {
		t.Errorf("Error() = %q, want %q", appErr.Error(), want)
	}
}
