package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("sourceCode", "sourceCode is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "UnsupportedLanguage wraps ErrValidation",
			err:       UnsupportedLanguage("cobol"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Infrastructure wraps ErrInfrastructure",
			err:       Infrastructure("could not run program", errors.New("exec: not found")),
			target:    ErrInfrastructure,
			wantMatch: true,
		},
		{
			name:      "Infrastructure does NOT match ErrValidation",
			err:       Infrastructure("could not run program", errors.New("exec: not found")),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrInfrastructure",
			err:       ValidationFailed("language", "language is required"),
			target:    ErrInfrastructure,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("sourceCode", "sourceCode is required"),
			wantMessage: "sourceCode is required",
		},
		{
			name:        "UnsupportedLanguage names the language",
			err:         UnsupportedLanguage("cobol"),
			wantMessage: `unsupported language "cobol"`,
		},
		{
			name:        "Infrastructure keeps the human-readable message",
			err:         Infrastructure("could not allocate workspace", errors.New("disk full")),
			wantMessage: "could not allocate workspace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestInfrastructureKeepsCause(t *testing.T) {
	cause := errors.New("exec: \"javac\": executable file not found in $PATH")
	err := Infrastructure("could not start compiler", cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("language", "language is required")

	if err.Field != "language" {
		t.Errorf("Field = %q, want %q", err.Field, "language")
	}
}
