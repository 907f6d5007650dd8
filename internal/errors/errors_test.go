package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"timestamp", &InvalidTimestampFormatError{Expression: "Foo 1"}, KindInvalidTimestampFormat},
		{"keyword", &InvalidKeywordExpressionError{Expression: "a and b or c"}, KindInvalidKeywordExpression},
		{"destination", &DestinationWriteError{Path: "/x", Op: "create", Err: base}, KindDestinationWrite},
		{"extraction", &ExtractionError{Source: "a.tgz", Err: base}, KindExtraction},
		{"configuration", &ConfigurationError{ConfigPath: "c.yaml", Err: base}, KindConfiguration},
		{"wrapped extraction", fmt.Errorf("run: %w", &ExtractionError{Source: "a.tgz", Err: base}), KindExtraction},
		{"plain", base, KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	base := errors.New("permission denied")

	destErr := &DestinationWriteError{Path: "/out.txt", Op: "rename", Err: base}
	assert.Equal(t, "cannot write destination /out.txt (rename): permission denied", destErr.Error())
	assert.ErrorIs(t, destErr, base)

	extErr := &ExtractionError{Source: "logs.tgz", Member: "messages.0.gz", Err: base}
	assert.Contains(t, extErr.Error(), "member: messages.0.gz")
	assert.ErrorIs(t, extErr, base)

	tsErr := &InvalidTimestampFormatError{Expression: "Foo 1", Reason: "unrecognized shape"}
	assert.Equal(t, `invalid time expression "Foo 1": unrecognized shape`, tsErr.Error())
}

func TestGuidance(t *testing.T) {
	for _, kind := range []Kind{
		KindInvalidTimestampFormat,
		KindInvalidKeywordExpression,
		KindDestinationWrite,
		KindExtraction,
		KindConfiguration,
	} {
		assert.NotEmpty(t, Guidance(kind), kind)
	}
	assert.Empty(t, Guidance(KindUnexpected))
}
