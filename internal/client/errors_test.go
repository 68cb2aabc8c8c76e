package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// Сервер присылает 400 в трёх форматах — все должны разобраться.
func TestParseBadRequest_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantDetail string
		wantFields map[string][]string
	}{
		{
			name:       "detail_array",
			body:       `{"detail": ["first", "second"]}`,
			wantDetail: "first; second",
		},
		{
			name:       "detail_string",
			body:       `{"detail": "single message"}`,
			wantDetail: "single message",
		},
		{
			name:       "per_field_keys",
			body:       `{"phone_number": ["invalid phone"], "password": ["too weak"]}`,
			wantFields: map[string][]string{"phone_number": {"invalid phone"}, "password": {"too weak"}},
		},
		{
			name:       "per_field_string_value",
			body:       `{"phone_number": "invalid phone"}`,
			wantFields: map[string][]string{"phone_number": {"invalid phone"}},
		},
		{
			name:       "non_field_errors",
			body:       `{"non_field_errors": ["otp mismatch"]}`,
			wantDetail: "otp mismatch",
		},
		{
			name:       "bare_array",
			body:       `["plain message"]`,
			wantDetail: "plain message",
		},
		{
			name:       "garbage_body",
			body:       `oops`,
			wantDetail: "oops",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := parseBadRequest([]byte(tc.body))
			require.ErrorIs(t, got, ErrRequestValidation)
			require.Equal(t, tc.wantDetail, got.Detail)
			require.Equal(t, tc.wantFields, got.Fields)
		})
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	e := &Error{Sentinel: ErrUnavailable, Status: 502, Detail: "bad gateway", cause: cause}

	require.ErrorIs(t, e, ErrUnavailable)
	require.ErrorIs(t, e, cause)
	require.Contains(t, e.Error(), "502")
	require.Contains(t, e.Error(), "bad gateway")

	fe := fieldError("phone_number", errors.New("invalid phone number"))
	require.ErrorIs(t, fe, ErrFieldValidation)
	require.Contains(t, fe.Error(), "phone_number")
}
