package apiclient_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-storefront-client/apiclient"
	"github.com/stretchr/testify/require"
)

func TestDefaultClassifier(t *testing.T) {
	envelope := &apiclient.Envelope{Message: "x"}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing token 401", &apiclient.ApplicationError{StatusCode: http.StatusUnauthorized, Message: "Refresh token is missing", Envelope: envelope}, "no_session"},
		{"missing token 400", &apiclient.ApplicationError{StatusCode: http.StatusBadRequest, Message: "No refresh token provided"}, "no_session"},
		{"token not provided", &apiclient.ApplicationError{StatusCode: http.StatusUnauthorized, Message: "Token not provided"}, "no_session"},
		{"invalid token 401", &apiclient.ApplicationError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token", Envelope: envelope}, "expired"},
		{"revoked 403", &apiclient.ApplicationError{StatusCode: http.StatusForbidden, Message: "Refresh token revoked", Envelope: envelope}, "expired"},
		{"401 without envelope", &apiclient.ApplicationError{StatusCode: http.StatusUnauthorized, Message: "Request failed with status code 401"}, "other"},
		{"other 400", &apiclient.ApplicationError{StatusCode: http.StatusBadRequest, Message: "Bad input", Envelope: envelope}, "other"},
		{"server error", &apiclient.ApplicationError{StatusCode: http.StatusInternalServerError, Message: "token store missing", Envelope: envelope}, "other"},
		{"transport", &apiclient.TransportError{Message: "connection refused"}, "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apiclient.DefaultClassifier(tt.err)
			var expired *apiclient.SessionExpiredError
			var noSession *apiclient.NoSessionError
			switch tt.want {
			case "expired":
				require.ErrorAs(t, got, &expired)
			case "no_session":
				require.ErrorAs(t, got, &noSession)
			default:
				require.Same(t, tt.err, got)
			}
			if tt.want != "other" {
				require.True(t, errors.Is(got, tt.err))
			}
		})
	}
}

func TestPublicEndpoints_Match(t *testing.T) {
	p := apiclient.DefaultPublicEndpoints
	tests := []struct {
		method, path string
		want         bool
	}{
		{http.MethodGet, "/product/", true},
		{http.MethodGet, "/product/abc", true},
		{http.MethodGet, "/category/", true},
		{http.MethodPost, "/product/", false},
		{http.MethodPatch, "/category/c1", false},
		{http.MethodPost, "/user/login_user", true},
		{http.MethodGet, "user/logout_user", true},
		{http.MethodPost, "/user/refresh_access_token", true},
		{http.MethodGet, "/cart/", false},
		{http.MethodGet, "/order", false},
		{http.MethodGet, "/admin/dashboard/top_products", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, p.Match(tt.method, tt.path), "%s %s", tt.method, tt.path)
	}
}

func TestMessage(t *testing.T) {
	require.Equal(t, "", apiclient.Message(nil))
	require.Equal(t, "Out of stock", apiclient.Message(&apiclient.ApplicationError{StatusCode: 409, Message: "Out of stock"}))
	require.Equal(t, "Request failed", apiclient.Message(&apiclient.ApplicationError{StatusCode: 500}))
	require.Equal(t, "dial tcp: refused", apiclient.Message(&apiclient.TransportError{Message: "dial tcp: refused"}))
	require.Equal(t, "Request failed", apiclient.Message(&apiclient.TransportError{}))
	require.Equal(t, "plain", apiclient.Message(errors.New("plain")))
}

func TestEnvelopeDecode(t *testing.T) {
	env := &apiclient.Envelope{Data: []byte("null")}
	out := map[string]int{"kept": 1}
	require.NoError(t, env.Decode(&out))
	require.Equal(t, 1, out["kept"])

	env = &apiclient.Envelope{Data: []byte(`{"n":`)}
	require.Error(t, env.Decode(&out))

	var nilEnv *apiclient.Envelope
	require.False(t, nilEnv.HasData())
}
