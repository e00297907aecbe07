package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-storefront-client/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		wantErr  string
	}{
		{"Sh0rt", "at least 8 characters"},
		{"alllowercase1", "uppercase"},
		{"ALLUPPERCASE1", "lowercase"},
		{"NoNumbersHere", "number"},
		{"Sup3rSecret", ""},
	}
	for _, tt := range tests {
		err := users.ValidatePasswordStrength(tt.password)
		if tt.wantErr == "" {
			require.NoError(t, err, tt.password)
			continue
		}
		require.ErrorContains(t, err, tt.wantErr, tt.password)
	}
}

func TestUser_UnmarshalAcceptsBackendID(t *testing.T) {
	var u users.User
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"u1","name":"Ana","role":"admin","passwordHash":"x"}`), &u))
	require.Equal(t, "u1", u.ID)
	require.True(t, u.IsAdmin())
	require.Empty(t, u.PasswordHash)

	var own users.User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u2","_id":"ignored"}`), &own))
	require.Equal(t, "u2", own.ID)
}

func TestUser_RolesAndClone(t *testing.T) {
	var anon *users.User
	require.True(t, anon.HasRole(users.RoleNone))
	require.False(t, anon.IsAdmin())
	require.Nil(t, anon.Clone())

	u := &users.User{ID: "u1", Role: users.RoleCustomer, Addresses: []users.Address{{ID: "a1"}, {ID: "a2", IsDefault: true}}}
	require.Equal(t, "a2", u.DefaultAddress().ID)

	c := u.Clone()
	c.Addresses[0].City = "Puebla"
	require.Empty(t, u.Addresses[0].City)
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("Sup3rSecret", hash))
	require.False(t, users.CheckPasswordHash("wrong", hash))
}
