package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-storefront-client/internal/errors"
	"github.com/jrsteele09/go-storefront-client/internal/utils"
	"github.com/jrsteele09/go-storefront-client/services"
	"github.com/jrsteele09/go-storefront-client/sessions"
	"github.com/jrsteele09/go-storefront-client/users"
	"github.com/stretchr/testify/require"
)

var ada = map[string]any{"_id": "u1", "name": "Ada", "email": "ada@example.com", "role": "customer"}

func TestUserService_LoginStoresCredentials(t *testing.T) {
	svc, rec, storage := newServices(t, map[string]reply{
		"POST /user/login_user": {message: "Login successful", data: map[string]any{"user": ada}},
	})
	ctx := context.Background()

	u, err := svc.Users.Login(ctx, services.LoginInput{Email: "ada@example.com", Password: "Secret123"})
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)

	require.JSONEq(t, `{"email":"ada@example.com","password":"Secret123"}`, rec.last(t).Body)
	require.True(t, svc.Session().IsAuthenticated())
	require.Equal(t, users.RoleCustomer, svc.Session().Role())

	_, ok, err := storage.Get(ctx, sessions.StateKey)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUserService_LoginValidatesBeforeCalling(t *testing.T) {
	svc, rec, _ := newServices(t, nil)

	_, err := svc.Users.Login(context.Background(), services.LoginInput{Email: "not-an-email", Password: "x"})
	require.ErrorIs(t, err, errors.ErrInvalidInput)
	require.Zero(t, rec.count())
}

func TestUserService_LoginFailureKeepsSessionAnonymous(t *testing.T) {
	svc, _, _ := newServices(t, map[string]reply{
		"POST /user/login_user": {status: http.StatusUnauthorized, message: "Invalid email or password"},
	})

	_, err := svc.Users.Login(context.Background(), services.LoginInput{Email: "ada@example.com", Password: "wrong"})
	require.EqualError(t, err, "Invalid email or password")
	require.False(t, svc.Session().IsAuthenticated())
}

func TestUserService_RegisterChecksPasswordStrength(t *testing.T) {
	svc, rec, _ := newServices(t, map[string]reply{
		"POST /user/register_user": {status: http.StatusCreated, message: "Registered", data: map[string]any{"user": ada}},
	})
	ctx := context.Background()

	_, err := svc.Users.Register(ctx, services.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "weak"})
	require.ErrorIs(t, err, errors.ErrWeakPassword)
	require.Zero(t, rec.count())

	u, err := svc.Users.Register(ctx, services.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "Str0ngPass", Gender: users.GenderFemale})
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.False(t, svc.Session().IsAuthenticated())
}

func TestUserService_VerifySignsIn(t *testing.T) {
	svc, _, _ := newServices(t, map[string]reply{
		"POST /user/verify_user": {message: "Verified", data: map[string]any{"user": ada}},
	})

	_, err := svc.Users.Verify(context.Background(), services.VerifyInput{Email: "ada@example.com", OTP: "123456"})
	require.NoError(t, err)
	require.True(t, svc.Session().IsAuthenticated())
}

func TestUserService_LogoutClearsSessionEvenWhenBackendFails(t *testing.T) {
	svc, rec, storage := newServices(t, map[string]reply{
		"POST /user/login_user": {data: map[string]any{"user": ada}},
		"GET /user/logout_user": {status: http.StatusInternalServerError, message: "Logout failed"},
	})
	ctx := context.Background()
	_, err := svc.Users.Login(ctx, services.LoginInput{Email: "ada@example.com", Password: "Secret123"})
	require.NoError(t, err)

	err = svc.Users.Logout(ctx)
	require.EqualError(t, err, "Logout failed")
	require.Equal(t, "/user/logout_user", rec.last(t).Path)
	require.False(t, svc.Session().IsAuthenticated())
	require.Zero(t, storage.Len())
}

func TestUserService_GetProfileAcceptsBothShapes(t *testing.T) {
	svc, _, _ := newServices(t, map[string]reply{
		"GET /user/user": {data: ada},
	})
	u, err := svc.Users.GetProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Ada", u.Name)

	svc, _, _ = newServices(t, map[string]reply{
		"GET /user/user": {data: map[string]any{"user": ada}},
	})
	u, err = svc.Users.GetProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
}

func TestUserService_UpdateProfileStoresServerCopy(t *testing.T) {
	confirmed := map[string]any{"_id": "u1", "name": "Ada L.", "email": "ada@example.com", "role": "customer"}
	svc, rec, _ := newServices(t, map[string]reply{
		"POST /user/login_user":         {data: map[string]any{"user": ada}},
		"POST /user/update_userProfile": {data: confirmed},
	})
	ctx := context.Background()
	_, err := svc.Users.Login(ctx, services.LoginInput{Email: "ada@example.com", Password: "Secret123"})
	require.NoError(t, err)

	_, err = svc.Users.UpdateProfile(ctx, services.ProfileUpdate{})
	require.ErrorIs(t, err, errors.ErrInvalidInput)

	u, err := svc.Users.UpdateProfile(ctx, services.ProfileUpdate{Name: utils.Ptr("Ada L.")})
	require.NoError(t, err)
	require.Equal(t, "Ada L.", u.Name)
	require.JSONEq(t, `{"name":"Ada L."}`, rec.last(t).Body)
	require.Equal(t, "Ada L.", svc.Session().User().Name)
}

func TestUserService_PasswordFlows(t *testing.T) {
	svc, rec, _ := newServices(t, map[string]reply{
		"POST /user/change_password": {message: "Password changed"},
		"POST /user/forgot_password": {message: "OTP sent"},
		"POST /user/reset_password":  {message: "Password reset"},
	})
	ctx := context.Background()

	require.ErrorIs(t, svc.Users.ChangePassword(ctx, services.ChangePasswordInput{OldPassword: "Old1pass", NewPassword: "short"}), errors.ErrWeakPassword)
	require.NoError(t, svc.Users.ChangePassword(ctx, services.ChangePasswordInput{OldPassword: "Old1pass", NewPassword: "N3wPassword"}))
	require.JSONEq(t, `{"oldPassword":"Old1pass","newPassword":"N3wPassword"}`, rec.last(t).Body)

	require.ErrorIs(t, svc.Users.ForgotPassword(ctx, ""), errors.ErrInvalidInput)
	require.NoError(t, svc.Users.ForgotPassword(ctx, "ada@example.com"))

	require.NoError(t, svc.Users.ResetPassword(ctx, services.ResetPasswordInput{Email: "ada@example.com", OTP: "999999", NewPassword: "Fresh1Pass"}))
	require.Equal(t, "/user/reset_password", rec.last(t).Path)
}

func TestUserService_AddressBook(t *testing.T) {
	withAddress := map[string]any{
		"_id": "u1", "name": "Ada", "role": "customer",
		"addresses": []map[string]any{{"_id": "a1", "houseNumber": "12", "street": "Main", "city": "Leeds", "state": "WY", "country": "UK", "postalCode": "LS1", "isDefault": true}},
	}
	svc, rec, _ := newServices(t, map[string]reply{
		"POST /user/login_user":          {data: map[string]any{"user": ada}},
		"POST /user/add_address":         {data: map[string]any{"user": withAddress}},
		"PATCH /user/update_address/a1":  {data: map[string]any{"user": withAddress}},
		"DELETE /user/delete_address/a1": {data: map[string]any{"user": ada}},
	})
	ctx := context.Background()
	_, err := svc.Users.Login(ctx, services.LoginInput{Email: "ada@example.com", Password: "Secret123"})
	require.NoError(t, err)

	_, err = svc.Users.AddAddress(ctx, services.AddressInput{Street: "Main"})
	require.ErrorIs(t, err, errors.ErrInvalidInput)

	in := services.AddressInput{HouseNumber: "12", Street: "Main", City: "Leeds", State: "WY", Country: "UK", PostalCode: "LS1", IsDefault: true}
	u, err := svc.Users.AddAddress(ctx, in)
	require.NoError(t, err)
	require.Len(t, u.Addresses, 1)
	require.Equal(t, "a1", svc.Session().User().DefaultAddress().ID)

	_, err = svc.Users.UpdateAddress(ctx, "a1", in)
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, rec.last(t).Method)

	_, err = svc.Users.DeleteAddress(ctx, "")
	require.ErrorIs(t, err, errors.ErrInvalidInput)

	u, err = svc.Users.DeleteAddress(ctx, "a1")
	require.NoError(t, err)
	require.Empty(t, u.Addresses)
	require.Nil(t, svc.Session().User().DefaultAddress())
}
