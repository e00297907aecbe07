package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-storefront-client/apiclient"
	"github.com/jrsteele09/go-storefront-client/internal/errors"
	"github.com/jrsteele09/go-storefront-client/internal/utils"
	"github.com/jrsteele09/go-storefront-client/sessions"
	"github.com/jrsteele09/go-storefront-client/users"
	"github.com/rs/zerolog/log"
)

const (
	loginPath          = "/user/login_user"
	registerPath       = "/user/register_user"
	verifyPath         = "/user/verify_user"
	logoutPath         = "/user/logout_user"
	changePasswordPath = "/user/change_password"
	forgotPasswordPath = "/user/forgot_password"
	resetPasswordPath  = "/user/reset_password"
	profilePath        = "/user/user"
	updateProfilePath  = "/user/update_userProfile"
	addAddressPath     = "/user/add_address"
	updateAddressPath  = "/user/update_address/"
	deleteAddressPath  = "/user/delete_address/"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required"`
	Gender   users.Gender   `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Role     users.RoleType `json:"role,omitempty" validate:"omitempty,oneof=customer admin"`
}

type VerifyInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ProfileUpdate carries the fields to change; nil fields are left alone.
type ProfileUpdate struct {
	Name   *string       `json:"name,omitempty" validate:"omitempty,min=1"`
	Email  *string       `json:"email,omitempty" validate:"omitempty,email"`
	Gender *users.Gender `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
}

type AddressInput struct {
	HouseNumber string `json:"houseNumber" validate:"required"`
	Street      string `json:"street" validate:"required"`
	Colony      string `json:"colony,omitempty"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	Country     string `json:"country" validate:"required"`
	PostalCode  string `json:"postalCode" validate:"required"`
	IsDefault   bool   `json:"isDefault"`
}

// UserService covers authentication, profile and address book endpoints and
// keeps the session store in step with them.
type UserService struct {
	api     Requester
	session *sessions.Store
}

func NewUserService(api Requester, session *sessions.Store) (*UserService, error) {
	if api == nil {
		return nil, errors.New("[NewUserService] requester is required")
	}
	if session == nil {
		return nil, errors.New("[NewUserService] session store is required")
	}
	return &UserService{api: api, session: session}, nil
}

// Login authenticates and stores the returned identity.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*users.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	u, err := s.userCall(ctx, &apiclient.Request{Method: http.MethodPost, Path: loginPath, Body: in})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("login response carried no user")
	}
	s.session.SetCredentials(ctx, u)
	return u, nil
}

// Register creates an unverified account. The session is not touched until
// Verify succeeds.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*users.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := users.ValidatePasswordStrength(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrWeakPassword, err)
	}
	return s.userCall(ctx, &apiclient.Request{Method: http.MethodPost, Path: registerPath, Body: in})
}

// Verify confirms the e-mail one-time code and signs the user in.
func (s *UserService) Verify(ctx context.Context, in VerifyInput) (*users.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	u, err := s.userCall(ctx, &apiclient.Request{Method: http.MethodPost, Path: verifyPath, Body: in})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("verify response carried no user")
	}
	s.session.SetCredentials(ctx, u)
	return u, nil
}

// Logout tells the backend to drop the session cookies and clears the local
// session whatever the backend answers. The backend error, if any, is
// returned for reporting.
func (s *UserService) Logout(ctx context.Context) error {
	_, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: logoutPath})
	if err != nil {
		log.Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
	}
	s.session.Logout(ctx)
	return err
}

// RefreshAccessToken asks for a new access cookie outside the automatic
// refresh path and updates the stored identity.
func (s *UserService) RefreshAccessToken(ctx context.Context) (*users.User, error) {
	u, err := s.userCall(ctx, &apiclient.Request{Method: http.MethodPost, Path: apiclient.DefaultRefreshPath})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("refresh response carried no user")
	}
	s.session.UpdateUser(ctx, u)
	return u, nil
}

func (s *UserService) GetProfile(ctx context.Context) (*users.User, error) {
	u, err := s.userCall(ctx, &apiclient.Request{Method: http.MethodGet, Path: profilePath})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: profile", errors.ErrUserNotFound)
	}
	return u, nil
}

// UpdateProfile applies in and stores the identity the backend confirms.
func (s *UserService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*users.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Name == nil && in.Email == nil && in.Gender == nil {
		return nil, fmt.Errorf("%w: nothing to update", errors.ErrInvalidInput)
	}
	u, err := s.userCall(ctx, &apiclient.Request{Method: http.MethodPost, Path: updateProfilePath, Body: in})
	if err != nil {
		return nil, err
	}
	if u == nil {
		// Older backends answer with a message only; apply the change locally.
		current := s.session.User()
		if current == nil {
			return nil, nil
		}
		if in.Name != nil {
			current.Name = utils.Value(in.Name)
		}
		if in.Email != nil {
			current.Email = utils.Value(in.Email)
		}
		if in.Gender != nil {
			current.Gender = utils.Value(in.Gender)
		}
		u = current
	}
	s.session.SetCredentials(ctx, u)
	return u, nil
}

func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := users.ValidatePasswordStrength(in.NewPassword); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrWeakPassword, err)
	}
	_, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: changePasswordPath, Body: in})
	return err
}

func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	in := struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: email}
	if err := validateInput(in); err != nil {
		return err
	}
	_, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: forgotPasswordPath, Body: in})
	return err
}

func (s *UserService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := users.ValidatePasswordStrength(in.NewPassword); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrWeakPassword, err)
	}
	_, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: resetPasswordPath, Body: in})
	return err
}

func (s *UserService) AddAddress(ctx context.Context, in AddressInput) (*users.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.addressCall(ctx, &apiclient.Request{Method: http.MethodPost, Path: addAddressPath, Body: in})
}

func (s *UserService) UpdateAddress(ctx context.Context, id string, in AddressInput) (*users.User, error) {
	if err := requireID(id, "address id"); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.addressCall(ctx, &apiclient.Request{Method: http.MethodPatch, Path: idPath(updateAddressPath, id), Body: in})
}

func (s *UserService) DeleteAddress(ctx context.Context, id string) (*users.User, error) {
	if err := requireID(id, "address id"); err != nil {
		return nil, err
	}
	return s.addressCall(ctx, &apiclient.Request{Method: http.MethodDelete, Path: idPath(deleteAddressPath, id)})
}

// addressCall refreshes the stored identity when the backend returns the
// updated user.
func (s *UserService) addressCall(ctx context.Context, req *apiclient.Request) (*users.User, error) {
	u, err := s.userCall(ctx, req)
	if err != nil {
		return nil, err
	}
	if u != nil && s.session.IsAuthenticated() {
		s.session.UpdateUser(ctx, u)
	}
	return u, nil
}

func (s *UserService) userCall(ctx context.Context, req *apiclient.Request) (*users.User, error) {
	env, err := s.api.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeUser(env)
}

// decodeUser accepts both {"user": {...}} and a bare user document.
func decodeUser(env *apiclient.Envelope) (*users.User, error) {
	var wrapped struct {
		User *users.User `json:"user"`
	}
	if err := env.Decode(&wrapped); err != nil {
		return nil, err
	}
	if wrapped.User != nil {
		return wrapped.User, nil
	}
	var u users.User
	if err := env.Decode(&u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, nil
	}
	return &u, nil
}
