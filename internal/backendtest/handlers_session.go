package backendtest

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-storefront-client/internal/errors"
	"github.com/jrsteele09/go-storefront-client/users"
)

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "decode body: %v", err)
	}
	return nil
}

// issueSession sets fresh access and refresh cookies for u.
func (b *Backend) issueSession(w http.ResponseWriter, u *users.User) error {
	access, err := b.tokens.CreateAccessToken(u, b.accessGeneration.Load())
	if err != nil {
		return err
	}
	refresh, err := b.tokens.CreateRefreshToken(u.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(b.accessTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refresh,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(b.refreshTTL.Seconds()),
	})
	return nil
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
}

func (b *Backend) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &in); err != nil {
			writeEnvelope(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		u, err := b.users.GetByEmail(in.Email)
		if err != nil || !users.CheckPasswordHash(in.Password, u.PasswordHash) {
			writeEnvelope(w, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		if !u.IsVerified {
			writeEnvelope(w, http.StatusForbidden, "Please verify your email first", nil)
			return
		}
		if err := b.issueSession(w, u); err != nil {
			writeEnvelope(w, http.StatusInternalServerError, "Could not start session", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Login successful", map[string]any{"user": u})
	}
}

func (b *Backend) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name     string         `json:"name"`
			Email    string         `json:"email"`
			Password string         `json:"password"`
			Gender   users.Gender   `json:"gender"`
			Role     users.RoleType `json:"role"`
		}
		if err := decodeBody(r, &in); err != nil || in.Email == "" || in.Name == "" {
			writeEnvelope(w, http.StatusBadRequest, "Name, email and password are required", nil)
			return
		}
		if _, err := b.users.GetByEmail(in.Email); err == nil {
			writeEnvelope(w, http.StatusConflict, "User already exists", nil)
			return
		}
		if err := users.ValidatePasswordStrength(in.Password); err != nil {
			writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		hash, err := users.HashPassword(in.Password)
		if err != nil {
			writeEnvelope(w, http.StatusInternalServerError, "Could not hash password", nil)
			return
		}
		role := in.Role
		if role == "" {
			role = users.RoleCustomer
		}
		u := &users.User{Name: in.Name, Email: in.Email, Gender: in.Gender, Role: role, PasswordHash: hash, CreatedAt: NowTimeFunc()}
		if err := b.users.Upsert(u); err != nil {
			writeEnvelope(w, http.StatusInternalServerError, "Could not store user", nil)
			return
		}
		writeEnvelope(w, http.StatusCreated, "Verification code sent", map[string]any{"user": u})
	}
}

func (b *Backend) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email string `json:"email"`
			OTP   string `json:"otp"`
		}
		if err := decodeBody(r, &in); err != nil {
			writeEnvelope(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		if in.OTP != VerificationOTP {
			writeEnvelope(w, http.StatusBadRequest, "Invalid OTP", nil)
			return
		}
		if err := b.users.SetVerified(in.Email, true); err != nil {
			writeEnvelope(w, http.StatusNotFound, "User not found", nil)
			return
		}
		u, _ := b.users.GetByEmail(in.Email)
		if err := b.issueSession(w, u); err != nil {
			writeEnvelope(w, http.StatusInternalServerError, "Could not start session", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Email verified", map[string]any{"user": u})
	}
}

func (b *Backend) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(RefreshCookie); err == nil {
			b.tokens.DeleteRefreshToken(cookie.Value)
		}
		clearSessionCookies(w)
		writeEnvelope(w, http.StatusOK, "Logged out", nil)
	}
}

// RefreshHandler rotates the refresh cookie and issues a new access cookie.
func (b *Backend) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)

		b.mu.Lock()
		hold := b.refreshHold
		b.mu.Unlock()
		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		b.mu.Lock()
		fail := b.refreshFail
		b.mu.Unlock()
		if fail != nil {
			writeEnvelope(w, fail.status, fail.message, nil)
			return
		}

		cookie, err := r.Cookie(RefreshCookie)
		if err != nil || cookie.Value == "" {
			writeEnvelope(w, http.StatusUnauthorized, "Refresh token is missing", nil)
			return
		}
		userID, err := b.tokens.LookupRefreshToken(cookie.Value)
		if err != nil {
			clearSessionCookies(w)
			writeEnvelope(w, http.StatusUnauthorized, "Invalid refresh token", nil)
			return
		}
		u, err := b.users.GetByID(userID)
		if err != nil {
			clearSessionCookies(w)
			writeEnvelope(w, http.StatusUnauthorized, "Invalid refresh token", nil)
			return
		}
		if err := b.issueSession(w, u); err != nil {
			writeEnvelope(w, http.StatusInternalServerError, "Could not refresh session", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Access token refreshed", map[string]any{"user": u})
	}
}

func (b *Backend) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "If the account exists a reset code was sent", nil)
	}
}

func (b *Backend) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email       string `json:"email"`
			OTP         string `json:"otp"`
			NewPassword string `json:"newPassword"`
		}
		if err := decodeBody(r, &in); err != nil || in.OTP != VerificationOTP {
			writeEnvelope(w, http.StatusBadRequest, "Invalid OTP", nil)
			return
		}
		u, err := b.users.GetByEmail(in.Email)
		if err != nil {
			writeEnvelope(w, http.StatusNotFound, "User not found", nil)
			return
		}
		if !b.setPassword(w, u, in.NewPassword) {
			return
		}
		writeEnvelope(w, http.StatusOK, "Password reset", nil)
	}
}

func (b *Backend) setPassword(w http.ResponseWriter, u *users.User, password string) bool {
	if err := users.ValidatePasswordStrength(password); err != nil {
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return false
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, "Could not hash password", nil)
		return false
	}
	u.PasswordHash = hash
	if err := b.users.Upsert(u); err != nil {
		writeEnvelope(w, http.StatusInternalServerError, "Could not store user", nil)
		return false
	}
	return true
}
