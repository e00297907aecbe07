package backendtest

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront-client/users"
)

// currentUser loads the account behind the access cookie, answering 401
// itself when it is gone.
func (b *Backend) currentUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	claims := claimsFrom(r)
	if claims == nil {
		writeEnvelope(w, http.StatusUnauthorized, "Unauthorized request", nil)
		return nil, false
	}
	u, err := b.users.GetByID(claims.UserID)
	if err != nil {
		writeEnvelope(w, http.StatusUnauthorized, "Unauthorized request", nil)
		return nil, false
	}
	return u, true
}

func (b *Backend) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.currentUser(w, r)
		if !ok {
			return
		}
		writeEnvelope(w, http.StatusOK, "User fetched", u)
	}
}

func (b *Backend) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.currentUser(w, r)
		if !ok {
			return
		}
		var in struct {
			Name   *string       `json:"name"`
			Email  *string       `json:"email"`
			Gender *users.Gender `json:"gender"`
		}
		if err := decodeBody(r, &in); err != nil {
			writeEnvelope(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		if in.Name != nil {
			u.Name = *in.Name
		}
		if in.Email != nil && *in.Email != u.Email {
			_ = b.users.Delete(u.Email)
			u.Email = *in.Email
		}
		if in.Gender != nil {
			u.Gender = *in.Gender
		}
		if err := b.users.Upsert(u); err != nil {
			writeEnvelope(w, http.StatusInternalServerError, "Could not store user", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Profile updated", u)
	}
}

func (b *Backend) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.currentUser(w, r)
		if !ok {
			return
		}
		var in struct {
			OldPassword string `json:"oldPassword"`
			NewPassword string `json:"newPassword"`
		}
		if err := decodeBody(r, &in); err != nil {
			writeEnvelope(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		if !users.CheckPasswordHash(in.OldPassword, u.PasswordHash) {
			writeEnvelope(w, http.StatusBadRequest, "Old password is incorrect", nil)
			return
		}
		if !b.setPassword(w, u, in.NewPassword) {
			return
		}
		writeEnvelope(w, http.StatusOK, "Password changed", nil)
	}
}

func (b *Backend) AddAddressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.currentUser(w, r)
		if !ok {
			return
		}
		var addr users.Address
		if err := decodeBody(r, &addr); err != nil {
			writeEnvelope(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		addr.ID = uuid.New().String()
		if len(u.Addresses) == 0 {
			addr.IsDefault = true
		}
		u.Addresses = append(u.Addresses, addr)
		b.saveAddresses(w, u, addr.ID, "Address added")
	}
}

func (b *Backend) UpdateAddressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.currentUser(w, r)
		if !ok {
			return
		}
		id := r.PathValue("id")
		var addr users.Address
		if err := decodeBody(r, &addr); err != nil {
			writeEnvelope(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		for i := range u.Addresses {
			if u.Addresses[i].ID == id {
				addr.ID = id
				u.Addresses[i] = addr
				b.saveAddresses(w, u, id, "Address updated")
				return
			}
		}
		writeEnvelope(w, http.StatusNotFound, "Address not found", nil)
	}
}

func (b *Backend) DeleteAddressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.currentUser(w, r)
		if !ok {
			return
		}
		id := r.PathValue("id")
		kept := u.Addresses[:0]
		for _, a := range u.Addresses {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(u.Addresses) {
			writeEnvelope(w, http.StatusNotFound, "Address not found", nil)
			return
		}
		u.Addresses = kept
		b.saveAddresses(w, u, "", "Address deleted")
	}
}

// saveAddresses keeps exactly one default address when defaultID names one.
func (b *Backend) saveAddresses(w http.ResponseWriter, u *users.User, defaultID, message string) {
	if defaultID != "" {
		var isDefault bool
		for _, a := range u.Addresses {
			if a.ID == defaultID {
				isDefault = a.IsDefault
			}
		}
		if isDefault {
			for i := range u.Addresses {
				u.Addresses[i].IsDefault = u.Addresses[i].ID == defaultID
			}
		}
	}
	if err := b.users.Upsert(u); err != nil {
		writeEnvelope(w, http.StatusInternalServerError, "Could not store user", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, message, map[string]any{"user": u})
}
