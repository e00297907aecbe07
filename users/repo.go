package users

// UserRepo is the account storage used by the scripted test backend.
type UserRepo interface {
	Upsert(user *User) error
	Delete(email string) error
	GetByEmail(email string) (*User, error)
	GetByID(ID string) (*User, error)
	SetVerified(email string, verified bool) error
}
