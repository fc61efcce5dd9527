package user

import "context"

type Repository interface {
	Create(ctx context.Context, username, name, email, passwordHash string, isAdmin bool) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	UsernameExists(ctx context.Context, username string, excludeID int) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	AdminExists(ctx context.Context) (bool, error)
	UpdateCredentials(ctx context.Context, id int, username, passwordHash string) (*User, error)
	List(ctx context.Context) ([]User, error)
}
