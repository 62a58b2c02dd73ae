// internal/reqctx/reqctx.go
package reqctx

import "context"

type key int

const (
	keyRequestID key = iota
	keyUser
)

// User — данные пользователя из access-токена.
type User struct {
	ID    string
	Email string
	Name  string
	Role  string
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, keyUser, u)
}

func GetUser(ctx context.Context) (User, bool) {
	v, ok := ctx.Value(keyUser).(User)
	return v, ok
}

func GetUserID(ctx context.Context) (string, bool) {
	u, ok := GetUser(ctx)
	if !ok || u.ID == "" {
		return "", false
	}
	return u.ID, true
}

func GetRole(ctx context.Context) (string, bool) {
	u, ok := GetUser(ctx)
	if !ok || u.Role == "" {
		return "", false
	}
	return u.Role, true
}
