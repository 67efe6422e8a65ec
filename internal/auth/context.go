package auth

import "context"

type userContextKey struct{}
type captainContextKey struct{}
type tokenContextKey struct{}

// ContextWithUser attaches the resolved rider account to the context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the resolved rider account from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	v, ok := ctx.Value(userContextKey{}).(*User)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// ContextWithCaptain attaches the resolved driver account to the context.
func ContextWithCaptain(ctx context.Context, captain *Captain) context.Context {
	return context.WithValue(ctx, captainContextKey{}, captain)
}

// CaptainFromContext extracts the resolved driver account from the context.
func CaptainFromContext(ctx context.Context) (*Captain, bool) {
	if ctx == nil {
		return nil, false
	}
	v, ok := ctx.Value(captainContextKey{}).(*Captain)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// ContextWithToken stores the raw bearer token inside the context so logout
// can revoke exactly the credential the request presented.
func ContextWithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the bearer token if it was previously attached.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
