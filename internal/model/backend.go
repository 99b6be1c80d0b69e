package model

import "context"

// AuthResult is the shape every account operation resolves to.
type AuthResult struct {
	User    UserProfile
	Session Session
}

// Backend is the full operation set both the local and the remote
// implementations provide. The façade depends on nothing else.
type Backend interface {
	SignUp(ctx context.Context, email, password string, profile NewProfile) (AuthResult, error)
	SignIn(ctx context.Context, email, password string) (AuthResult, error)
	SignOut(ctx context.Context) error
	// CurrentUser returns nil without error when no session is active.
	CurrentUser(ctx context.Context) (*UserProfile, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (AuthResult, error)
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) error
	SignUpWithPhone(ctx context.Context, phone, code string, profile NewProfile) (AuthResult, error)
	SignInWithPhone(ctx context.Context, phone, code string) (AuthResult, error)
	// OnAuthStateChange registers fn to be invoked with the current user
	// (nil after sign-out) whenever the session changes. The returned
	// function removes the registration.
	OnAuthStateChange(fn func(user *UserProfile)) (unsubscribe func(), err error)
}
