package models

// User is the wire representation of an account. Passwords are never
// serialized.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt Timestamp `json:"createdAt"`
}

// UserUpdateRequest is the body of the admin PUT /api/users/{id}.
type UserUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Name     *string `json:"name"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest is the body of POST /api/auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenPair carries an access token with its expiry plus the rotating
// refresh token.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	ExpiresAt    Timestamp `json:"expiresAt"`
	RefreshToken string    `json:"refreshToken"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}
