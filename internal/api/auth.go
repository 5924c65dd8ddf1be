package api

import "context"

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User *User `json:"user"`
}

// Register creates an account and returns the signed-in user. The session
// cookie lands in the client's jar.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var out authResponse
	if err := c.post(ctx, c.endpoint("auth", "register"), req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login authenticates and returns the signed-in user.
func (c *Client) Login(ctx context.Context, creds Credentials) (*User, error) {
	var out authResponse
	if err := c.post(ctx, c.endpoint("auth", "login"), creds, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, c.endpoint("auth", "logout"), nil, nil)
}

// Session returns the user for the ambient session cookie. A rejection here
// means "no session", which callers treat as signed-out rather than failure.
func (c *Client) Session(ctx context.Context) (*User, error) {
	var out authResponse
	if err := c.get(ctx, c.endpoint("auth", "session"), &out); err != nil {
		return nil, err
	}
	return out.User, nil
}
