package upstream

import (
	"context"
	"net/http"
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type authResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (User, Token, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "auth/login/", nil, nil, nil, in, &resp); err != nil {
		return User{}, Token{}, err
	}
	return resp.User, Token{Access: resp.Access, Refresh: resp.Refresh}, nil
}

type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (c *Client) Register(ctx context.Context, reg Registration) (User, Token, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "auth/register/", nil, nil, nil, reg, &resp); err != nil {
		return User{}, Token{}, err
	}
	return resp.User, Token{Access: resp.Access, Refresh: resp.Refresh}, nil
}

// RefreshToken trades a refresh token for a fresh access token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (string, error) {
	in := struct {
		Refresh string `json:"refresh"`
	}{Refresh: refresh}

	var resp struct {
		Access string `json:"access"`
	}
	if err := c.do(ctx, http.MethodPost, "auth/refresh/", nil, nil, nil, in, &resp); err != nil {
		return "", err
	}
	return resp.Access, nil
}
