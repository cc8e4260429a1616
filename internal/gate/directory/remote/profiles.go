package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/socialfin/authgate/internal/gate/directory"
)

type profileWire struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) CreateProfile(ctx context.Context, p directory.Profile) error {
	body := profileWire{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
	return c.do(ctx, http.MethodPost, "/v1/admin/profiles", body, nil)
}

func (c *Client) GetProfile(ctx context.Context, id string) (directory.Profile, error) {
	var out profileWire
	if err := c.do(ctx, http.MethodGet, "/v1/admin/profiles/"+url.PathEscape(id), nil, &out); err != nil {
		return directory.Profile{}, err
	}
	return directory.Profile{
		ID:        out.ID,
		Email:     out.Email,
		FirstName: out.FirstName,
		LastName:  out.LastName,
		Phone:     out.Phone,
		CreatedAt: out.CreatedAt,
		UpdatedAt: out.UpdatedAt,
	}, nil
}
