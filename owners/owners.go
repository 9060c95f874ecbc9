// Package owners talks to the backend's owner registry
// (/admin/propietarios/). Field names mirror the backend serializers.
package owners

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/condovista/condoctl/api"
)

const basePath = "/admin/propietarios/"

// User carries the account fields nested inside an owner record.
type User struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Unit identifies the owner's dwelling.
type Unit struct {
	Number   string `json:"numero,omitempty"`
	Building string `json:"edificio,omitempty"`
}

// Owner is a condominium owner record.
type Owner struct {
	ID    int    `json:"id,omitempty"`
	User  *User  `json:"user,omitempty"`
	Phone string `json:"telefono,omitempty"`
	Unit  *Unit  `json:"unidad,omitempty"`
}

// FullName joins the owner's first and last name for display.
func (o *Owner) FullName() string {
	if o.User == nil {
		return ""
	}
	switch {
	case o.User.FirstName == "":
		return o.User.LastName
	case o.User.LastName == "":
		return o.User.FirstName
	}
	return o.User.FirstName + " " + o.User.LastName
}

// Service provides CRUD operations on owner records.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[owners.NewService] api client is required")
	}
	return &Service{client: client}, nil
}

func (s *Service) List(ctx context.Context) ([]Owner, error) {
	var owners []Owner
	if err := s.client.Get(ctx, basePath, nil, &owners); err != nil {
		return nil, errors.Wrap(err, "[owners.List]")
	}
	return owners, nil
}

func (s *Service) Create(ctx context.Context, owner *Owner) (*Owner, error) {
	var created Owner
	if err := s.client.Post(ctx, basePath, owner, &created); err != nil {
		return nil, errors.Wrap(err, "[owners.Create]")
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id int, owner *Owner) (*Owner, error) {
	var updated Owner
	if err := s.client.Put(ctx, itemPath(id), owner, &updated); err != nil {
		return nil, errors.Wrap(err, "[owners.Update]")
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.client.Delete(ctx, itemPath(id)); err != nil {
		return errors.Wrap(err, "[owners.Delete]")
	}
	return nil
}

func itemPath(id int) string {
	return fmt.Sprintf("%s%d/", basePath, id)
}
