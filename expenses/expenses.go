// Package expenses talks to the backend's expense billing endpoints
// (/admin/expensas/).
package expenses

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"

	"github.com/condovista/condoctl/api"
	"github.com/condovista/condoctl/owners"
)

const basePath = "/admin/expensas/"

// Expense is one billing period for one owner. Dates travel as the backend
// formats them (YYYY-MM-DD); amounts stay strings, the backend serializes
// decimals that way.
type Expense struct {
	ID             int           `json:"id,omitempty"`
	OwnerID        int           `json:"propietario_id,omitempty"`
	Owner          *owners.Owner `json:"propietario,omitempty"`
	ReferenceMonth string        `json:"mes_referencia,omitempty"` // YYYY-MM
	TotalAmount    string        `json:"monto_total,omitempty"`
	IssueDate      string        `json:"fecha_emision,omitempty"`
	DueDate        string        `json:"fecha_vencimiento,omitempty"`
	Paid           bool          `json:"pagada"`
	PaymentDate    *string       `json:"fecha_pago"`
}

// ListParams narrows and orders the expense listing server-side.
type ListParams struct {
	Search   string
	Ordering string // e.g. "-fecha_emision", "monto_total"
}

func (p ListParams) values() url.Values {
	values := url.Values{}
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	if p.Ordering != "" {
		values.Set("ordering", p.Ordering)
	}
	return values
}

// Service provides CRUD operations on expense records.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[expenses.NewService] api client is required")
	}
	return &Service{client: client}, nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Expense, error) {
	var expenses []Expense
	if err := s.client.Get(ctx, basePath, params.values(), &expenses); err != nil {
		return nil, errors.Wrap(err, "[expenses.List]")
	}
	return expenses, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Expense, error) {
	var expense Expense
	if err := s.client.Get(ctx, itemPath(id), nil, &expense); err != nil {
		return nil, errors.Wrap(err, "[expenses.Get]")
	}
	return &expense, nil
}

func (s *Service) Create(ctx context.Context, expense *Expense) (*Expense, error) {
	var created Expense
	if err := s.client.Post(ctx, basePath, expense, &created); err != nil {
		return nil, errors.Wrap(err, "[expenses.Create]")
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id int, expense *Expense) (*Expense, error) {
	var updated Expense
	if err := s.client.Put(ctx, itemPath(id), expense, &updated); err != nil {
		return nil, errors.Wrap(err, "[expenses.Update]")
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.client.Delete(ctx, itemPath(id)); err != nil {
		return errors.Wrap(err, "[expenses.Delete]")
	}
	return nil
}

// SetPaid flips the paid flag, stamping the payment date when marking paid
// and clearing it when reverting to pending.
func (s *Service) SetPaid(ctx context.Context, id int, paid bool, paymentDate string) (*Expense, error) {
	body := map[string]any{"pagada": paid}
	if paid {
		body["fecha_pago"] = paymentDate
	} else {
		body["fecha_pago"] = nil
	}

	var updated Expense
	if err := s.client.Put(ctx, itemPath(id), body, &updated); err != nil {
		return nil, errors.Wrap(err, "[expenses.SetPaid]")
	}
	return &updated, nil
}

func itemPath(id int) string {
	return fmt.Sprintf("%s%d/", basePath, id)
}
