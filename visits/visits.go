// Package visits talks to the backend's visitor log (/admin/visitas/).
package visits

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/condovista/condoctl/api"
)

const basePath = "/admin/visitas/"

// Visit statuses as the backend defines them.
const (
	StatusScheduled = "programada"
	StatusActive    = "en_curso"
	StatusFinished  = "finalizada"
	StatusCancelled = "cancelada"
)

// Visit is one scheduled visitor entry. AccessCode and QRCode are generated
// by the backend and are never part of a create or update payload.
type Visit struct {
	ID           int    `json:"id,omitempty"`
	VisitorName  string `json:"nombre_visitante"`
	DocumentID   string `json:"documento_identidad,omitempty"`
	Phone        string `json:"telefono,omitempty"`
	VisitDate    string `json:"fecha_visita"` // YYYY-MM-DD
	StartTime    string `json:"hora_inicio"`  // HH:MM:SS
	EndTime      string `json:"hora_fin"`     // HH:MM:SS
	VehiclePlate string `json:"placa_vehiculo,omitempty"`
	Status       string `json:"estado,omitempty"`
	OwnerID      int    `json:"propietario,omitempty"`
	AccessCode   string `json:"codigo_acceso,omitempty"`
	QRCode       string `json:"qr_code,omitempty"`
}

// writePayload is the outbound shape: everything the caller controls, and
// nothing the backend generates.
type writePayload struct {
	VisitorName  string `json:"nombre_visitante"`
	DocumentID   string `json:"documento_identidad"`
	Phone        string `json:"telefono"`
	VisitDate    string `json:"fecha_visita"`
	StartTime    string `json:"hora_inicio"`
	EndTime      string `json:"hora_fin"`
	VehiclePlate string `json:"placa_vehiculo"`
	Status       string `json:"estado,omitempty"`
	OwnerID      int    `json:"propietario"`
}

func toWritePayload(v *Visit) writePayload {
	return writePayload{
		VisitorName:  v.VisitorName,
		DocumentID:   v.DocumentID,
		Phone:        v.Phone,
		VisitDate:    v.VisitDate,
		StartTime:    v.StartTime,
		EndTime:      v.EndTime,
		VehiclePlate: v.VehiclePlate,
		Status:       v.Status,
		OwnerID:      v.OwnerID,
	}
}

// Service provides CRUD operations on visitor entries.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[visits.NewService] api client is required")
	}
	return &Service{client: client}, nil
}

func (s *Service) List(ctx context.Context) ([]Visit, error) {
	var visits []Visit
	if err := s.client.Get(ctx, basePath, nil, &visits); err != nil {
		return nil, errors.Wrap(err, "[visits.List]")
	}
	return visits, nil
}

func (s *Service) Create(ctx context.Context, visit *Visit) (*Visit, error) {
	var created Visit
	if err := s.client.Post(ctx, basePath, toWritePayload(visit), &created); err != nil {
		return nil, errors.Wrap(err, "[visits.Create]")
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id int, visit *Visit) (*Visit, error) {
	var updated Visit
	if err := s.client.Put(ctx, itemPath(id), toWritePayload(visit), &updated); err != nil {
		return nil, errors.Wrap(err, "[visits.Update]")
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.client.Delete(ctx, itemPath(id)); err != nil {
		return errors.Wrap(err, "[visits.Delete]")
	}
	return nil
}

func itemPath(id int) string {
	return fmt.Sprintf("%s%d/", basePath, id)
}
