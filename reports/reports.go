// Package reports talks to the backend's incident reports
// (/admin/reportes/). Reports may carry a photo; with an attachment the
// payload switches from JSON to multipart/form-data, matching the backend
// serializer's "foto" file field.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/condovista/condoctl/api"
)

const basePath = "/admin/reportes/"

// Report statuses as the backend defines them.
const (
	StatusPending    = "pendiente"
	StatusInProgress = "en_proceso"
	StatusResolved   = "resuelto"
)

// Report is one incident report.
type Report struct {
	ID          int    `json:"id,omitempty"`
	Type        string `json:"tipo"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion,omitempty"`
	Location    string `json:"ubicacion,omitempty"`
	Status      string `json:"estado,omitempty"`
	Priority    int    `json:"prioridad,omitempty"`
	ReportedAt  string `json:"fecha_reporte,omitempty"` // ISO 8601
	OwnerID     *int   `json:"propietario,omitempty"`
	PhotoURL    string `json:"foto,omitempty"`
}

// Attachment is a photo to upload alongside a report.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// ListParams narrows and orders the report listing server-side.
type ListParams struct {
	Search   string
	Ordering string // e.g. "-fecha_reporte", "prioridad"
	Status   string
	Type     string
	Priority string
}

func (p ListParams) values() url.Values {
	values := url.Values{}
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	if p.Ordering != "" {
		values.Set("ordering", p.Ordering)
	}
	if p.Status != "" {
		values.Set("estado", p.Status)
	}
	if p.Type != "" {
		values.Set("tipo", p.Type)
	}
	if p.Priority != "" {
		values.Set("prioridad", p.Priority)
	}
	return values
}

// Service provides CRUD operations on incident reports.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[reports.NewService] api client is required")
	}
	return &Service{client: client}, nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Report, error) {
	var reports []Report
	if err := s.client.Get(ctx, basePath, params.values(), &reports); err != nil {
		return nil, errors.Wrap(err, "[reports.List]")
	}
	return reports, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Report, error) {
	var report Report
	if err := s.client.Get(ctx, itemPath(id), nil, &report); err != nil {
		return nil, errors.Wrap(err, "[reports.Get]")
	}
	return &report, nil
}

// Create submits a new report. With a nil attachment the payload is JSON;
// otherwise it is multipart with the photo in the "foto" field.
func (s *Service) Create(ctx context.Context, report *Report, attachment *Attachment) (*Report, error) {
	var created Report
	if attachment == nil {
		if err := s.client.Post(ctx, basePath, report, &created); err != nil {
			return nil, errors.Wrap(err, "[reports.Create]")
		}
		return &created, nil
	}

	contentType, body, err := multipartBody(report, attachment)
	if err != nil {
		return nil, errors.Wrap(err, "[reports.Create]")
	}
	if err := s.client.PostRaw(ctx, basePath, contentType, body, &created); err != nil {
		return nil, errors.Wrap(err, "[reports.Create]")
	}
	return &created, nil
}

// Update replaces a report, with the same JSON/multipart split as Create.
func (s *Service) Update(ctx context.Context, id int, report *Report, attachment *Attachment) (*Report, error) {
	var updated Report
	if attachment == nil {
		if err := s.client.Put(ctx, itemPath(id), report, &updated); err != nil {
			return nil, errors.Wrap(err, "[reports.Update]")
		}
		return &updated, nil
	}

	contentType, body, err := multipartBody(report, attachment)
	if err != nil {
		return nil, errors.Wrap(err, "[reports.Update]")
	}
	if err := s.client.PutRaw(ctx, itemPath(id), contentType, body, &updated); err != nil {
		return nil, errors.Wrap(err, "[reports.Update]")
	}
	return &updated, nil
}

// SetStatus advances only the report state, leaving the rest untouched.
func (s *Service) SetStatus(ctx context.Context, id int, status string) (*Report, error) {
	var updated Report
	if err := s.client.Put(ctx, itemPath(id), map[string]string{"estado": status}, &updated); err != nil {
		return nil, errors.Wrap(err, "[reports.SetStatus]")
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.client.Delete(ctx, itemPath(id)); err != nil {
		return errors.Wrap(err, "[reports.Delete]")
	}
	return nil
}

func multipartBody(report *Report, attachment *Attachment) (string, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"tipo":        report.Type,
		"titulo":      report.Title,
		"descripcion": report.Description,
		"ubicacion":   report.Location,
		"estado":      report.Status,
		"prioridad":   strconv.Itoa(report.Priority),
	}
	if report.ReportedAt != "" {
		fields["fecha_reporte"] = report.ReportedAt
	}
	if report.OwnerID != nil {
		fields["propietario"] = strconv.Itoa(*report.OwnerID)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", nil, errors.Wrap(err, "write field "+name)
		}
	}

	part, err := writer.CreateFormFile("foto", attachment.Filename)
	if err != nil {
		return "", nil, errors.Wrap(err, "create photo part")
	}
	if _, err := io.Copy(part, attachment.Content); err != nil {
		return "", nil, errors.Wrap(err, "copy photo content")
	}
	if err := writer.Close(); err != nil {
		return "", nil, errors.Wrap(err, "close multipart writer")
	}

	return writer.FormDataContentType(), buf.Bytes(), nil
}

func itemPath(id int) string {
	return fmt.Sprintf("%s%d/", basePath, id)
}
