// Package client is a typed HTTP client of the internship API. Server errors
// come back as *apperr.Error with the kind and code of the server answer;
// network failures are transport errors the caller may retry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/services"
)

type Client struct {
	BaseURL    string
	Token      string
	Lang       string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Entente mirrors the API representation of an entente.
type Entente struct {
	models.Entente
	StatutStage string `json:"statut_stage"`
}

// Notification is an unread notification with its rendered message.
type Notification struct {
	models.Notification
	Message string `json:"message"`
}

func (c *Client) Ententes(ctx context.Context) ([]Entente, error) {
	var out []Entente
	return out, c.do(ctx, http.MethodGet, "/api/ententes", nil, &out)
}

func (c *Client) Entente(ctx context.Context, id uint) (*Entente, error) {
	var out Entente
	return &out, c.do(ctx, http.MethodGet, "/api/ententes/"+itoa(id), nil, &out)
}

func (c *Client) Sign(ctx context.Context, id uint) (*Entente, error) {
	return c.ententeAction(ctx, id, "signer")
}

func (c *Client) Refuse(ctx context.Context, id uint) (*Entente, error) {
	return c.ententeAction(ctx, id, "refuser")
}

func (c *Client) Cancel(ctx context.Context, id uint) (*Entente, error) {
	return c.ententeAction(ctx, id, "annuler")
}

func (c *Client) ententeAction(ctx context.Context, id uint, action string) (*Entente, error) {
	var out Entente
	if err := c.do(ctx, http.MethodPost, "/api/ententes/"+itoa(id)+"/"+action, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Evaluable lists the ententes the caller may still evaluate.
func (c *Client) Evaluable(ctx context.Context) ([]models.Entente, error) {
	var out []models.Entente
	return out, c.do(ctx, http.MethodGet, "/api/evaluations/eligibles", nil, &out)
}

func (c *Client) Evaluate(ctx context.Context, ententeID uint, p services.EvaluationPayload) (*models.Evaluation, error) {
	body := struct {
		EntenteID uint `json:"entente_id"`
		services.EvaluationPayload
	}{ententeID, p}
	var out models.Evaluation
	if err := c.do(ctx, http.MethodPost, "/api/evaluations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Convoke schedules an interview; overwrite replaces an active convocation.
func (c *Client) Convoke(ctx context.Context, candidatureID uint, p services.ConvocationPayload, overwrite bool) (*models.Convocation, error) {
	path := "/api/candidatures/" + itoa(candidatureID) + "/convocations"
	if overwrite {
		path += "?overwrite=true"
	}
	var out models.Convocation
	if err := c.do(ctx, http.MethodPost, path, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ModifyConvocation(ctx context.Context, id uint, p services.ConvocationPayload) (*models.Convocation, error) {
	var out models.Convocation
	if err := c.do(ctx, http.MethodPut, "/api/convocations/"+itoa(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelConvocation(ctx context.Context, id uint, confirm bool) (*models.Convocation, error) {
	path := "/api/convocations/" + itoa(id)
	if confirm {
		path += "?confirm=true"
	}
	var out models.Convocation
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Decide(ctx context.Context, candidatureID uint, statut string) (*models.Candidature, error) {
	var out models.Candidature
	body := map[string]string{"statut": statut}
	if err := c.do(ctx, http.MethodPost, "/api/candidatures/"+itoa(candidatureID)+"/decision", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Notifications returns the unread notifications with their messages.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	return out, c.do(ctx, http.MethodGet, "/api/notifications", nil, &out)
}

// ListUnread satisfies notify.Source.
func (c *Client) ListUnread(ctx context.Context) ([]models.Notification, error) {
	list, err := c.Notifications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, len(list))
	for i, n := range list {
		out[i] = n.Notification
	}
	return out, nil
}

// MarkRead satisfies notify.Source.
func (c *Client) MarkRead(ctx context.Context, id uint, read bool) error {
	return c.do(ctx, http.MethodPatch, "/api/notifications/"+itoa(id), map[string]bool{"lu": read}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperr.Internal(fmt.Errorf("encode request: %w", err))
		}
		rdr = bytes.NewReader(b)
	}
	u := c.BaseURL + path
	if c.Lang != "" {
		u = withQuery(u, "lang", c.Lang)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return apperr.Internal(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return apperr.Transport(err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return decodeError(res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperr.Transport(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// decodeError rebuilds the server error from its status and body.
func decodeError(res *http.Response) error {
	var body httpx.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&body)
	kind := httpx.KindFor(res.StatusCode)
	code := apperr.Code(body.Error)
	switch res.StatusCode {
	case http.StatusUnauthorized, http.StatusTooManyRequests:
		code = ""
	}
	if code == "" {
		code = defaultCode(kind)
	}
	e := apperr.New(kind, code, "%s", body.Message)
	if fields, ok := body.Details.(map[string]any); ok && kind == apperr.KindValidation {
		e.Fields = make(map[string]string, len(fields))
		for k, v := range fields {
			e.Fields[k] = fmt.Sprint(v)
		}
	}
	return e
}

func defaultCode(kind apperr.Kind) apperr.Code {
	switch kind {
	case apperr.KindValidation:
		return apperr.CodeValidationFailed
	case apperr.KindAuthorization:
		return apperr.CodeNotAuthorized
	case apperr.KindNotFound:
		return apperr.CodeNotFound
	case apperr.KindTransport:
		return apperr.CodeUnavailable
	case apperr.KindConflict:
		return apperr.CodeInvalidTransition
	}
	return apperr.CodeInternal
}

func withQuery(raw, key, value string) string {
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
