package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/go-stages/internal/apperr"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.InvalidTransition("x"), http.StatusConflict, "invalid_transition"},
		{apperr.AlreadyEvaluated(1, "EMPLOYER"), http.StatusConflict, "already_evaluated"},
		{apperr.NotFinalized(1), http.StatusConflict, "not_finalized"},
		{apperr.NotAuthorized("x"), http.StatusForbidden, "not_authorized"},
		{apperr.NotFound("entente", 1), http.StatusNotFound, "not_found"},
		{apperr.Validation(map[string]string{"lieu": "required"}), http.StatusBadRequest, "validation_failed"},
		{errors.New("sql: connection reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Error(rec, tc.err, "msg")
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d got %d", tc.err, tc.status, rec.Code)
		}
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error != tc.code || body.Message != "msg" {
			t.Fatalf("unexpected body %+v", body)
		}
		if strings.Contains(rec.Body.String(), "connection reset") {
			t.Fatalf("internal cause leaked: %s", rec.Body.String())
		}
		if KindFor(rec.Code) != apperr.KindOf(tc.err) {
			t.Fatalf("KindFor(%d) does not invert StatusFor", rec.Code)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Lieu string `json:"lieu"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lieu":"Salle 204"}`))
	if err := DecodeJSON(req, &v); err != nil || v.Lieu != "Salle 204" {
		t.Fatalf("decode: %v %+v", err, v)
	}
	for _, body := range []string{"", "{", `{"unknown":1}`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := DecodeJSON(req, &v); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("body %q: expected validation error, got %v", body, err)
		}
	}
}
