package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/makerspace-access/internal/middleware"
	"github.com/crucial707/makerspace-access/internal/service"
)

// requestWithChiURLParams returns a request with chi route context and URL params set.
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	return r
}

// requestAs adds the authenticated actor id the way JWTMiddleware would.
func requestAs(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, userID))
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"", 1, 20},
		{"?page=3&perPage=10", 3, 10},
		{"?page=0&perPage=-5", 1, 20},
		{"?perPage=500", 1, 100},
		{"?page=abc", 1, 20},
	}

	for _, c := range cases {
		r := httptest.NewRequest("GET", "/api/users"+c.query, nil)
		page, perPage := parsePagination(r)
		if page != c.wantPage || perPage != c.wantPerPage {
			t.Errorf("%q: got page=%d perPage=%d, want %d/%d", c.query, page, perPage, c.wantPage, c.wantPerPage)
		}
	}
}

func TestServiceError_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("bad input: %w", service.ErrValidation), http.StatusUnprocessableEntity},
		{fmt.Errorf("user x: %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("card taken: %w", service.ErrConflict), http.StatusConflict},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		rr := httptest.NewRecorder()
		ServiceError(rr, c.err)
		if rr.Code != c.want {
			t.Errorf("%v: got status %d, want %d", c.err, rr.Code, c.want)
		}
	}
}
