package routes

import (
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestRouteMethods(t *testing.T) {
	router := RegisterRoutes().(*mux.Router)

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/register"},
		{"POST", "/api/v1/login"},
		{"GET", "/api/v1/submittals"},
		{"POST", "/api/v1/submittals"},
		{"GET", "/api/v1/submittals/abc"},
		{"PUT", "/api/v1/submittals/abc"},
		{"PATCH", "/api/v1/submittals/abc"},
		{"DELETE", "/api/v1/submittals/abc"},
		{"PUT", "/api/v1/submittals/abc/status"},
		{"PATCH", "/api/v1/submittals/abc/status"},
		{"GET", "/api/v1/submittals/abc/reviews"},
		{"GET", "/api/v1/submittals/stats"},
		{"POST", "/api/v1/specifications/abc/extract"},
		{"POST", "/api/v1/specifications/abc/create-submittals"},
		{"GET", "/api/v1/extractions/abc"},
		{"GET", "/api/v1/projects"},
		{"GET", "/api/v1/contractors"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			var match mux.RouteMatch
			if !router.Match(req, &match) {
				t.Errorf("%s %s is not routed: %v", tt.method, tt.path, match.MatchErr)
			}
		})
	}

	t.Run("unregistered method rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/submittals/abc/status", nil)
		var match mux.RouteMatch
		if router.Match(req, &match) {
			t.Error("POST must not be routed for the status transition")
		}
	})
}
