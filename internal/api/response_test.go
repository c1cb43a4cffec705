package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/testutil"
)

func TestWriteJSONResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSONResponse(rr, http.StatusOK, models.Success(map[string]string{"k": "v"}))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "success payload")
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	resp := testutil.AssertJSONResponse(t, rr, "ok")
	result, _ := resp["result"].(map[string]interface{})
	if result["k"] != "v" {
		t.Errorf("unexpected result: %v", result)
	}
}

func TestWriteJSONResponseMarshalFallback(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSONResponse(rr, http.StatusOK, make(chan int))
	testutil.AssertHTTPStatus(t, http.StatusInternalServerError, rr.Code, "unmarshalable payload")
	testutil.AssertJSONResponse(t, rr, "error")
}
