package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apierr.Conflict("Email already registered"), http.StatusConflict, "CONFLICT"},
		{apierr.Unauthorized("TOKEN_EXPIRED", "Token expired"), http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{fmt.Errorf("lookup: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{pkgerrors.ErrConflict, http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("%w: bad days", pkgerrors.ErrInvalidArgument), http.StatusBadRequest, "VALIDATION_ERROR"},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		status, code, _ := Classify(tc.err)
		if status != tc.status || code != tc.code {
			t.Errorf("Classify(%v) = %d %s, want %d %s", tc.err, status, code, tc.status, tc.code)
		}
	}
}

func TestRespondErrHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondErr(c, errors.New("pq: password authentication failed"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Success || env.Error.Code != "INTERNAL_ERROR" || env.Error.Message != internalMessage {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if len(c.Errors) != 1 {
		t.Fatal("internal error was not recorded for logging")
	}
}

func TestRespondOKAddsSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondCreated(c, gin.H{"id": "x"})

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusCreated || body["success"] != true || body["id"] != "x" {
		t.Fatalf("unexpected response %d %v", w.Code, body)
	}
}
