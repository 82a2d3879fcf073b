package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/handler"
	"fieldpilot/internal/middleware"
	"fieldpilot/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setAuthContext(c *gin.Context, tenantID, userID uuid.UUID, role domain.UserRole) {
	middleware.SetActor(c, service.Actor{TenantID: tenantID, UserID: userID, Role: role})
}

// newContext builds a test context for method/path with an optional JSON body
// and the caller's auth context already set.
func newContext(method, path string, body interface{}, actor service.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	var r io.Reader = http.NoBody
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, path, r)
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	setAuthContext(c, actor.TenantID, actor.UserID, actor.Role)
	return c, w
}

func testActor(role domain.UserRole) service.Actor {
	return service.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: role}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData unmarshals the envelope's data field into dest.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NoError(t, json.Unmarshal(resp.Data, dest))
}
