package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scholara/internal/shared/errors"
	"scholara/internal/shared/id"
)

func paramContext(t *testing.T, value string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "sid", Value: value}}
	return c
}

func TestParseSIDParam(t *testing.T) {
	sid := id.MustGenerateWithPrefix(id.PrefixTenant, id.DefaultLength)
	c := paramContext(t, sid)

	parsed, err := ParseSIDParam(c, "sid", id.PrefixTenant, "tenant")
	require.NoError(t, err)
	assert.Equal(t, sid, parsed)
}

func TestParseSIDParamMissing(t *testing.T) {
	c := paramContext(t, "")

	_, err := ParseSIDParam(c, "sid", id.PrefixTenant, "tenant")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestParseSIDParamWrongPrefix(t *testing.T) {
	sid := id.MustGenerateWithPrefix(id.PrefixPlan, id.DefaultLength)
	c := paramContext(t, sid)

	_, err := ParseSIDParam(c, "sid", id.PrefixTenant, "tenant")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}
