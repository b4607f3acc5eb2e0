package httputil_test

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/leadflow/leadflow-backend/pkg/httputil"
	"github.com/leadflow/leadflow-backend/pkg/i18n"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestError_LocalizesAppError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(i18n.WithLocale(req.Context(), i18n.LocaleSwedish))
	rr := httptest.NewRecorder()

	httputil.Error(rr, req, errors.InvalidCriteria())

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode(t, rr)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_CRITERIA", resp.Error.Code)
	assert.Equal(t, "välj minst ett matchningskriterium", resp.Error.Message)
}

func TestError_UnknownErrorIsInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	httputil.Error(rr, req, stderrors.New("driver: bad connection"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decode(t, rr)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "driver")
}

func TestNewMeta(t *testing.T) {
	meta := httputil.NewMeta(2, 20, 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(41), meta.Total)
}

func TestValidate(t *testing.T) {
	type request struct {
		IDs []string `validate:"required,min=1,dive,uuid"`
	}

	err := httputil.Validate(request{})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, "this field is required", appErr.Details["IDs"])

	assert.NoError(t, httputil.Validate(request{IDs: []string{"6f1c1d3e-8d2a-4a53-9b4a-0c6f5a3e2b11"}}))
}

func TestRequestIDAndRecoverer(t *testing.T) {
	log := logger.Nop()
	var seen string
	h := httputil.RequestID(httputil.Logger(log)(httputil.Recoverer(log)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			seen = httputil.GetRequestID(r.Context())
			panic("boom")
		}))))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
