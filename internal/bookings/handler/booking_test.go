package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"surfaura/internal/bookings/repository"
	"surfaura/internal/bookings/service"
	bk_mocks "surfaura/internal/bookings/service/mocks"
	"surfaura/internal/bookings/validator"
	"surfaura/pkg/logger"
	"surfaura/pkg/middleware"
	"surfaura/pkg/model"
	"surfaura/pkg/store"
	"surfaura/pkg/store/memory"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(svc service.BookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func newMemoryRouter() *httprouter.Router {
	log := logger.Discard()
	svc := service.NewBookingService(repository.NewBookingRepository(memory.New()), validator.NewBookingValidator(log), nil, nil, log)
	return newRouter(svc)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateThenList(t *testing.T) {
	router := newMemoryRouter()

	w := do(t, router, http.MethodPost, BookingsPath,
		`{"name":"Ann","email":"a@x.com","phone":"555","package":"starter-surf","date":"2025-12-03","participants":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Regexp(t, `^\{"status":"success","id":"[0-9a-f]{24}"\}\n$`, w.Body.String())

	w = do(t, router, http.MethodGet, BookingsPath+"?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"package":"starter-surf"`)
	assert.Contains(t, w.Body.String(), `"participants":2`)
	assert.Contains(t, w.Body.String(), `"notes":null`)
}

func TestCreate_ValidationFailure(t *testing.T) {
	router := newMemoryRouter()

	w := do(t, router, http.MethodPost, BookingsPath,
		`{"name":"Ann","email":"a@x.com","phone":"555","package":"starter-surf","date":"2025-12-03","participants":25}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t,
		`{"detail":"validation failed","code":"VALIDATION_ERROR","errors":[{"field":"participants","message":"participants must be at most 20"}]}`,
		w.Body.String())

	w = do(t, router, http.MethodGet, BookingsPath, "")
	assert.JSONEq(t, `{"bookings":[]}`, w.Body.String())
}

func TestCreate_NullParticipantsRejected(t *testing.T) {
	router := newMemoryRouter()

	w := do(t, router, http.MethodPost, BookingsPath,
		`{"name":"Ann","email":"a@x.com","phone":"555","package":"starter-surf","date":"2025-12-03","participants":null}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t,
		`{"detail":"validation failed","code":"VALIDATION_ERROR","errors":[{"field":"participants","message":"participants must be an integer"}]}`,
		w.Body.String())

	w = do(t, router, http.MethodGet, BookingsPath, "")
	assert.JSONEq(t, `{"bookings":[]}`, w.Body.String())
}

func TestCreate_DecodeFailures(t *testing.T) {
	router := newMemoryRouter()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "participants not an integer", body: `{"participants":"2"}`, field: "participants"},
		{name: "participants null", body: `{"name":"Ann","email":"a@x.com","phone":"555","package":"starter-surf","date":"2025-12-03","participants":null}`, field: "participants"},
		{name: "malformed", body: `{"name":`, field: validator.FieldBody},
		{name: "empty", body: ``, field: validator.FieldBody},
		{name: "missing fields", body: `{"participants":2}`, field: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, BookingsPath, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, w.Body.String(), `"field":"`+tt.field+`"`)
		})
	}
}

func TestCreate_BodyTooLarge(t *testing.T) {
	router := middleware.MaxRequestSize(32)(newMemoryRouter())

	req := httptest.NewRequest(http.MethodPost, BookingsPath, strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCreate_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := bk_mocks.NewMockBookingService(ctrl)
	router := newRouter(svc)

	svc.EXPECT().Submit(gomock.Any(), gomock.Any()).Return("", store.ErrUnavailable)

	w := do(t, router, http.MethodPost, BookingsPath, `{"name":"Ann"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"document store is not configured","code":"INTERNAL_ERROR"}`, w.Body.String())
}

func TestCreate_PassesRequestIDForEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := bk_mocks.NewMockBookingService(ctrl)
	router := middleware.RequestLogging(logger.Discard())(newRouter(svc))

	svc.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input *model.BookingInput) (string, error) {
			assert.NotEmpty(t, middleware.RequestIDFromContext(ctx))
			require.NotNil(t, input.Name)
			assert.Equal(t, "Ann", *input.Name)
			assert.False(t, input.Participants.Set)
			return "abc", nil
		})

	w := do(t, router, http.MethodPost, BookingsPath, `{"name":"Ann"}`)
	assert.JSONEq(t, `{"status":"success","id":"abc"}`, w.Body.String())
}

func TestList_Limit(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
	}{
		{name: "default", query: "", wantLimit: service.DefaultListLimit},
		{name: "explicit", query: "?limit=3", wantLimit: 3},
		{name: "large is passed through for clamping", query: "?limit=1000", wantLimit: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := bk_mocks.NewMockBookingService(ctrl)
			svc.EXPECT().ListRecent(gomock.Any(), tt.wantLimit).Return([]*model.Booking{}, nil)

			w := do(t, newRouter(svc), http.MethodGet, BookingsPath+tt.query, "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"bookings":[]}`, w.Body.String())
		})
	}
}

func TestList_Errors(t *testing.T) {
	t.Run("non integer limit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := bk_mocks.NewMockBookingService(ctrl)
		svc.EXPECT().ListRecent(gomock.Any(), gomock.Any()).Times(0)

		w := do(t, newRouter(svc), http.MethodGet, BookingsPath+"?limit=ten", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"limit"`)
	})

	t.Run("negative limit", func(t *testing.T) {
		w := do(t, newMemoryRouter(), http.MethodGet, BookingsPath+"?limit=-1", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := bk_mocks.NewMockBookingService(ctrl)
		svc.EXPECT().ListRecent(gomock.Any(), gomock.Any()).
			Return(nil, &store.ReadError{Collection: repository.CollectionName, Err: errors.New("connection reset")})

		w := do(t, newRouter(svc), http.MethodGet, BookingsPath, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), `connection reset`)
	})
}
