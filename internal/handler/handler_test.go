package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/config"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/middleware"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/repository"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/utils"
)

// fakeBookings is a func-field BookingService and AdminService.
type fakeBookings struct {
	create       func(service.BookingInput) (*service.Confirmation, error)
	lookup       func(token string) (*model.Booking, error)
	edit         func(token string, in service.EditInput) (*model.Booking, error)
	cancel       func(token string) (*model.Booking, error)
	availability func(date string) ([]service.SlotAvailability, error)
	block        func(date, session, reason string, actor uint64) (*model.BlockedSlot, error)
	unblock      func(id uint64) error
	list         func(f service.BookingFilter) ([]model.Booking, error)
}

func (f *fakeBookings) Create(_ context.Context, in service.BookingInput) (*service.Confirmation, error) {
	return f.create(in)
}
func (f *fakeBookings) Lookup(_ context.Context, t string) (*model.Booking, error) {
	return f.lookup(t)
}
func (f *fakeBookings) Edit(_ context.Context, t string, in service.EditInput) (*model.Booking, error) {
	return f.edit(t, in)
}
func (f *fakeBookings) Cancel(_ context.Context, t string) (*model.Booking, error) {
	return f.cancel(t)
}
func (f *fakeBookings) Availability(_ context.Context, d string) ([]service.SlotAvailability, error) {
	return f.availability(d)
}
func (f *fakeBookings) ListBookings(_ context.Context, bf service.BookingFilter) ([]model.Booking, error) {
	return f.list(bf)
}
func (f *fakeBookings) BlockSlot(_ context.Context, d, s, r string, a uint64) (*model.BlockedSlot, error) {
	return f.block(d, s, r, a)
}
func (f *fakeBookings) UnblockSlot(_ context.Context, id uint64) error { return f.unblock(id) }
func (f *fakeBookings) ListBlocked(context.Context) ([]model.BlockedSlot, error) {
	return nil, nil
}

func pending() *model.Booking {
	return &model.Booking{
		ID: "b-1", Name: "Ana", Email: "ana@example.com", Phone: "+34 600 000 000",
		Date: "2025-03-10", Time: "20:00", Session: schedule.Evening, Guests: 4,
		Status: model.StatusPending,
		Token:  &model.EditToken{Hash: "h", ExpiresAt: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)},
	}
}

type reqOpt func(c echo.Context)

func param(name, value string) reqOpt {
	return func(c echo.Context) {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
}

func asAdmin(id uint64) reqOpt {
	return func(c echo.Context) { c.Set(middleware.CtxUserID, id) }
}

func call(t *testing.T, method, target, body string, h echo.HandlerFunc, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for _, o := range opts {
		o(c)
	}
	require.NoError(t, h(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestCreate_AcceptsNumericAndStringGuests(t *testing.T) {
	var got []string
	svc := &fakeBookings{create: func(in service.BookingInput) (*service.Confirmation, error) {
		got = append(got, in.Guests)
		b := pending()
		return &service.Confirmation{Booking: *b, Token: "tok", ManageURL: "https://x/manage?token=tok"}, nil
	}}
	h := NewBookingHandler(svc)

	rec := call(t, http.MethodPost, "/v1/bookings",
		`{"name":"Ana","email":"ana@example.com","phone":"600000000","date":"2025-03-10","time":"20:00","guests":4}`, h.Create)
	require.Equal(t, http.StatusCreated, rec.Code)
	m := decode(t, rec)
	assert.Equal(t, "b-1", m["id"])
	assert.Equal(t, "tok", m["token"])
	assert.Equal(t, "evening", m["session"])
	assert.Equal(t, "2025-03-17T00:00:00Z", m["token_expires_at"])
	assert.NotContains(t, m["booking"], "Token")

	rec = call(t, http.MethodPost, "/v1/bookings", `{"guests":"6"}`, h.Create)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"4", "6"}, got)
}

func TestCreate_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		check  func(t *testing.T, m map[string]any)
	}{
		{
			err:    &service.ValidationError{Fields: []service.FieldError{{Field: "phone", Message: "bad"}}},
			status: http.StatusBadRequest,
			check: func(t *testing.T, m map[string]any) {
				assert.Equal(t, "validation failed", m["error"])
				fields := m["fields"].([]any)
				assert.Equal(t, "phone", fields[0].(map[string]any)["field"])
			},
		},
		{
			err:    &service.CapacityExceededError{Available: 2},
			status: http.StatusBadRequest,
			check:  func(t *testing.T, m map[string]any) { assert.EqualValues(t, 2, m["availableSpots"]) },
		},
		{
			err:    service.ErrSlotClosed,
			status: http.StatusBadRequest,
			check:  func(t *testing.T, m map[string]any) { assert.Equal(t, "slot_closed", m["code"]) },
		},
		{
			err:    service.ErrSlotBlocked,
			status: http.StatusBadRequest,
			check:  func(t *testing.T, m map[string]any) { assert.Equal(t, "slot_blocked", m["code"]) },
		},
	}
	for _, tc := range cases {
		svc := &fakeBookings{create: func(service.BookingInput) (*service.Confirmation, error) { return nil, tc.err }}
		rec := call(t, http.MethodPost, "/v1/bookings", `{}`, NewBookingHandler(svc).Create)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		tc.check(t, decode(t, rec))
	}
}

func TestCreate_StoreFaultGoesToErrorHandler(t *testing.T) {
	boom := errors.New("connection reset")
	svc := &fakeBookings{create: func(service.BookingInput) (*service.Confirmation, error) { return nil, boom }}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.ErrorIs(t, NewBookingHandler(svc).Create(c), boom)
}

func TestManage_TokenOutcomes(t *testing.T) {
	cases := map[error]int{
		service.ErrTokenInvalid:     http.StatusNotFound,
		service.ErrTokenExpired:     http.StatusGone,
		service.ErrAlreadyCancelled: http.StatusConflict,
	}
	for err, status := range cases {
		svc := &fakeBookings{
			lookup: func(string) (*model.Booking, error) { return nil, err },
			cancel: func(string) (*model.Booking, error) { return nil, err },
			edit:   func(string, service.EditInput) (*model.Booking, error) { return nil, err },
		}
		h := NewBookingHandler(svc)
		assert.Equal(t, status, call(t, http.MethodGet, "/", "", h.Show, param("token", "x")).Code)
		assert.Equal(t, status, call(t, http.MethodPost, "/", "", h.Cancel, param("token", "x")).Code)
		assert.Equal(t, status, call(t, http.MethodPut, "/", `{"guests":2}`, h.Update, param("token", "x")).Code)
	}
}

func TestUpdate_PassesTokenAndFields(t *testing.T) {
	var gotToken string
	var gotIn service.EditInput
	svc := &fakeBookings{edit: func(tok string, in service.EditInput) (*model.Booking, error) {
		gotToken, gotIn = tok, in
		return pending(), nil
	}}
	rec := call(t, http.MethodPut, "/", `{"date":"2025-03-11","time":"13:00","guests":"3","requests":"window"}`,
		NewBookingHandler(svc).Update, param("token", "abc"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", gotToken)
	window := "window"
	assert.Equal(t, service.EditInput{Date: "2025-03-11", Time: "13:00", Guests: "3", Requests: &window}, gotIn)

	call(t, http.MethodPut, "/", `{"date":"2025-03-11","time":"13:00","guests":3}`,
		NewBookingHandler(svc).Update, param("token", "abc"))
	assert.Nil(t, gotIn.Requests)

	call(t, http.MethodPut, "/", `{"date":"2025-03-11","time":"13:00","guests":3,"requests":""}`,
		NewBookingHandler(svc).Update, param("token", "abc"))
	require.NotNil(t, gotIn.Requests)
	assert.Empty(t, *gotIn.Requests)
}

func TestAvailability(t *testing.T) {
	svc := &fakeBookings{availability: func(d string) ([]service.SlotAvailability, error) {
		if d == "bad" {
			return nil, &service.ValidationError{Fields: []service.FieldError{{Field: "date", Message: "x"}}}
		}
		return []service.SlotAvailability{{Session: schedule.Morning, Offered: true, Capacity: 30, Remaining: 12}}, nil
	}}
	h := NewBookingHandler(svc)

	rec := call(t, http.MethodGet, "/v1/availability?date=2025-03-10", "", h.Availability)
	assert.Equal(t, http.StatusOK, rec.Code)
	sessions := decode(t, rec)["sessions"].([]any)
	assert.EqualValues(t, 12, sessions[0].(map[string]any)["remaining"])

	assert.Equal(t, http.StatusBadRequest, call(t, http.MethodGet, "/v1/availability?date=bad", "", h.Availability).Code)
}

func TestAdmin_BlockUsesActor(t *testing.T) {
	var actor uint64
	svc := &fakeBookings{block: func(d, s, r string, a uint64) (*model.BlockedSlot, error) {
		actor = a
		if d == "2025-03-10" && s == "evening" {
			return nil, service.ErrSlotAlreadyBlocked
		}
		return &model.BlockedSlot{ID: 9, Date: d, Session: schedule.Session(s), Reason: r, CreatedBy: a}, nil
	}}
	h := NewAdminHandler(svc)

	rec := call(t, http.MethodPost, "/", `{"date":"2025-03-11","session":"morning","reason":"private event"}`, h.Block, asAdmin(3))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 3, actor)
	assert.EqualValues(t, 9, decode(t, rec)["id"])

	rec = call(t, http.MethodPost, "/", `{"date":"2025-03-10","session":"evening"}`, h.Block, asAdmin(3))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdmin_Unblock(t *testing.T) {
	svc := &fakeBookings{unblock: func(id uint64) error {
		if id == 404 {
			return service.ErrBlockNotFound
		}
		return nil
	}}
	h := NewAdminHandler(svc)
	assert.Equal(t, http.StatusNoContent, call(t, http.MethodDelete, "/", "", h.Unblock, param("id", "1")).Code)
	assert.Equal(t, http.StatusNotFound, call(t, http.MethodDelete, "/", "", h.Unblock, param("id", "404")).Code)
	assert.Equal(t, http.StatusBadRequest, call(t, http.MethodDelete, "/", "", h.Unblock, param("id", "abc")).Code)
}

func TestAdmin_ListBookingsCountsActiveGuests(t *testing.T) {
	var filter service.BookingFilter
	svc := &fakeBookings{list: func(f service.BookingFilter) ([]model.Booking, error) {
		filter = f
		a, b := *pending(), *pending()
		b.ID = "b-2"
		b.Cancel()
		return []model.Booking{a, b}, nil
	}}
	rec := call(t, http.MethodGet, "/v1/admin/bookings?date=2025-03-10&status=", "", NewAdminHandler(svc).ListBookings)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode(t, rec)
	assert.EqualValues(t, 2, m["count"])
	assert.EqualValues(t, 4, m["active_guests"])
	assert.Equal(t, "2025-03-10", filter.Date)
}

// ----- auth -----

type fakeUsers struct{ byEmail map[string]model.User }

func (f fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

type fakeTokens struct {
	live map[string]uint64
}

func (f *fakeTokens) StoreRefresh(_ context.Context, uid uint64, hash string, _ time.Time) error {
	f.live[hash] = uid
	return nil
}
func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	uid, ok := f.live[hash]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return uid, nil
}
func (f *fakeTokens) Rotate(_ context.Context, uid uint64, oldHash, newHash string, _ time.Time) error {
	if _, ok := f.live[oldHash]; !ok {
		return repository.ErrNotFound
	}
	delete(f.live, oldHash)
	f.live[newHash] = uid
	return nil
}
func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(f.live, hash)
	return nil
}
func (f *fakeTokens) RevokeAllForUser(_ context.Context, uid uint64) error {
	for h, u := range f.live {
		if u == uid {
			delete(f.live, h)
		}
	}
	return nil
}

func newAuth(t *testing.T) (*AuthHandler, *fakeTokens) {
	t.Helper()
	hash, err := utils.HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	users := fakeUsers{byEmail: map[string]model.User{
		"admin@example.com": {ID: 1, Email: "admin@example.com", PasswordHash: hash, IsActive: true, Roles: []string{model.RoleAdmin}},
		"staff@example.com": {ID: 2, Email: "staff@example.com", PasswordHash: hash, IsActive: true},
	}}
	toks := &fakeTokens{live: map[string]uint64{}}
	cfg := config.Config{JWTSecret: "k", AccessTTLMin: 5, RefreshTTLDays: 1}
	return NewAuthHandler(cfg, users, toks, slog.New(slog.NewTextHandler(io.Discard, nil))), toks
}

func TestLogin(t *testing.T) {
	h, toks := newAuth(t)

	rec := call(t, http.MethodPost, "/", `{"email":" Admin@Example.com ","password":"s3cret-pass"}`, h.Login)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleAdmin, resp.User.Role)
	assert.Len(t, toks.live, 1)

	claims, err := utils.ParseAccessToken("k", resp.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims["sub"])

	assert.Equal(t, http.StatusUnauthorized,
		call(t, http.MethodPost, "/", `{"email":"admin@example.com","password":"nope"}`, h.Login).Code)
	assert.Equal(t, http.StatusUnauthorized,
		call(t, http.MethodPost, "/", `{"email":"staff@example.com","password":"s3cret-pass"}`, h.Login).Code)
	assert.Equal(t, http.StatusUnauthorized,
		call(t, http.MethodPost, "/", `{"email":"ghost@example.com","password":"x"}`, h.Login).Code)
	assert.Equal(t, http.StatusBadRequest, call(t, http.MethodPost, "/", `{"email":""}`, h.Login).Code)
}

func TestRefreshRotates(t *testing.T) {
	h, toks := newAuth(t)
	rec := call(t, http.MethodPost, "/", `{"email":"admin@example.com","password":"s3cret-pass"}`, h.Login)
	var first authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	body := `{"refresh_token":"` + first.Refresh.Token + `"}`
	rec = call(t, http.MethodPost, "/", body, h.Refresh)
	require.Equal(t, http.StatusOK, rec.Code)
	var second authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.NotEqual(t, first.Refresh.Token, second.Refresh.Token)
	assert.Len(t, toks.live, 1)

	// the rotated-out token is dead
	assert.Equal(t, http.StatusUnauthorized, call(t, http.MethodPost, "/", body, h.Refresh).Code)
	assert.Equal(t, http.StatusOK,
		call(t, http.MethodPost, "/", `{"refresh_token":"`+second.Refresh.Token+`"}`, h.RefreshAccess).Code)
}

func TestLogout(t *testing.T) {
	h, toks := newAuth(t)
	rec := call(t, http.MethodPost, "/", `{"email":"admin@example.com","password":"s3cret-pass"}`, h.Login)
	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, http.StatusBadRequest, call(t, http.MethodPost, "/", `{}`, h.Logout).Code)
	assert.Equal(t, http.StatusNoContent,
		call(t, http.MethodPost, "/", `{"refresh_token":"`+resp.Refresh.Token+`"}`, h.Logout).Code)
	assert.Empty(t, toks.live)
}

func TestFlexInt(t *testing.T) {
	var v struct {
		G flexInt `json:"g"`
	}
	for in, want := range map[string]string{`{"g":5}`: "5", `{"g":"7"}`: "7", `{"g":null}`: "", `{"g":2.5}`: "2.5"} {
		require.NoError(t, json.Unmarshal([]byte(in), &v), in)
		assert.Equal(t, want, string(v.G), in)
	}
	assert.Error(t, json.Unmarshal([]byte(`{"g":true}`), &v))
}

type pingFunc func(context.Context) error

func (p pingFunc) PingContext(ctx context.Context) error { return p(ctx) }

func TestHealth(t *testing.T) {
	assert.Equal(t, http.StatusOK, call(t, http.MethodGet, "/healthz", "", Health(nil)).Code)
	down := pingFunc(func(context.Context) error { return errors.New("down") })
	assert.Equal(t, http.StatusServiceUnavailable, call(t, http.MethodGet, "/healthz", "", Health(down)).Code)
}
