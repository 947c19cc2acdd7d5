package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absensi-dev/absensi-api/internal/models"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

type registrationServiceMock struct {
	registerFn func(ctx context.Context, sess *session.Session, stdNum string) (*models.Student, error)
	whoamiFn   func(ctx context.Context, sess *session.Session) (*models.Student, error)
}

func (m *registrationServiceMock) Register(ctx context.Context, sess *session.Session, stdNum string) (*models.Student, error) {
	return m.registerFn(ctx, sess, stdNum)
}

func (m *registrationServiceMock) WhoAmI(ctx context.Context, sess *session.Session) (*models.Student, error) {
	return m.whoamiFn(ctx, sess)
}

func TestRegister(t *testing.T) {
	h := NewRegistrationHandler(&registrationServiceMock{
		registerFn: func(ctx context.Context, sess *session.Session, stdNum string) (*models.Student, error) {
			assert.Equal(t, "123", stdNum)
			return &models.Student{ID: "std-1", Number: "123", Name: "Siti"}, nil
		},
	})

	sess := &session.Session{Token: "tok", DeviceID: "dev-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/register?std_num=123", nil)
	h.Register(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Siti", env.Data["name"])
}

func TestRegisterDeviceAlreadyLinked(t *testing.T) {
	h := NewRegistrationHandler(&registrationServiceMock{
		registerFn: func(ctx context.Context, sess *session.Session, stdNum string) (*models.Student, error) {
			return &models.Student{ID: "std-1", Number: "123", Name: "Siti"}, appErrors.ErrDeviceLinked
		},
	})

	sess := &session.Session{Token: "tok", DeviceID: "dev-1", StudentID: "std-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/register?std_num=456", nil)
	h.Register(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DEVICE_ALREADY_LINKED", env.Error.Code)
	assert.Equal(t, "Siti", env.Meta["name"])
}

func TestRegisterUnknownStudent(t *testing.T) {
	h := NewRegistrationHandler(&registrationServiceMock{
		registerFn: func(ctx context.Context, sess *session.Session, stdNum string) (*models.Student, error) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not existed, check std_num")
		},
	})

	sess := &session.Session{Token: "tok", DeviceID: "dev-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/register?std_num=999", nil)
	h.Register(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterMissingNumber(t *testing.T) {
	h := NewRegistrationHandler(&registrationServiceMock{
		registerFn: func(ctx context.Context, sess *session.Session, stdNum string) (*models.Student, error) {
			assert.Empty(t, stdNum)
			return nil, appErrors.Clone(appErrors.ErrValidation, "std_num didn't send")
		},
	})

	sess := &session.Session{Token: "tok", DeviceID: "dev-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/register", nil)
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWhoAmI(t *testing.T) {
	h := NewRegistrationHandler(&registrationServiceMock{
		whoamiFn: func(ctx context.Context, sess *session.Session) (*models.Student, error) {
			return &models.Student{ID: "std-1", Number: "123", Name: "Siti"}, nil
		},
	})

	sess := &session.Session{Token: "tok", DeviceID: "dev-1", StudentID: "std-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/whoami", nil)
	h.WhoAmI(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Siti", env.Data["name"])
	assert.Equal(t, "123", env.Data["number"])
}

func TestWhoAmIUnregistered(t *testing.T) {
	h := NewRegistrationHandler(&registrationServiceMock{
		whoamiFn: func(ctx context.Context, sess *session.Session) (*models.Student, error) {
			return nil, appErrors.ErrNotRegistered
		},
	})

	sess := &session.Session{Token: "tok", DeviceID: "dev-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/whoami", nil)
	h.WhoAmI(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_REGISTERED", env.Error.Code)
}
