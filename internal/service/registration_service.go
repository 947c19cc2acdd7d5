package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/absensi-dev/absensi-api/internal/models"
	"github.com/absensi-dev/absensi-api/internal/repository"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/netid"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

type deviceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Device, error)
	GetOrCreate(ctx context.Context, mac string) (*models.Device, error)
	LinkStudent(ctx context.Context, deviceID, studentID string) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByNumber(ctx context.Context, number string) (*models.Student, error)
}

// RegistrationService resolves caller device identity and links devices to
// students.
type RegistrationService struct {
	devices  deviceRepository
	students studentReader
	resolver netid.Resolver
	logger   *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(devices deviceRepository, students studentReader, resolver netid.Resolver, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{devices: devices, students: students, resolver: resolver, logger: logger}
}

// Identify fills the session's device identity on first contact. Loopback
// callers get the local sentinel MAC; everyone else is resolved through the
// ARP table. The device row is created lazily and cached in the session so
// resolution happens once per session, not per request.
func (s *RegistrationService) Identify(ctx context.Context, sess *session.Session, clientIP string) error {
	if sess.MAC != "" {
		return nil
	}

	var mac string
	if netid.IsLoopback(clientIP) {
		mac = netid.SentinelLocalMAC
		sess.LocalUser = true
	} else {
		resolved, err := s.resolver.LookupMAC(clientIP)
		if err != nil {
			if errors.Is(err, netid.ErrNoEntry) {
				return appErrors.ErrUnresolvedDevice
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "device resolution failed")
		}
		mac = resolved
	}

	device, err := s.devices.GetOrCreate(ctx, mac)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "device lookup failed")
	}

	sess.MAC = mac
	sess.DeviceID = device.ID
	if device.Linked() {
		sess.StudentID = *device.StudentID
	}
	s.logger.Debug("device identified", zap.String("mac", mac), zap.String("device_id", device.ID))
	return nil
}

// Register links the caller's device to the student with the given number.
// The link is immutable; a second registration for the same device is
// rejected with the currently linked student's name attached.
func (s *RegistrationService) Register(ctx context.Context, sess *session.Session, stdNum string) (*models.Student, error) {
	if stdNum == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "std_num didn't send")
	}
	if sess.Registered() {
		student, err := s.students.FindByID(ctx, sess.StudentID)
		if err != nil {
			return nil, appErrors.ErrDeviceLinked
		}
		return student, appErrors.ErrDeviceLinked
	}

	student, err := s.students.FindByNumber(ctx, stdNum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not existed, check std_num")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "student lookup failed")
	}

	if err := s.devices.LinkStudent(ctx, sess.DeviceID, student.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyLinked) {
			return student, appErrors.ErrDeviceLinked
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "device link failed")
	}

	sess.StudentID = student.ID
	s.logger.Info("device registered", zap.String("device_id", sess.DeviceID), zap.String("student_number", student.Number))
	return student, nil
}

// WhoAmI returns the student linked to the caller's device.
func (s *RegistrationService) WhoAmI(ctx context.Context, sess *session.Session) (*models.Student, error) {
	if !sess.Registered() {
		return nil, appErrors.ErrNotRegistered
	}
	student, err := s.students.FindByID(ctx, sess.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotRegistered
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "student lookup failed")
	}
	return student, nil
}
