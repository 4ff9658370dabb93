package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-employee-mgmt/internal/auth"
	autherrors "go-employee-mgmt/internal/auth/errors"
	authMock "go-employee-mgmt/internal/auth/mock"
	"go-employee-mgmt/internal/employee"
	employeeerrors "go-employee-mgmt/internal/employee/errors"
	employeeMock "go-employee-mgmt/internal/employee/mock"
	"go-employee-mgmt/internal/events"
	"go-employee-mgmt/internal/messaging/kafka"
	kafkaMock "go-employee-mgmt/internal/messaging/kafka/mock"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/rbac/infra"
	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	admin      = rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}
	alice      = rbac.Identity{UserID: 10, Role: rbac.RoleEmployee}
	bob        = rbac.Identity{UserID: 20, Role: rbac.RoleEmployee}
	engineerID = int64(3)
)

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service employee.Service
	repo    *employeeMock.MockRepository
	users   *authMock.MockRepository
	outbox  *kafkaMock.MockOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	enforcer, err := infra.NewEnforcer(rbac.DefaultRules())
	assert.NoError(t, err)

	repo := employeeMock.NewMockRepository(ctrl)
	users := authMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	svc := employee.NewService(db, repo, users, rbac.NewService(enforcer), outboxRepo, bcrypt.DefaultCost)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		users:   users,
		outbox:  outboxRepo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func aliceEmployee() *employee.Employee {
	birth := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)
	return &employee.Employee{
		ID:        5,
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		BirthDate: &birth,
		JobID:     &engineerID,
		Job:       &employee.EmployeeJob{ID: engineerID, Title: "Engineer"},
		UserID:    alice.UserID,
		User:      &employee.EmployeeUser{ID: alice.UserID, Email: "alice@example.com"},
	}
}

func validRequest() employee.EmployeeRequest {
	return employee.EmployeeRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "Alice@Example.com",
		BirthDate: "1990-04-01",
		JobID:     &engineerID,
	}
}

func decodeLifecycle(t *testing.T, e kafka.OutboxEvent) events.EmployeeLifecycleEvent {
	t.Helper()
	var payload events.EmployeeLifecycleEvent
	assert.NoError(t, json.Unmarshal(e.Payload, &payload))
	return payload
}

func TestEmployeeService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("admin sees every employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAll(ctx).Return([]employee.Employee{*aliceEmployee()}, nil)

		resp, err := deps.service.List(ctx, admin)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Engineer", *resp[0].JobTitle)
		assert.Equal(t, "alice@example.com", resp[0].UserEmail)
		assert.Equal(t, "1990-04-01", *resp[0].BirthDate)
		assert.Nil(t, resp[0].StartDate)
	})

	t.Run("employee is forbidden before storage", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.List(ctx, alice)

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAll(ctx).Return(nil, errors.New("db down"))

		_, err := deps.service.List(ctx, admin)

		assert.True(t, apperror.IsInternal(err))
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("owner reads own record", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, int64(5)).Return(aliceEmployee(), nil)

		resp, err := deps.service.GetByID(ctx, alice, 5)

		assert.NoError(t, err)
		assert.Equal(t, int64(5), resp.ID)
	})

	t.Run("admin reads any record", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, int64(5)).Return(aliceEmployee(), nil)

		_, err := deps.service.GetByID(ctx, admin, 5)

		assert.NoError(t, err)
	})

	t.Run("other employee is forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, int64(5)).Return(aliceEmployee(), nil)

		_, err := deps.service.GetByID(ctx, bob, 5)

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("missing record is not found even for non-owner", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, int64(99)).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, bob, 99)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_GetByOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("completed profile", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByUserID(ctx, alice.UserID).Return(aliceEmployee(), nil)

		resp, err := deps.service.GetByOwner(ctx, alice)

		assert.NoError(t, err)
		assert.Equal(t, alice.UserID, resp.UserID)
	})

	t.Run("registered user without profile", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByUserID(ctx, bob.UserID).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByOwner(ctx, bob)

		assert.ErrorIs(t, err, employeeerrors.ErrProfileNotCompleted)
		assert.Equal(t, 404, apperror.ToHTTP(err).Status)
	})
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-create")

	t.Run("success creates user, employee and event atomically", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		var storedHash string
		deps.users.EXPECT().WithTx(gomock.Any()).Return(deps.users)
		deps.users.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, u *auth.User) error {
				assert.Equal(t, "alice@example.com", u.Email)
				assert.Equal(t, rbac.RoleEmployee, u.Role)
				storedHash = u.Password
				u.ID = alice.UserID
				return nil
			})

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, alice.UserID, e.UserID)
				assert.Equal(t, "alice@example.com", e.Email)
				assert.Equal(t, "1990-04-01", e.BirthDate.Format("2006-01-02"))
				e.ID = 5
				return nil
			})
		deps.repo.EXPECT().FindByID(ctx, int64(5)).Return(aliceEmployee(), nil)

		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				assert.Equal(t, events.EmployeeLifecycleTopic, e.Topic)
				assert.Equal(t, events.EventEmployeeCreated, e.EventType)
				assert.Equal(t, "5", e.AggregateID)
				assert.Equal(t, "rid-create", e.RequestID)
				payload := decodeLifecycle(t, e)
				assert.Equal(t, admin.UserID, payload.ActorID)
				assert.Equal(t, string(employee.StateProfileComplete), payload.ProfileState)
				return nil
			})

		resp, err := deps.service.Create(ctx, admin, validRequest())

		assert.NoError(t, err)
		assert.Equal(t, int64(5), resp.Employee.ID)
		assert.NotEmpty(t, resp.TempPassword)
		assert.True(t, auth.CheckPassword(storedHash, resp.TempPassword))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate email rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.users.EXPECT().WithTx(gomock.Any()).Return(deps.users)
		deps.users.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"})

		_, err := deps.service.Create(ctx, admin, validRequest())

		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown job rolls back with validation error", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.users.EXPECT().WithTx(gomock.Any()).Return(deps.users)
		deps.users.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23503", ConstraintName: "fk_employees_job"})

		_, err := deps.service.Create(ctx, admin, validRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrJobNotFound)
		assert.Equal(t, 400, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("malformed date fails before storage", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validRequest()
		req.StartDate = "01/02/2024"

		_, err := deps.service.Create(ctx, admin, req)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("employee may not create", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(ctx, alice, validRequest())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success replaces mutable fields", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		req := validRequest()
		req.FirstName = "Alicia"
		req.JobID = nil

		updated := aliceEmployee()
		updated.FirstName = "Alicia"
		updated.JobID = nil
		updated.Job = nil

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		gomock.InOrder(
			deps.repo.EXPECT().FindByID(ctx, int64(5)).Return(aliceEmployee(), nil),
			deps.repo.EXPECT().
				Update(ctx, gomock.Any()).
				DoAndReturn(func(_ context.Context, e *employee.Employee) error {
					assert.Equal(t, "Alicia", e.FirstName)
					assert.Nil(t, e.JobID)
					assert.Equal(t, alice.UserID, e.UserID)
					return nil
				}),
			deps.repo.EXPECT().FindByID(ctx, int64(5)).Return(updated, nil),
		)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				assert.Equal(t, events.EventEmployeeUpdated, e.EventType)
				return nil
			})

		resp, err := deps.service.Update(ctx, admin, 5, req)

		assert.NoError(t, err)
		assert.Equal(t, "Alicia", resp.FirstName)
		assert.Nil(t, resp.JobTitle)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, int64(99)).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, admin, 99, validRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("owner may not update", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Update(ctx, alice, 5, validRequest())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns user to registered", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, int64(5)).Return(aliceEmployee(), nil)
		deps.repo.EXPECT().Delete(ctx, int64(5)).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				assert.Equal(t, events.EventEmployeeDeleted, e.EventType)
				payload := decodeLifecycle(t, e)
				assert.Equal(t, string(employee.StateRegistered), payload.ProfileState)
				assert.Equal(t, alice.UserID, payload.UserID)
				return nil
			})

		assert.NoError(t, deps.service.Delete(ctx, admin, 5))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("nonexistent id", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, int64(99)).Return(nil, gorm.ErrRecordNotFound)

		err := deps.service.Delete(ctx, admin, 99)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("employee may not delete", func(t *testing.T) {
		deps := setupServiceTest(t)

		err := deps.service.Delete(ctx, alice, 5)

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestEmployeeService_CompleteProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("first completion succeeds", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByUserID(ctx, alice.UserID).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, alice.UserID, e.UserID)
				e.ID = 5
				return nil
			})
		deps.repo.EXPECT().FindByID(ctx, int64(5)).Return(aliceEmployee(), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				assert.Equal(t, events.EventProfileCompleted, e.EventType)
				lifecycle := decodeLifecycle(t, e)
				assert.Equal(t, alice.UserID, lifecycle.ActorID)
				assert.Equal(t, string(employee.StateProfileComplete), lifecycle.ProfileState)
				return nil
			})

		resp, err := deps.service.CompleteProfile(ctx, alice, validRequest())

		assert.NoError(t, err)
		assert.Equal(t, alice.UserID, resp.UserID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("existing profile is rejected before insert", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByUserID(ctx, alice.UserID).Return(aliceEmployee(), nil)

		_, err := deps.service.CompleteProfile(ctx, alice, validRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrProfileAlreadyCompleted)
		assert.Equal(t, apperror.CodeAlreadyCompleted, apperror.ToHTTP(err).Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("lookup failure is internal", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByUserID(ctx, alice.UserID).Return(nil, errors.New("connection reset"))

		_, err := deps.service.CompleteProfile(ctx, alice, validRequest())

		assert.True(t, apperror.IsInternal(err))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("concurrent completion hits unique constraint", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByUserID(ctx, alice.UserID).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_user_id"})

		_, err := deps.service.CompleteProfile(ctx, alice, validRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrProfileAlreadyCompleted)
		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, 400, httpErr.Status)
		assert.Equal(t, apperror.CodeAlreadyCompleted, httpErr.Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByUserID(ctx, alice.UserID).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.repo.EXPECT().FindByID(ctx, gomock.Any()).Return(aliceEmployee(), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("outbox table missing"))

		_, err := deps.service.CompleteProfile(ctx, alice, validRequest())

		assert.True(t, apperror.IsInternal(err))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("anonymous identity is forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.CompleteProfile(ctx, rbac.Identity{Role: rbac.RoleEmployee}, validRequest())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}
