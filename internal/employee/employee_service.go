package employee

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"go-employee-mgmt/internal/auth"
	employeeerrors "go-employee-mgmt/internal/employee/errors"
	"go-employee-mgmt/internal/events"
	"go-employee-mgmt/internal/messaging/kafka"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/contextutil"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, id rbac.Identity) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id rbac.Identity, employeeID int64) (EmployeeResponse, error)
	GetByOwner(ctx context.Context, id rbac.Identity) (EmployeeResponse, error)
	Create(ctx context.Context, id rbac.Identity, req EmployeeRequest) (CreateEmployeeResponse, error)
	Update(ctx context.Context, id rbac.Identity, employeeID int64, req EmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id rbac.Identity, employeeID int64) error
	CompleteProfile(ctx context.Context, id rbac.Identity, req EmployeeRequest) (EmployeeResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	users      auth.Repository
	policy     rbac.Service
	outbox     kafka.OutboxRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewService wires the employee directory. outbox may be nil, in which case
// lifecycle events are not recorded.
func NewService(
	db *sql.DB,
	repo Repository,
	users auth.Repository,
	policy rbac.Service,
	outbox kafka.OutboxRepository,
	bcryptCost int,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	if bcryptCost < bcrypt.DefaultCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &service{
		db:         db,
		repo:       repo,
		users:      users,
		policy:     policy,
		outbox:     outbox,
		bcryptCost: bcryptCost,
		logger:     l,
	}
}

func (s *service) List(ctx context.Context, id rbac.Identity) ([]EmployeeResponse, error) {
	if err := s.policy.Authorize(id, rbac.ResourceEmployee, rbac.ActionList); err != nil {
		return nil, err
	}

	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetByID(ctx context.Context, id rbac.Identity, employeeID int64) (EmployeeResponse, error) {
	// role first, then existence, then ownership
	if err := s.policy.Authorize(id, rbac.ResourceEmployee, rbac.ActionRead); err != nil {
		return EmployeeResponse{}, err
	}

	empl, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.policy.AuthorizeOwner(id, rbac.ResourceEmployee, rbac.ActionRead, empl.UserID); err != nil {
		contextutil.GetLogger(ctx, s.logger).Info("employee read denied",
			zap.Int64("employee_id", employeeID),
			zap.Int64("owner_id", empl.UserID),
		)
		return EmployeeResponse{}, err
	}

	return mapToResponse(*empl), nil
}

func (s *service) GetByOwner(ctx context.Context, id rbac.Identity) (EmployeeResponse, error) {
	if err := s.policy.AuthorizeOwner(id, rbac.ResourceEmployee, rbac.ActionRead, id.UserID); err != nil {
		return EmployeeResponse{}, err
	}

	empl, err := s.repo.FindByUserID(ctx, id.UserID)
	if err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, employeeerrors.ErrEmployeeNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrProfileNotCompleted
		}
		return EmployeeResponse{}, mapped
	}

	return mapToResponse(*empl), nil
}

func (s *service) Create(ctx context.Context, id rbac.Identity, req EmployeeRequest) (CreateEmployeeResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if err := s.policy.Authorize(id, rbac.ResourceEmployee, rbac.ActionCreate); err != nil {
		return CreateEmployeeResponse{}, err
	}

	empl, err := buildEmployee(req)
	if err != nil {
		return CreateEmployeeResponse{}, err
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		l.Error("create employee temp password failed", zap.Error(err))
		return CreateEmployeeResponse{}, apperror.ErrInternal.WithErr(err)
	}
	hashed, err := auth.HashPassword(tempPassword, s.bcryptCost)
	if err != nil {
		l.Error("create employee hash password failed", zap.Error(err))
		return CreateEmployeeResponse{}, apperror.ErrInternal.WithErr(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("create employee begin tx failed", zap.Error(err))
		return CreateEmployeeResponse{}, apperror.ErrInternal.WithErr(err)
	}
	defer tx.Rollback()

	user := &auth.User{
		Email:    auth.NormalizeEmail(req.Email),
		Password: hashed,
		Role:     rbac.RoleEmployee,
	}
	if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
		l.Warn("create employee user persist failed", zap.Error(err))
		return CreateEmployeeResponse{}, auth.MapRepositoryError(err)
	}

	qtx := s.repo.WithTx(tx)
	empl.UserID = user.ID
	if err := qtx.Create(ctx, empl); err != nil {
		l.Warn("create employee persist failed", zap.Error(err))
		return CreateEmployeeResponse{}, mapRepositoryError(err)
	}

	saved, err := qtx.FindByID(ctx, empl.ID)
	if err != nil {
		l.Error("create employee reload failed", zap.Int64("employee_id", empl.ID), zap.Error(err))
		return CreateEmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.recordTransition(ctx, tx, TransitionAdminCreate, StateRegistered, saved, id); err != nil {
		return CreateEmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error("create employee commit failed", zap.Error(err))
		return CreateEmployeeResponse{}, apperror.ErrInternal.WithErr(err)
	}

	l.Info("create employee success",
		zap.Int64("employee_id", saved.ID),
		zap.Int64("user_id", saved.UserID),
	)

	return CreateEmployeeResponse{
		Employee:     mapToResponse(*saved),
		TempPassword: tempPassword,
	}, nil
}

func (s *service) Update(ctx context.Context, id rbac.Identity, employeeID int64, req EmployeeRequest) (EmployeeResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if err := s.policy.Authorize(id, rbac.ResourceEmployee, rbac.ActionUpdate); err != nil {
		return EmployeeResponse{}, err
	}

	changes, err := buildEmployee(req)
	if err != nil {
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, apperror.ErrInternal.WithErr(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByID(ctx, employeeID)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	empl.FirstName = changes.FirstName
	empl.LastName = changes.LastName
	empl.Email = changes.Email
	empl.Phone = changes.Phone
	empl.Address = changes.Address
	empl.BirthDate = changes.BirthDate
	empl.StartDate = changes.StartDate
	empl.JobID = changes.JobID

	if err := qtx.Update(ctx, empl); err != nil {
		l.Warn("update employee persist failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	saved, err := qtx.FindByID(ctx, employeeID)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.recordTransition(ctx, tx, TransitionUpdate, ProfileStateOf(saved), saved, id); err != nil {
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, apperror.ErrInternal.WithErr(err)
	}

	l.Info("update employee success", zap.Int64("employee_id", employeeID))
	return mapToResponse(*saved), nil
}

func (s *service) Delete(ctx context.Context, id rbac.Identity, employeeID int64) error {
	l := contextutil.GetLogger(ctx, s.logger)

	if err := s.policy.Authorize(id, rbac.ResourceEmployee, rbac.ActionDelete); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("delete employee begin tx failed", zap.Error(err))
		return apperror.ErrInternal.WithErr(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByID(ctx, employeeID)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := qtx.Delete(ctx, employeeID); err != nil {
		l.Error("delete employee failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := s.recordTransition(ctx, tx, TransitionDelete, ProfileStateOf(empl), empl, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error("delete employee commit failed", zap.Error(err))
		return apperror.ErrInternal.WithErr(err)
	}

	l.Info("delete employee success",
		zap.Int64("employee_id", employeeID),
		zap.Int64("user_id", empl.UserID),
	)
	return nil
}

func (s *service) CompleteProfile(ctx context.Context, id rbac.Identity, req EmployeeRequest) (EmployeeResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if err := s.policy.AuthorizeOwner(id, rbac.ResourceEmployee, rbac.ActionCompleteProfile, id.UserID); err != nil {
		return EmployeeResponse{}, err
	}

	empl, err := buildEmployee(req)
	if err != nil {
		return EmployeeResponse{}, err
	}
	empl.UserID = id.UserID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("complete profile begin tx failed", zap.Error(err))
		return EmployeeResponse{}, apperror.ErrInternal.WithErr(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	existing, err := qtx.FindByUserID(ctx, id.UserID)
	if err != nil {
		if mapped := mapRepositoryError(err); !errors.Is(mapped, employeeerrors.ErrEmployeeNotFound) {
			l.Error("complete profile lookup failed", zap.Error(err))
			return EmployeeResponse{}, mapped
		}
	}
	from := ProfileStateOf(existing)
	if _, err := from.Next(TransitionCompleteProfile); err != nil {
		l.Info("complete profile rejected, already completed", zap.Int64("user_id", id.UserID))
		return EmployeeResponse{}, err
	}

	// uq_employees_user_id still rejects a concurrent completion
	if err := qtx.Create(ctx, empl); err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, employeeerrors.ErrProfileAlreadyCompleted) {
			l.Info("complete profile rejected, already completed", zap.Int64("user_id", id.UserID))
		} else {
			l.Warn("complete profile persist failed", zap.Error(err))
		}
		return EmployeeResponse{}, mapped
	}

	saved, err := qtx.FindByID(ctx, empl.ID)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.recordTransition(ctx, tx, TransitionCompleteProfile, from, saved, id); err != nil {
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error("complete profile commit failed", zap.Error(err))
		return EmployeeResponse{}, apperror.ErrInternal.WithErr(err)
	}

	l.Info("complete profile success",
		zap.Int64("employee_id", saved.ID),
		zap.Int64("user_id", id.UserID),
	)
	return mapToResponse(*saved), nil
}

// recordTransition applies t to the profile state and writes the lifecycle
// event into the outbox inside tx.
func (s *service) recordTransition(
	ctx context.Context,
	tx *sql.Tx,
	t Transition,
	from ProfileState,
	empl *Employee,
	actor rbac.Identity,
) error {
	to, err := from.Next(t)
	if err != nil {
		return err
	}

	contextutil.GetLogger(ctx, s.logger).Debug("profile transition",
		zap.String("transition", string(t)),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int64("employee_id", empl.ID),
	)

	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event, err := kafka.NewPendingEvent(
		rid,
		events.AggregateEmployee,
		strconv.FormatInt(empl.ID, 10),
		t.EventType(),
		events.EmployeeLifecycleTopic,
		events.EmployeeLifecycleEvent{
			EventType:    t.EventType(),
			ProfileState: string(to),
			RequestID:    rid,
			EmployeeID:   empl.ID,
			UserID:       empl.UserID,
			ActorID:      actor.UserID,
			JobID:        empl.JobID,
			OccurredAt:   time.Now().UTC(),
		},
	)
	if err != nil {
		return apperror.ErrInternal.WithErr(err)
	}

	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("outbox persist failed",
			zap.String("event_type", event.EventType),
			zap.Int64("employee_id", empl.ID),
			zap.Error(err),
		)
		return apperror.ErrInternal.WithErr(err)
	}
	return nil
}

func buildEmployee(req EmployeeRequest) (*Employee, error) {
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, err
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}

	return &Employee{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     auth.NormalizeEmail(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		BirthDate: birthDate,
		StartDate: startDate,
		JobID:     req.JobID,
	}, nil
}

func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, employeeerrors.ErrInvalidDate
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func mapToResponse(empl Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:        empl.ID,
		FirstName: empl.FirstName,
		LastName:  empl.LastName,
		Email:     empl.Email,
		Phone:     empl.Phone,
		Address:   empl.Address,
		BirthDate: formatDate(empl.BirthDate),
		StartDate: formatDate(empl.StartDate),
		JobID:     empl.JobID,
		UserID:    empl.UserID,
	}
	if empl.Job != nil {
		title := empl.Job.Title
		resp.JobTitle = &title
	}
	if empl.User != nil {
		resp.UserEmail = empl.User.Email
	}
	return resp
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
