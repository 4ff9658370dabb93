package job

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	JobAllKey   = "jobs:all"
	JobCacheTTL = 30 * time.Minute
)

// DefaultTitles seeds an empty catalog.
var DefaultTitles = []string{
	"Software Engineer",
	"Product Manager",
	"Designer",
	"HR Specialist",
	"Accountant",
	"Sales Representative",
}

type Service interface {
	List(ctx context.Context, id rbac.Identity) ([]JobResponse, error)
	Seed(ctx context.Context, titles []string) (int64, error)
}

type service struct {
	repo   Repository
	policy rbac.Service
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

// NewService builds the catalog service. rdb may be nil; the catalog is then
// read from the database on every call.
func NewService(repo Repository, policy rbac.Service, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("job.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("job.service")
	}
	return &service{repo: repo, policy: policy, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) List(ctx context.Context, id rbac.Identity) ([]JobResponse, error) {
	if err := s.policy.Authorize(id, rbac.ResourceJob, rbac.ActionList); err != nil {
		return nil, err
	}

	l := contextutil.GetLogger(ctx, s.logger)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, JobAllKey).Result()
		if err == nil {
			var resp []JobResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
			l.Warn("job cache entry unreadable", zap.String("key", JobAllKey))
		} else if !errors.Is(err, redis.Nil) {
			l.Warn("job cache read failed", zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(JobAllKey, func() (interface{}, error) {
		jobs, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(jobs)

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, JobAllKey, data, JobCacheTTL).Err(); err != nil {
					l.Warn("job cache write failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		l.Error("job list failed", zap.Error(err))
		return nil, apperror.ErrInternal.WithErr(err)
	}

	return v.([]JobResponse), nil
}

func (s *service) Seed(ctx context.Context, titles []string) (int64, error) {
	added, err := s.repo.EnsureTitles(ctx, titles)
	if err != nil {
		return 0, err
	}

	if added > 0 && s.rdb != nil {
		if err := s.rdb.Del(ctx, JobAllKey).Err(); err != nil {
			s.logger.Error("failed to invalidate job cache", zap.String("key", JobAllKey), zap.Error(err))
		}
	}

	s.logger.Info("job catalog seeded", zap.Int64("added", added))
	return added, nil
}

func mapToResponse(j Job) JobResponse {
	return JobResponse{ID: j.ID, Title: j.Title}
}

func mapToListResponse(jobs []Job) []JobResponse {
	res := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		res[i] = mapToResponse(j)
	}
	return res
}
