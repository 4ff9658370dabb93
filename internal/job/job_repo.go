package job

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=job_repo.go -destination=mock/job_repo_mock.go -package=mock
type Repository interface {
	FindAll(ctx context.Context) ([]Job, error)
	// EnsureTitles inserts the titles that are not present yet and reports how many were added.
	EnsureTitles(ctx context.Context, titles []string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll(ctx context.Context) ([]Job, error) {
	var jobs []Job
	err := r.db.WithContext(ctx).Order("id").Find(&jobs).Error
	return jobs, err
}

func (r *repository) EnsureTitles(ctx context.Context, titles []string) (int64, error) {
	if len(titles) == 0 {
		return 0, nil
	}

	jobs := make([]Job, 0, len(titles))
	for _, t := range titles {
		jobs = append(jobs, Job{Title: t})
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
		Create(&jobs)
	return res.RowsAffected, res.Error
}
