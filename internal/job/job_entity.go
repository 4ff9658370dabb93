package job

type Job struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Title string `gorm:"type:varchar(255);not null;uniqueIndex:uq_jobs_title"`
}
