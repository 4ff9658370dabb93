package job

type JobResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
