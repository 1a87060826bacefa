package ci

// JobStatus represents the status of a GitLab CI job.
type JobStatus string

// JobStatus values reported by GitLab for a job.
const (
	JobCreated            JobStatus = "created"
	JobPending            JobStatus = "pending"
	JobRunning            JobStatus = "running"
	JobSuccess            JobStatus = "success"
	JobFailed             JobStatus = "failed"
	JobCanceled           JobStatus = "canceled"
	JobSkipped            JobStatus = "skipped"
	JobManual             JobStatus = "manual"
	JobScheduled          JobStatus = "scheduled"
	JobPreparing          JobStatus = "preparing"
	JobWaitingForResource JobStatus = "waiting_for_resource"
)

// Statuses lists every known job status.
var Statuses = []JobStatus{
	JobCreated, JobPending, JobRunning, JobSuccess, JobFailed, JobCanceled,
	JobSkipped, JobManual, JobScheduled, JobPreparing, JobWaitingForResource,
}

// Valid reports whether s is a status GitLab reports.
func (s JobStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Job identifies a CI job whose log is rendered.
type Job struct {
	ID     int64     // GitLab job id
	Name   string    // Job name from .gitlab-ci.yml
	Stage  string    // Pipeline stage
	Status JobStatus // Last known status
	WebURL string    // Link to the job page
}
