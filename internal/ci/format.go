package ci

import (
	"strconv"

	"github.com/detent/glctl/internal/style"
)

// StatusStyle maps a job status to its display style.
func StatusStyle(status JobStatus) style.Style {
	switch status {
	case JobSuccess, JobRunning:
		return style.Good
	case JobCanceled, JobFailed:
		return style.Error
	case JobWaitingForResource, JobSkipped, JobPending:
		return style.Warning
	case JobCreated, JobManual, JobPreparing, JobScheduled:
		return style.Literal
	default:
		return style.None
	}
}

// Header formats the line printed before a job log.
func Header(job Job) style.Text {
	var txt style.Text
	txt.None("Log for job ").
		Literal(strconv.FormatInt(job.ID, 10)).
		None(": ").
		Stylize(StatusStyle(job.Status), string(job.Status))
	if job.WebURL != "" {
		txt.None(" (").Hint(job.WebURL).None(")")
	}
	txt.None("\n\n")
	return txt
}

// JobList formats jobs newest first, one per line.
func JobList(jobs []Job) style.Text {
	var txt style.Text
	for i := len(jobs) - 1; i >= 0; i-- {
		job := jobs[i]
		txt.None("- Job ").
			Literal(strconv.FormatInt(job.ID, 10)).
			None(" ").
			None(job.Name).
			None(" [").
			Hint(job.Stage).
			None("]: ").
			Stylize(StatusStyle(job.Status), string(job.Status)).
			None("\n")
	}
	if len(jobs) > 0 {
		txt.None("\n")
	}
	return txt
}
