// internal/events/print_job.go
package events

import "time"

// PrintJob summarises one dispatched job for the event feed
type PrintJob struct {
	JobID     string
	Kind      string
	Role      string
	Transport string
	Success   bool
	Error     string
	Bytes     int
	Duration  time.Duration
}

// Event converts the job into a print_job event
func (j PrintJob) Event() Event {
	data := map[string]interface{}{
		"jobId":      j.JobID,
		"kind":       j.Kind,
		"role":       j.Role,
		"transport":  j.Transport,
		"success":    j.Success,
		"bytes":      j.Bytes,
		"durationMs": j.Duration.Milliseconds(),
	}
	if j.Error != "" {
		data["error"] = j.Error
	}
	return Event{
		Type:   TypePrintJob,
		Source: "print-service",
		Data:   data,
	}
}
