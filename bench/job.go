package bench

import (
	"runtime/debug"

	"github.com/kbukum/benchhttp/errors"
)

// Default job IDs.
const (
	JobServerForce      = "ServerForce"
	JobServer           = "Server"
	JobWorkstation      = "Workstation"
	JobWorkstationForce = "WorkstationForce"
)

// GC targets used by the default jobs. The "server" profile trades heap for
// fewer collections.
const (
	GCPercentServer      = 400
	GCPercentWorkstation = 100
)

// Job is a garbage-collector configuration a strategy is measured under.
type Job struct {
	ID string `yaml:"id" mapstructure:"id" validate:"required"`
	// GCPercent is applied with debug.SetGCPercent for the run. Zero leaves
	// the process setting unchanged; -1 disables collection.
	GCPercent int `yaml:"gc_percent" mapstructure:"gc_percent" validate:"gte=-1"`
	// ForceGC runs a full collection before every measured iteration,
	// outside the timed section.
	ForceGC bool `yaml:"force_gc" mapstructure:"force_gc"`
}

// DefaultJobs returns the four standard jobs.
func DefaultJobs() []Job {
	return []Job{
		{ID: JobServerForce, GCPercent: GCPercentServer, ForceGC: true},
		{ID: JobServer, GCPercent: GCPercentServer},
		{ID: JobWorkstation, GCPercent: GCPercentWorkstation},
		{ID: JobWorkstationForce, GCPercent: GCPercentWorkstation, ForceGC: true},
	}
}

// apply installs the job's GC target and returns a func restoring the
// previous one.
func (j Job) apply() func() {
	if j.GCPercent == 0 {
		return func() {}
	}
	prev := debug.SetGCPercent(j.GCPercent)
	return func() { debug.SetGCPercent(prev) }
}

// SelectJobs returns the jobs whose IDs are listed, in that order. An empty
// ids selects all jobs.
func SelectJobs(jobs []Job, ids []string) ([]Job, error) {
	if len(ids) == 0 {
		return jobs, nil
	}
	selected := make([]Job, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, j := range jobs {
			if j.ID == id {
				selected = append(selected, j)
				found = true
				break
			}
		}
		if !found {
			return nil, errors.NotFound("job", id)
		}
	}
	return selected, nil
}
