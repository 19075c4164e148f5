package scheduler

// ExportedExecuteJob exposes the private executeJob method for external tests.
func (s *Scheduler) ExportedExecuteJob(name string) {
	s.executeJob(name)
}
