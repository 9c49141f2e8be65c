// Package jobs orchestrates asynchronous composition work. Submission is
// synchronous and cheap; each job then runs on its own goroutine through
// queued, downloading, processing, and a terminal completed or failed state.
package jobs
