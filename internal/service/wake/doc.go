// Package wake arms the real-time clock wake alarm so a suspended machine
// resumes in time to deliver a pending trigger.
package wake
