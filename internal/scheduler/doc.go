// Package scheduler owns the single pending trigger slot.
//
// A Scheduler persists the slot through a trigger store, programs the OS wake
// alarm for exact delivery and runs one timer goroutine that fires the slot at
// most once. Scheduling replaces the previous trigger; past fire times fire as
// soon as the loop observes them.
package scheduler
