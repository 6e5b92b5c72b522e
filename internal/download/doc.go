// Package download detects completion of a file download produced by another
// process, typically a browser driven over WebDriver.
//
// A Waiter records the start time, runs a trigger (the click that starts the
// download) and then polls the watched directory every 100ms for the newest
// matching file whose modification time is strictly after the start. Files
// still carrying a browser's partial-download suffix are never reported.
//
// # States
//
//	NotStarted -> Triggered -> Polling -> Matched | TimedOut | TriggerFailed
//	Polling -> Cancelled (ctx done)
package download
