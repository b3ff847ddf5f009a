//nolint:revive // types is a common Go package naming convention
package types

// ResetCause identifies why the device last rebooted.
// Values mirror the platform's reset-reason register.
type ResetCause string

// Reset cause constants.
const (
	ResetPowerOn           ResetCause = "power_on"
	ResetSoftware          ResetCause = "software"
	ResetDeepSleepWake     ResetCause = "deep_sleep_wake"
	ResetPanic             ResetCause = "panic"
	ResetInterruptWatchdog ResetCause = "interrupt_watchdog"
	ResetTaskWatchdog      ResetCause = "task_watchdog"
	ResetWatchdog          ResetCause = "watchdog"
	ResetBrownout          ResetCause = "brownout"
	ResetExternal          ResetCause = "external"
	ResetUnknown           ResetCause = "unknown"
)

// IsAbnormal returns true if this cause indicates a crash that the platform
// captures a post-mortem image for. Unknown counts as abnormal: a corrupted
// reason register is cheaper to re-check on the next boot than to ignore.
func (c ResetCause) IsAbnormal() bool {
	switch c {
	case ResetPanic, ResetInterruptWatchdog, ResetTaskWatchdog, ResetWatchdog, ResetUnknown:
		return true
	default:
		return false
	}
}
