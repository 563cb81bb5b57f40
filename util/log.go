package util

import "github.com/hauke96/sigolo/v2"

// LogFatalBug logs the message and exits. It is used for states that can only be reached through a bug in this
// project, e.g. a violated tree invariant.
func LogFatalBug(format string, args ...interface{}) {
	sigolo.Fatalb(1, format+" - This is a bug, please report it", args...)
}
