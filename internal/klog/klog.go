// Package klog gives every kernel subsystem a structured, tagged
// logger instead of ad-hoc fmt.Printf calls, the way a hosted sentry-
// style kernel (gVisor, which this module's domain stack borrows
// logrus from) keeps boot, audit, and fault logging structured.
package klog

import "github.com/sirupsen/logrus"

// For returns a logger entry tagged with the owning subsystem, e.g.
// klog.For("kasan").WithField("addr", addr).Warn("heap overflow").
func For(subsystem string) *logrus.Entry {
	return logrus.WithField("subsystem", subsystem)
}
