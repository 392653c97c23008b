// Package store defines the persistence contracts for decisions and
// decision groups. Implementations live under internal/platform and are
// interchangeable: services depend only on the interfaces declared here.
package store
