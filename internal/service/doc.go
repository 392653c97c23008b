// Package service provides the application services behind the HTTP API:
// decision and group management, and the analytics snapshot cache.
//
// Services own business rules that span stores, emit change events after
// successful mutations, and translate store errors into the sentinel errors
// declared in errors.go.
package service
