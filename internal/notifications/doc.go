// Package notifications delivers push notifications through ntfy.
// Without a configured topic every notification is a silent no-op, so
// callers never need to guard their calls.
package notifications
