// Package notify delivers session events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set. The
// per-event toggles in the notifications config section suppress individual
// events without disabling the service.
//
// Extend this package if you need alternative transports; session code
// depends only on the small Service interface.
package notify
