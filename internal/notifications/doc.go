// Package notifications announces run milestones.
//
// The ntfy notifier publishes to the topic configured in config.toml and
// degrades to a no-op when no topic is set. The bell notifier rings the
// terminal when a run finishes, but only when stderr is a terminal. Callers
// depend only on the Service interface.
package notifications
