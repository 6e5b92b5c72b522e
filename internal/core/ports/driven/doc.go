// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Commands depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - ConfigStore: Persisted settings (TOML file)
//   - Notifier: Chat services that accept a plain text message (Slack, Chatwork)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
