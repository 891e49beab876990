// Package configurator implements the Easy Connect configurator core:
// the per-peer connection model and the protocol engines that drive an
// Enrollee through bootstrapping, authentication, configuration, and
// connection-status reporting.
//
// Two roles exist. The base Configurator is the Controller-side
// contract: it owns the connection table and the onboarding entry
// point, and leaves every 802.11 handler as a permissive no-op, since
// a Controller only ever speaks 1905.1. The ProxyAgent embeds the base
// and overrides the handlers to terminate 802.11 locally, bridging
// frames to and from the wired backhaul and reconciling the loosely
// ordered chirp/authentication messages with two caches.
//
// The engines are single-threaded by contract: the external dispatcher
// serializes all calls into one engine instance, so the connection
// table and caches carry no internal locking. Handlers never block on
// I/O; all transmission goes through the injected Capabilities.
package configurator
