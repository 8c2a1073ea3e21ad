// Package messaging provides a broker-agnostic API for publishing messages.
//
// Business code depends on Publisher only, so the broker (Kafka, NATS, NSQ,
// or none at all) is a configuration choice. The credential engine only
// emits events; it never consumes them, so there is no consumer side here.
package messaging
