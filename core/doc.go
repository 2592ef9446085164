// Package core contains the Exolix client: configuration, the request
// executor with its cancellation composer, error classification and the
// endpoint catalog. Transport, storage and queue adapters depend on this
// package; core must not depend on them.
package core
