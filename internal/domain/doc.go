// Package domain contains the core business entities, value objects, and
// domain logic of the scheduling engine: review items, their scheduling
// state, and the append-only review event log. It is independent of any
// specific infrastructure or delivery mechanism.
package domain
