// Package redis provides Redis implementations of the transport ports.
//
// Destinations are streams keyed "<prefix><kind>:<name>", rules live in one
// hash per topic subscription, and inbound paragraphs are read from a stream
// through a consumer group.
package redis
