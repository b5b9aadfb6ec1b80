// Package rsvpservice tracks attendance responses for scheduled circle
// events inside the social-coordination context.
//
// The module consumes the scheduling engine's locked/finalized events to open
// an rsvp window per event, then records going/maybe/declined responses with
// one row per user. It keeps business rules in application/domain layers and
// isolates infrastructure concerns behind ports and adapters.
package rsvpservice
