// Package schedulingengine implements the Event Scheduling & Consensus
// Engine inside the social-coordination context.
//
// The module owns the scheduling lifecycle of a circle event: proposing
// candidate times, the one-vote-per-member ledger, the ranked tally, and the
// draft -> locked/finalized transition that fixes the authoritative window.
// It keeps business rules in application/domain layers and isolates
// infrastructure concerns behind ports and adapters.
package schedulingengine
