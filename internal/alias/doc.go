// Package alias maps loosely formatted team, stadium and club names to the
// canonical names used by the reference dictionary.
//
// Aliases live in two JSON files: an authoritative base layer and a local
// staging layer. The Store merges them with local-over-base precedence and
// caches the result until InvalidateCache is called. The Normalizer applies
// whitespace and zero-width cleanup to a raw name and looks it up per
// category. The Registry is the only writer: Register stages a mapping in the
// local layer and Promote folds the local layer into the base layer, both
// with an append-only audit trail.
package alias
