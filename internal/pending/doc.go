// Package pending records names that no resolution tier could match.
//
// Each miss is appended as one JSON line to a per-category file under the
// pending directory (stadiums.jsonl, teams_first.jsonl, teams_farm.jsonl,
// clubs.jsonl, or <category>.jsonl). Nothing is deduplicated or deleted at
// write time. When an operator curates a name, a marker is appended to
// resolved.jsonl; reports group the pending entries by cleaned name and
// subtract the resolved ones.
package pending
