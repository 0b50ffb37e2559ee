package alias

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/npb-scrape/internal/jsonl"
	"github.com/pfrederiksen/npb-scrape/internal/logger"
)

// Result is the outcome of writing one alias.
type Result string

const (
	ResultCreated  Result = "created"
	ResultUpdated  Result = "updated"
	ResultNoop     Result = "noop"
	ResultConflict Result = "conflict"
)

// AuditEntry is one line of the registration or promotion log.
type AuditEntry struct {
	Timestamp string            `json:"ts"`
	Action    string            `json:"action"`
	Batch     string            `json:"batch,omitempty"`
	Category  string            `json:"category"`
	Raw       string            `json:"raw"`
	Canonical string            `json:"canonical"`
	Previous  string            `json:"previous,omitempty"`
	Result    Result            `json:"result"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// PromotionReport describes one Promote call.
type PromotionReport struct {
	Batch   string       `json:"batch"`
	Entries []AuditEntry `json:"entries"`
}

// Registry is the single writer of both alias layers.
type Registry struct {
	store           *Store
	registrationLog string
	auditLog        string

	now     func() time.Time
	batchID func() string
}

// NewRegistry creates a Registry writing through store. Register outcomes go
// to registrationLog, promotions to auditLog.
func NewRegistry(store *Store, registrationLog, auditLog string) *Registry {
	return &Registry{
		store:           store,
		registrationLog: registrationLog,
		auditLog:        auditLog,
		now:             time.Now,
		batchID:         func() string { return uuid.NewString() },
	}
}

// Register stages raw -> canonical in the local layer.
//
// An identical existing mapping is a noop. A different existing mapping is a
// conflict unless overwrite is set. Every outcome is appended to the
// registration log; a failure to write that log is returned as an error.
func (r *Registry) Register(category Category, raw, canonical string, meta map[string]string, overwrite bool) (Result, error) {
	key := Canonicalize(raw)
	value := Canonicalize(canonical)
	if key == "" || value == "" {
		return "", fmt.Errorf("registering %s alias %q => %q: %w", category, raw, canonical, ErrEmptyName)
	}

	unlock, err := jsonl.Lock(r.store.LocalPath())
	if err != nil {
		return "", err
	}
	defer unlock()

	local, err := r.store.LoadLocal()
	if err != nil {
		return "", err
	}

	previous, exists := local.Get(string(category), key)

	var result Result
	switch {
	case exists && previous == value:
		result = ResultNoop
	case exists && !overwrite:
		result = ResultConflict
	default:
		local.Set(string(category), key, value)
		if err := r.store.writeLayer(r.store.LocalPath(), local); err != nil {
			return "", err
		}
		r.store.InvalidateCache()

		result = ResultCreated
		if exists {
			result = ResultUpdated
		}
	}

	entry := AuditEntry{
		Timestamp: r.now().Format(time.RFC3339),
		Action:    "register",
		Category:  string(category),
		Raw:       key,
		Canonical: value,
		Result:    result,
		Meta:      meta,
	}
	if exists && previous != value {
		entry.Previous = previous
	}
	if err := jsonl.Append(r.registrationLog, entry); err != nil {
		return "", fmt.Errorf("writing registration log: %w", err)
	}

	logger.IncrCounter("alias.register." + string(result))
	logger.Debug("Alias registered", logger.Fields{
		"category":  category,
		"raw":       key,
		"canonical": value,
		"result":    result,
	})

	return result, nil
}

// Promote folds every local entry into the base layer, local winning on
// collisions, and then empties the local layer.
//
// The base layer is written before anything else changes; if that write
// fails the local layer is left as it was. Each promoted pair is logged with
// the base value it replaced. Promoting an empty local layer writes nothing.
func (r *Registry) Promote() (*PromotionReport, error) {
	start := time.Now()

	unlockBase, err := jsonl.Lock(r.store.BasePath())
	if err != nil {
		return nil, err
	}
	defer unlockBase()

	unlockLocal, err := jsonl.Lock(r.store.LocalPath())
	if err != nil {
		return nil, err
	}
	defer unlockLocal()

	base, err := r.store.LoadBase()
	if err != nil {
		return nil, err
	}
	local, err := r.store.LoadLocal()
	if err != nil {
		return nil, err
	}

	report := &PromotionReport{Batch: r.batchID()}
	if local.Len() == 0 {
		return report, nil
	}

	ts := r.now().Format(time.RFC3339)
	for _, cat := range local.Categories() {
		for _, raw := range local.Keys(cat) {
			canonical := local[cat][raw]
			entry := AuditEntry{
				Timestamp: ts,
				Action:    "promote",
				Batch:     report.Batch,
				Category:  cat,
				Raw:       raw,
				Canonical: canonical,
				Result:    ResultCreated,
			}
			if previous, ok := base.Get(cat, raw); ok {
				entry.Previous = previous
				entry.Result = ResultUpdated
				if previous == canonical {
					entry.Result = ResultNoop
				}
			}
			report.Entries = append(report.Entries, entry)
		}
	}

	if err := r.store.writeLayer(r.store.BasePath(), Merge(base, local)); err != nil {
		return nil, fmt.Errorf("promoting into base layer: %w", err)
	}
	r.store.InvalidateCache()

	for _, entry := range report.Entries {
		if err := jsonl.Append(r.auditLog, entry); err != nil {
			return nil, fmt.Errorf("writing promotion log: %w", err)
		}
	}

	if err := r.store.writeLayer(r.store.LocalPath(), Map{}); err != nil {
		return nil, fmt.Errorf("clearing local layer: %w", err)
	}
	r.store.InvalidateCache()

	logger.RecordTiming("alias.promote", time.Since(start))
	logger.Info("Aliases promoted", logger.Fields{
		"batch": report.Batch,
		"count": len(report.Entries),
	})

	return report, nil
}
