// Package memory provides the in-memory record store backing the mock client:
// one ordered slice of records per table plus the per-conversation message
// side table.
package memory

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"mockbase/pkg/domain"
	"sort"
	"sync"
)

const (
	idLength   = 9
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// maxIDAttempts bounds regeneration when a token collides.
	maxIDAttempts = 16
)

// Snapshot captures a point-in-time clone of the store state. Tables holds
// every flat table; Messages holds the mensagens_ia side table keyed by
// conversation id.
type Snapshot struct {
	Tables        map[string][]domain.Record `json:"tables"`
	Messages      map[string][]domain.Record `json:"messages,omitempty"`
	Conversations []string                   `json:"conversations,omitempty"`
}

// Len returns the number of records held across tables and conversations.
func (s Snapshot) Len() int {
	n := 0
	for _, rows := range s.Tables {
		n += len(rows)
	}
	for _, rows := range s.Messages {
		n += len(rows)
	}
	return n
}

type memoryState struct {
	tables map[string][]domain.Record
	// messages maps conversation id to its ordered messages; order keeps the
	// conversation creation order so scans are deterministic.
	messages map[string][]domain.Record
	order    []string
}

func newMemoryState() memoryState {
	state := memoryState{
		tables:   make(map[string][]domain.Record, len(domain.StandardTables)),
		messages: make(map[string][]domain.Record),
	}
	for _, table := range domain.StandardTables {
		if table == domain.TableMensagensIA {
			continue
		}
		state.tables[table] = []domain.Record{}
	}
	return state
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		tables:   make(map[string][]domain.Record, len(s.tables)),
		messages: make(map[string][]domain.Record, len(s.messages)),
		order:    append([]string(nil), s.order...),
	}
	for table, rows := range s.tables {
		out.tables[table] = domain.CloneRecords(rows)
	}
	for conv, rows := range s.messages {
		out.messages[conv] = domain.CloneRecords(rows)
	}
	return out
}

func (s memoryState) hasTable(table string) bool {
	if table == domain.TableMensagensIA {
		return true
	}
	_, ok := s.tables[table]
	return ok
}

// rows returns the live rows of table; messages are flattened in conversation order.
func (s memoryState) rows(table string) []domain.Record {
	if table != domain.TableMensagensIA {
		return s.tables[table]
	}
	var out []domain.Record
	for _, conv := range s.order {
		out = append(out, s.messages[conv]...)
	}
	return out
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	c := state.clone()
	return Snapshot{Tables: c.tables, Messages: c.messages, Conversations: c.order}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for table, rows := range s.Tables {
		if table == domain.TableMensagensIA {
			for _, r := range rows {
				state.appendMessage(r.Clone())
			}
			continue
		}
		state.tables[table] = domain.CloneRecords(rows)
		if state.tables[table] == nil {
			state.tables[table] = []domain.Record{}
		}
	}
	seen := make(map[string]bool, len(s.Conversations))
	for _, conv := range s.Conversations {
		if rows, ok := s.Messages[conv]; ok && !seen[conv] {
			seen[conv] = true
			state.addConversation(conv, rows)
		}
	}
	rest := make([]string, 0, len(s.Messages))
	for conv := range s.Messages {
		if !seen[conv] {
			rest = append(rest, conv)
		}
	}
	sort.Strings(rest)
	for _, conv := range rest {
		state.addConversation(conv, s.Messages[conv])
	}
	return state
}

func (s *memoryState) addConversation(conv string, rows []domain.Record) {
	if _, ok := s.messages[conv]; !ok {
		s.order = append(s.order, conv)
	}
	s.messages[conv] = append(s.messages[conv], domain.CloneRecords(rows)...)
}

func (s *memoryState) appendMessage(r domain.Record) {
	conv := conversationOf(r)
	if _, ok := s.messages[conv]; !ok {
		s.order = append(s.order, conv)
		s.messages[conv] = []domain.Record{}
	}
	s.messages[conv] = append(s.messages[conv], r)
}

func conversationOf(r domain.Record) string {
	switch v := r[domain.ConversationField].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Store is the in-memory record store. All state is guarded by mu; reads hand
// out clones and mutations run against a private copy that is swapped in on
// success.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	seed  Snapshot
	idFn  func() (string, error)
}

// NewStore constructs a store holding a copy of seed. Standard tables missing
// from seed start empty.
func NewStore(seed Snapshot) *Store {
	s := &Store{
		seed: snapshotFromMemoryState(memoryStateFromSnapshot(seed)),
		idFn: newID,
	}
	s.state = memoryStateFromSnapshot(s.seed)
	return s
}

// newID returns a random base-36 token.
func newID() (string, error) {
	b := make([]byte, idLength)
	base := big.NewInt(int64(len(idAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		b[i] = idAlphabet[n.Int64()]
	}
	return string(b), nil
}

// Reset discards every mutation and restores the seed snapshot.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(s.seed)
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot. The seed
// used by Reset is left untouched.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// HasTable reports whether table exists.
func (s *Store) HasTable(table string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.hasTable(table)
}

// Tables lists the known tables sorted by name.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.state.tables)+1)
	for table := range s.state.tables {
		out = append(out, table)
	}
	out = append(out, domain.TableMensagensIA)
	sort.Strings(out)
	return out
}

// Scan returns a copy of every record in table, in insertion order.
func (s *Store) Scan(table string) ([]domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.hasTable(table) {
		return nil, false
	}
	return domain.CloneRecords(s.state.rows(table)), true
}

// Messages returns a copy of the messages of one conversation, in insertion
// order, or nil when the conversation has none.
func (s *Store) Messages(conversationID string) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneRecords(s.state.messages[conversationID])
}

// Counts returns the number of records per table.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.state.tables)+1)
	for table, rows := range s.state.tables {
		out[table] = len(rows)
	}
	n := 0
	for _, rows := range s.state.messages {
		n += len(rows)
	}
	out[domain.TableMensagensIA] = n
	return out
}

// Transaction is a mutation set applied to a private copy of the store state.
type Transaction struct {
	store   *Store
	state   memoryState
	changes []domain.Change
}

// RunInTransaction executes fn against a copy of the store state under the
// write lock. The copy replaces the live state only when fn returns nil, so a
// failed batch leaves every table untouched.
func (s *Store) RunInTransaction(_ context.Context, fn func(tx *Transaction) error) ([]domain.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{store: s, state: s.state.clone()}
	if err := fn(tx); err != nil {
		return nil, err
	}
	s.state = tx.state
	return tx.changes, nil
}

func (tx *Transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// Changes returns the changes recorded so far.
func (tx *Transaction) Changes() []domain.Change {
	return append([]domain.Change(nil), tx.changes...)
}

// Scan returns a copy of table as seen by the transaction.
func (tx *Transaction) Scan(table string) ([]domain.Record, error) {
	if !tx.state.hasTable(table) {
		return nil, domain.ErrUndefinedTable(table)
	}
	return domain.CloneRecords(tx.state.rows(table)), nil
}

// Insert appends records to table, generating ids for records without one,
// and returns copies of the stored records. A caller-supplied id that already
// exists yields a unique-violation error.
func (tx *Transaction) Insert(table string, records []domain.Record) ([]domain.Record, error) {
	if !tx.state.hasTable(table) {
		return nil, domain.ErrUndefinedTable(table)
	}
	taken := make(map[string]bool)
	for _, r := range tx.state.rows(table) {
		taken[r.ID()] = true
	}
	out := make([]domain.Record, 0, len(records))
	for _, in := range records {
		r := in.Clone()
		if r == nil {
			r = domain.Record{}
		}
		id := r.ID()
		if id == "" {
			generated, err := tx.uniqueID(taken)
			if err != nil {
				return nil, err
			}
			id = generated
			r[domain.IDField] = id
		} else if taken[id] {
			return nil, domain.ErrDuplicateID(table, id)
		}
		taken[id] = true
		if table == domain.TableMensagensIA {
			tx.state.appendMessage(r)
		} else {
			tx.state.tables[table] = append(tx.state.tables[table], r)
		}
		tx.recordChange(domain.Change{Table: table, Action: domain.ActionInsert, After: r.Clone()})
		out = append(out, r.Clone())
	}
	return out, nil
}

func (tx *Transaction) uniqueID(taken map[string]bool) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := tx.store.idFn()
		if err != nil {
			return "", err
		}
		if !taken[id] {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate id: %d attempts collided", maxIDAttempts)
}

// Update shallow-merges patch into every record of table accepted by match and
// returns the merged records. Ids are never changed.
func (tx *Transaction) Update(table string, match func(domain.Record) bool, patch domain.Record) ([]domain.Record, error) {
	if !tx.state.hasTable(table) {
		return nil, domain.ErrUndefinedTable(table)
	}
	var out []domain.Record
	apply := func(rows []domain.Record) {
		for i, r := range rows {
			if !match(r) {
				continue
			}
			merged := r.Merge(patch)
			rows[i] = merged
			tx.recordChange(domain.Change{Table: table, Action: domain.ActionUpdate, Before: r, After: merged.Clone()})
			out = append(out, merged.Clone())
		}
	}
	if table == domain.TableMensagensIA {
		out = tx.updateMessages(match, patch)
	} else {
		apply(tx.state.tables[table])
	}
	if out == nil {
		out = []domain.Record{}
	}
	return out, nil
}

// updateMessages merges patch into matching messages. A message whose
// conversacaoId changes moves to the end of its new conversation's list.
func (tx *Transaction) updateMessages(match func(domain.Record) bool, patch domain.Record) []domain.Record {
	var out, moved []domain.Record
	for _, conv := range append([]string(nil), tx.state.order...) {
		rows := tx.state.messages[conv]
		kept := make([]domain.Record, 0, len(rows))
		for _, r := range rows {
			if !match(r) {
				kept = append(kept, r)
				continue
			}
			merged := r.Merge(patch)
			tx.recordChange(domain.Change{Table: domain.TableMensagensIA, Action: domain.ActionUpdate, Before: r, After: merged.Clone()})
			out = append(out, merged.Clone())
			if conversationOf(merged) != conv {
				moved = append(moved, merged)
				continue
			}
			kept = append(kept, merged)
		}
		tx.state.messages[conv] = kept
	}
	for _, r := range moved {
		tx.state.appendMessage(r)
	}
	return out
}

// Delete removes every record of table accepted by match, keeping the
// remaining records in order, and returns the removed records.
func (tx *Transaction) Delete(table string, match func(domain.Record) bool) ([]domain.Record, error) {
	if !tx.state.hasTable(table) {
		return nil, domain.ErrUndefinedTable(table)
	}
	removed := []domain.Record{}
	keep := func(rows []domain.Record) []domain.Record {
		kept := make([]domain.Record, 0, len(rows))
		for _, r := range rows {
			if match(r) {
				tx.recordChange(domain.Change{Table: table, Action: domain.ActionDelete, Before: r})
				removed = append(removed, r.Clone())
				continue
			}
			kept = append(kept, r)
		}
		return kept
	}
	if table == domain.TableMensagensIA {
		for _, conv := range tx.state.order {
			tx.state.messages[conv] = keep(tx.state.messages[conv])
		}
	} else {
		tx.state.tables[table] = keep(tx.state.tables[table])
	}
	return removed, nil
}
