package memory

import (
	"encoding/json"
	"fmt"
	"mockbase/pkg/domain"
	"sort"
)

// messagesPayload is the bucket layout of the mensagens_ia side table.
type messagesPayload struct {
	Conversations []string                   `json:"conversations"`
	Messages      map[string][]domain.Record `json:"messages"`
}

// EncodeBuckets splits a snapshot into one JSON payload per table, the layout
// the SQL snapshot stores keep in their state(bucket, payload) table.
func EncodeBuckets(s Snapshot) (map[string][]byte, error) {
	out := make(map[string][]byte, len(s.Tables)+1)
	for table, rows := range s.Tables {
		if table == domain.TableMensagensIA {
			continue
		}
		if rows == nil {
			rows = []domain.Record{}
		}
		data, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", table, err)
		}
		out[table] = data
	}
	messages := s.Messages
	if messages == nil {
		messages = map[string][]domain.Record{}
	}
	data, err := json.Marshal(messagesPayload{Conversations: s.Conversations, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", domain.TableMensagensIA, err)
	}
	out[domain.TableMensagensIA] = data
	return out, nil
}

// DecodeBuckets rebuilds a snapshot from bucket payloads. Empty payloads are
// skipped.
func DecodeBuckets(buckets map[string][]byte) (Snapshot, error) {
	s := Snapshot{Tables: make(map[string][]domain.Record, len(buckets))}
	for bucket, payload := range buckets {
		if len(payload) == 0 {
			continue
		}
		if bucket == domain.TableMensagensIA {
			var p messagesPayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
			}
			s.Messages = p.Messages
			s.Conversations = p.Conversations
			continue
		}
		var rows []domain.Record
		if err := json.Unmarshal(payload, &rows); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
		s.Tables[bucket] = rows
	}
	return s, nil
}

// BucketNames returns the bucket keys of buckets in a stable order.
func BucketNames(buckets map[string][]byte) []string {
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
