package memory

import (
	"mockbase/pkg/domain"
	"testing"
)

func TestBucketsRestoreStore(t *testing.T) {
	store := NewStore(seedSnapshot())
	buckets, err := EncodeBuckets(store.ExportState())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, ok := buckets[domain.TableMensagensIA]; !ok {
		t.Fatalf("expected messages bucket, got %v", BucketNames(buckets))
	}
	names := BucketNames(buckets)
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("bucket names not sorted: %v", names)
		}
	}

	decoded, err := DecodeBuckets(buckets)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	restored := NewStore(decoded)
	rows, _ := restored.Scan(domain.TableApoiadores)
	if len(rows) != 4 || rows[0]["nome"] != "João Silva" {
		t.Fatalf("unexpected restored rows: %v", rows)
	}
	if got := restored.Messages("c1"); len(got) != 1 {
		t.Fatalf("expected restored conversation, got %v", got)
	}
}

func TestDecodeBucketsRejectsBadPayload(t *testing.T) {
	if _, err := DecodeBuckets(map[string][]byte{"apoiadores": []byte("{")}); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := DecodeBuckets(map[string][]byte{domain.TableMensagensIA: []byte("[")}); err == nil {
		t.Fatalf("expected messages decode error")
	}
	s, err := DecodeBuckets(map[string][]byte{"apoiadores": nil})
	if err != nil || len(s.Tables) != 0 {
		t.Fatalf("expected empty payload skipped, got %v %v", s, err)
	}
}
