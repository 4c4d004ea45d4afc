package backend

import (
	"context"
	"testing"
	"time"
)

func newTestBackend(t *testing.T) *BleveBackend {
	t.Helper()
	b := NewBleveBackend("")
	t.Cleanup(func() { _ = b.Close() })
	if err := b.CreateIndex(context.Background(), "files", SchemaFiles); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	return b
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	doc := Document{"content": "package main\nfunc main() {}", "file_path": "main.go", "is_current": true}
	if err := b.Put(ctx, "files", "proj:main.go", doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, found, err := b.Get(ctx, "files", "proj:main.go")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("expected document to be found")
	}
	if got["file_path"] != "main.go" {
		t.Errorf("file_path = %v, want main.go", got["file_path"])
	}
}

func TestSearchMatchesCodeTokens(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	_ = b.Put(ctx, "files", "proj:user_service.go", Document{
		"content":   "type UserService struct{}",
		"file_path": "user_service.go",
	})
	_ = b.Put(ctx, "files", "proj:other.go", Document{
		"content":   "package widgets",
		"file_path": "other.go",
	})

	res, err := b.Search(ctx, "files", Query{Text: "user", Field: "content", Size: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("Total = %d, want 1", res.Total)
	}
}

func TestSearchWildcard(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	_ = b.Put(ctx, "files", "proj:x.go", Document{"file_path": "handler.go", "is_current": true})

	res, err := b.Search(ctx, "files", Query{Wildcard: "handl*", WildcardField: "file_path", Size: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("Total = %d, want 1", res.Total)
	}
}

func TestFuzzySearchMatchesMisspelledTerm(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	_ = b.Put(ctx, "files", "proj:db.go", Document{"content": "database connection pool", "is_current": true})

	exact, err := b.Search(ctx, "files", Query{Text: "databas", Field: "content", Size: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if exact.Total != 0 {
		t.Fatalf("Total = %d, want 0 for an exact (non-fuzzy) misspelled query", exact.Total)
	}

	fuzzy, err := b.Search(ctx, "files", Query{Text: "databas", Field: "content", Fuzziness: 1, Size: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if fuzzy.Total != 1 {
		t.Fatalf("Total = %d, want 1 with Fuzziness: 1", fuzzy.Total)
	}
}

func TestDeleteByQuery(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	_ = b.Put(ctx, "files", "proj:a.go", Document{"is_current": false})
	_ = b.Put(ctx, "files", "proj:b.go", Document{"is_current": true})

	n, err := b.DeleteByQuery(ctx, "files", Query{Bools: map[string]bool{"is_current": false}})
	if err != nil {
		t.Fatalf("DeleteByQuery: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	count, err := b.Count(ctx, "files")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("remaining count = %d, want 1", count)
	}
}

func TestScrollVisitsEveryDocumentExactlyOnce(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	for i := 0; i < 25; i++ {
		_ = b.Put(ctx, "files", "proj:"+string(rune('a'+i)), Document{"is_current": true})
	}

	cursorID, first, err := b.Scroll(ctx, "files", Query{MatchAll: true}, 10, 2*time.Second)
	if err != nil {
		t.Fatalf("Scroll: %v", err)
	}

	seen := len(first.Hits)
	for {
		page, done, err := b.ScrollNext(ctx, cursorID)
		if err != nil {
			t.Fatalf("ScrollNext: %v", err)
		}
		seen += len(page.Hits)
		if done {
			break
		}
	}

	if seen != 25 {
		t.Errorf("scrolled %d documents, want 25", seen)
	}
}

func TestTokenizeCodePreservesOriginalAndParts(t *testing.T) {
	tokens := TokenizeCode("UserService")
	wantPart := map[string]bool{"userservice": false, "user": false, "service": false}
	for _, tok := range tokens {
		if _, ok := wantPart[tok]; ok {
			wantPart[tok] = true
		}
	}
	for tok, found := range wantPart {
		if !found {
			t.Errorf("expected token %q among %v", tok, tokens)
		}
	}
}
