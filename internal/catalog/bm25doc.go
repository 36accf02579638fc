package catalog

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tinyvectordb/tinyvectordb/internal/database"
)

// BM25DocManager is the transactional CRUD surface for BM25Doc rows: the
// token-frequency dictionary BM25 scoring reads from.
type BM25DocManager struct {
	store *database.Store
}

// NewBM25DocManager builds a BM25DocManager over store.
func NewBM25DocManager(store *database.Store) *BM25DocManager {
	return &BM25DocManager{store: store}
}

// SerialiseTokens folds a raw (possibly repeating) token slice into the
// "tok:freq tok:freq …" wire format, accumulating true term frequency
// rather than emitting one "tok:1" entry per occurrence.
func SerialiseTokens(tokens []string) string {
	freq := map[string]int{}
	order := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, seen := freq[t]; !seen {
			order = append(order, t)
		}
		freq[t]++
	}
	sort.Strings(order)

	parts := make([]string, 0, len(order))
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%s:%d", t, freq[t]))
	}
	return strings.Join(parts, " ")
}

// DeserialiseTokens parses the "tok:freq …" wire format back into a
// token → frequency map.
func DeserialiseTokens(serialised string) map[string]int {
	out := map[string]int{}
	if serialised == "" {
		return out
	}
	for _, part := range strings.Fields(serialised) {
		i := strings.LastIndex(part, ":")
		if i < 0 {
			continue
		}
		freq, err := strconv.Atoi(part[i+1:])
		if err != nil {
			continue
		}
		out[part[:i]] = freq
	}
	return out
}

// AddDocument stores doc and the token-frequency serialisation for
// vectorID, replacing any prior record (upsert semantics).
func (m *BM25DocManager) AddDocument(vectorID int64, doc string, tokens []string) error {
	_, err := m.store.Exec(
		`INSERT INTO bm25_docs (vector_id, doc, doc_length, tokens_serialised) VALUES (?, ?, ?, ?)
		 ON CONFLICT(vector_id) DO UPDATE SET doc = excluded.doc, doc_length = excluded.doc_length, tokens_serialised = excluded.tokens_serialised`,
		vectorID, doc, len(tokens), SerialiseTokens(tokens),
	)
	return Wrap(Storage, err)
}

// Get fetches the BM25Doc for a vector, or empty/NotFound if none exists.
func (m *BM25DocManager) Get(vectorID int64) (*BM25Doc, error) {
	row := m.store.QueryRow(`SELECT vector_id, doc, doc_length, tokens_serialised FROM bm25_docs WHERE vector_id = ?`, vectorID)
	var d BM25Doc
	if err := row.Scan(&d.VectorID, &d.Doc, &d.DocLength, &d.TokensSerialised); err != nil {
		if err == sql.ErrNoRows {
			return nil, Newf(NotFound, "bm25 doc not found")
		}
		return nil, Wrap(Storage, err)
	}
	return &d, nil
}

// GetWorkingSet loads only the requested rows, the BM25 search contract's
// working-set restriction (it never scans the whole corpus).
func (m *BM25DocManager) GetWorkingSet(vectorIDs []int64) (map[int64]*BM25Doc, error) {
	out := map[int64]*BM25Doc{}
	if len(vectorIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(vectorIDs))
	query := "SELECT vector_id, doc, doc_length, tokens_serialised FROM bm25_docs WHERE vector_id IN ("
	for i, id := range vectorIDs {
		if i > 0 {
			query += ","
		}
		query += "?"
		args[i] = id
	}
	query += ")"

	rows, err := m.store.Query(query, args...)
	if err != nil {
		return nil, Wrap(Storage, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d BM25Doc
		if err := rows.Scan(&d.VectorID, &d.Doc, &d.DocLength, &d.TokensSerialised); err != nil {
			return nil, Wrap(Storage, err)
		}
		out[d.VectorID] = &d
	}
	return out, Wrap(Storage, rows.Err())
}
