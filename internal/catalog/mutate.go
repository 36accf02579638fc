package catalog

// HasLiveVectors reports whether versionID has any non-deleted Vector, the
// guard used to refuse reconfiguring a Space's default Version while data
// is live.
func (m *Managers) HasLiveVectors(versionID int64) (bool, error) {
	var count int
	row := m.store.QueryRow(`SELECT COUNT(*) FROM vectors WHERE version_id = ? AND deleted = 0`, versionID)
	if err := row.Scan(&count); err != nil {
		return false, Wrap(Storage, err)
	}
	return count > 0, nil
}

// ReconfigureIndex updates an existing Index's dimension/metric/hnsw/quant
// configuration. Refused with Conflict while any live Vector exists for the
// owning Version, since changing dimension or metric would orphan the
// already-built ANN structure.
func (m *Managers) ReconfigureIndex(indexID int64, spec IndexSpec) (*Index, error) {
	idx, err := m.Index.GetByID(indexID)
	if err != nil {
		return nil, err
	}

	hasLive, err := m.HasLiveVectors(idx.VersionID)
	if err != nil {
		return nil, err
	}
	if hasLive {
		return nil, Newf(Conflict, "cannot reconfigure index %d while version %d has live vectors", indexID, idx.VersionID)
	}

	if err := m.Index.Delete(indexID); err != nil {
		return nil, err
	}
	spec.Name = idx.Name
	return m.Index.Add(idx.VersionID, spec)
}

// UpsertVector is the composite Vector upsert: replace the vector row, its
// per-index payload, its metadata, and (if doc/doc_tokens are supplied) its
// BM25 document, all as one logical operation. The caller already resolved
// which Index the payload belongs to (indexID) and has already validated
// the payload's shape against that Index's dimension.
type UpsertVectorInput struct {
	VersionID int64
	UniqueID  *int64
	IndexID   int64
	Kind      ValueKind
	Payload   []byte
	Metadata  map[string]string
	Doc       string
	DocTokens []string
}

// UpsertVector applies one UpsertVectorInput and returns the resulting
// Vector row.
func (m *Managers) UpsertVector(in UpsertVectorInput) (*Vector, error) {
	v, err := m.Vector.Upsert(in.VersionID, in.UniqueID, in.Kind)
	if err != nil {
		return nil, err
	}

	if err := m.Value.Replace(v.ID, in.IndexID, in.Kind, in.Payload); err != nil {
		return nil, err
	}

	if in.Metadata != nil {
		if err := m.Metadata.ReplaceAll(v.ID, in.Metadata); err != nil {
			return nil, err
		}
	}

	if in.Doc != "" || len(in.DocTokens) > 0 {
		if err := m.BM25Doc.AddDocument(v.ID, in.Doc, in.DocTokens); err != nil {
			return nil, err
		}
	}

	return v, nil
}
