package services

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// normalize lowercases and trims a catalog value or query.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokens splits a normalized query on whitespace.
func tokens(s string) []string {
	return strings.Fields(normalize(s))
}

func containsAll(key string, toks []string) bool {
	for _, t := range toks {
		if !strings.Contains(key, t) {
			return false
		}
	}
	return true
}

func cloneRecord(r *domain.ProductRecord) domain.ProductRecord {
	out := *r
	if r.ID != nil {
		id := *r.ID
		out.ID = &id
	}
	return out
}

// keyedIndex maps a key to the last record written under it and remembers
// the order in which keys first appeared.
type keyedIndex struct {
	keys  []string
	byKey map[string]*domain.ProductRecord
}

func newKeyedIndex(capacity int) keyedIndex {
	return keyedIndex{byKey: make(map[string]*domain.ProductRecord, capacity)}
}

func (k *keyedIndex) put(key string, r *domain.ProductRecord) {
	if _, ok := k.byKey[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.byKey[key] = r
}

// groupedIndex maps a key to every record sharing it, in catalog order.
type groupedIndex struct {
	keys  []string
	byKey map[string][]*domain.ProductRecord
}

func newGroupedIndex() groupedIndex {
	return groupedIndex{byKey: make(map[string][]*domain.ProductRecord)}
}

func (g *groupedIndex) add(key string, r *domain.ProductRecord) {
	if _, ok := g.byKey[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.byKey[key] = append(g.byKey[key], r)
}

// CatalogIndex is one immutable build of the catalog lookup structures.
// All four indexes are derived from the same snapshot. Callers must not
// mutate an index after it has been published.
type CatalogIndex struct {
	generation uint64
	records    []domain.ProductRecord
	skipped    int

	byDescription keyedIndex
	byBrand       groupedIndex
	byEAN         keyedIndex
	byID          keyedIndex
}

// BuildIndex builds the lookup structures for a catalog snapshot.
// A record is indexed under every key whose field is non-empty; a blank or
// malformed field only removes the record from that one index.
// Descriptions and EANs collide last-write-wins. Brand groups keep catalog order.
func BuildIndex(records []domain.ProductRecord) *CatalogIndex {
	idx := &CatalogIndex{
		records:       make([]domain.ProductRecord, len(records)),
		byDescription: newKeyedIndex(len(records)),
		byBrand:       newGroupedIndex(),
		byEAN:         newKeyedIndex(len(records)),
		byID:          newKeyedIndex(len(records)),
	}

	for i := range records {
		idx.records[i] = cloneRecord(&records[i])
		r := &idx.records[i]

		if key := normalize(r.Description); key != "" {
			idx.byDescription.put(key, r)
		}
		if key := normalize(r.Brand); key != "" {
			idx.byBrand.add(key, r)
		}
		if ean := strings.TrimSpace(r.EAN); ean != "" {
			idx.byEAN.put(ean, r)
		}
		if r.ID != nil {
			idx.byID.put(r.IDString(), r)
		}
	}

	return idx
}

// Generation returns the index version. Zero means no snapshot has loaded.
func (idx *CatalogIndex) Generation() uint64 {
	return idx.generation
}

// Len returns the number of records in the snapshot.
func (idx *CatalogIndex) Len() int {
	return len(idx.records)
}

// Skipped returns how many rows were unreadable and dropped before building.
func (idx *CatalogIndex) Skipped() int {
	return idx.skipped
}

// Counts returns the number of distinct keys per index.
func (idx *CatalogIndex) Counts() (descriptions, brands, eans, ids int) {
	return len(idx.byDescription.keys), len(idx.byBrand.keys), len(idx.byEAN.keys), len(idx.byID.keys)
}

// ByEAN looks up a barcode exactly.
func (idx *CatalogIndex) ByEAN(ean string) (domain.ProductRecord, bool) {
	r, ok := idx.byEAN.byKey[strings.TrimSpace(ean)]
	if !ok {
		return domain.ProductRecord{}, false
	}
	return cloneRecord(r), true
}

// Suggest returns up to limit distinct display strings matching the query.
// Queries shorter than minLen runes produce nothing, as do unknown fields.
func (idx *CatalogIndex) Suggest(field domain.SearchField, query string, limit, minLen int) []string {
	out := []string{}
	if limit <= 0 {
		return out
	}

	switch field {
	case domain.FieldDescription:
		toks := tokens(query)
		if utf8.RuneCountInString(normalize(query)) < minLen || len(toks) == 0 {
			return out
		}
		seen := make(map[string]struct{})
		for _, key := range idx.byDescription.keys {
			if !containsAll(key, toks) {
				continue
			}
			out = appendUnique(out, seen, strings.TrimSpace(idx.byDescription.byKey[key].Description))
			if len(out) == limit {
				break
			}
		}

	case domain.FieldBrand:
		toks := tokens(query)
		if utf8.RuneCountInString(normalize(query)) < minLen || len(toks) == 0 {
			return out
		}
		seen := make(map[string]struct{})
		for _, key := range idx.byBrand.keys {
			if !strings.Contains(key, toks[0]) {
				continue
			}
			out = appendUnique(out, seen, strings.TrimSpace(idx.byBrand.byKey[key][0].Brand))
			if len(out) == limit {
				break
			}
		}

	case domain.FieldEAN:
		out = prefixMatches(idx.byEAN.keys, query, limit, minLen)

	case domain.FieldID:
		out = prefixMatches(idx.byID.keys, query, limit, minLen)
	}

	return out
}

func appendUnique(out []string, seen map[string]struct{}, value string) []string {
	if _, ok := seen[value]; ok {
		return out
	}
	seen[value] = struct{}{}
	return append(out, value)
}

// prefixMatches compares the query literally, after trimming the surrounding
// whitespace barcode scanners and pasted text carry.
func prefixMatches(keys []string, query string, limit, minLen int) []string {
	out := []string{}
	q := strings.TrimSpace(query)
	if q == "" || utf8.RuneCountInString(q) < minLen {
		return out
	}
	for _, key := range keys {
		if strings.HasPrefix(key, q) {
			out = append(out, key)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Resolve returns the single record a completed query identifies.
//
// ID queries are parsed as integers and looked up exactly. Description and
// brand queries try the exact normalized key first, then scan keys in catalog
// order with the same rule Suggest uses: every token for descriptions, the
// first token for brands. Any other field is an exact EAN lookup.
func (idx *CatalogIndex) Resolve(field domain.SearchField, query string) (domain.ProductRecord, bool) {
	switch field {
	case domain.FieldID:
		id, ok := parseID(query)
		if !ok {
			return domain.ProductRecord{}, false
		}
		r, ok := idx.byID.byKey[id]
		if !ok {
			return domain.ProductRecord{}, false
		}
		return cloneRecord(r), true

	case domain.FieldDescription:
		key, ok := matchKey(idx.byDescription.keys, idx.byDescription.byKey, query)
		if !ok {
			return domain.ProductRecord{}, false
		}
		return cloneRecord(idx.byDescription.byKey[key]), true

	case domain.FieldBrand:
		q := normalize(query)
		if group, ok := idx.byBrand.byKey[q]; ok && q != "" {
			return cloneRecord(group[0]), true
		}
		toks := tokens(query)
		if len(toks) == 0 {
			return domain.ProductRecord{}, false
		}
		for _, key := range idx.byBrand.keys {
			if strings.Contains(key, toks[0]) {
				return cloneRecord(idx.byBrand.byKey[key][0]), true
			}
		}
		return domain.ProductRecord{}, false

	default:
		return idx.ByEAN(query)
	}
}

func matchKey(keys []string, byKey map[string]*domain.ProductRecord, query string) (string, bool) {
	q := normalize(query)
	if q == "" {
		return "", false
	}
	if _, ok := byKey[q]; ok {
		return q, true
	}
	toks := strings.Fields(q)
	for _, key := range keys {
		if containsAll(key, toks) {
			return key, true
		}
	}
	return "", false
}

// parseID parses an ID query and returns the canonical index key.
func parseID(query string) (string, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(query), 10, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}
