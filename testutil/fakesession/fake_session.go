// Package fakesession provides an in-memory readmodel.Session for tests:
// documents are seeded per collection and queried with the same filter,
// ordering, and pagination semantics the Postgres engine applies.
package fakesession

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/querymill/readmodel-go/readmodel"
)

// FakeSession is an in-memory document store for handler and dispatch tests.
// It is not safe for concurrent seeding; seed everything before querying.
type FakeSession struct {
	docs     map[string][]readmodel.Document
	failWith error
}

// NewFakeSession creates an empty FakeSession.
func NewFakeSession() *FakeSession {
	return &FakeSession{docs: make(map[string][]readmodel.Document)}
}

// Seed marshals the given values and stores them under the collection name.
func (s *FakeSession) Seed(collectionName string, values ...any) error {
	for _, value := range values {
		buf, err := jsoniter.ConfigFastest.Marshal(value)
		if err != nil {
			return fmt.Errorf("seeding collection %q: %w", collectionName, err)
		}

		s.SeedRaw(collectionName, readmodel.Document(buf))
	}

	return nil
}

// SeedRaw stores pre-marshaled documents under the collection name.
func (s *FakeSession) SeedRaw(collectionName string, documents ...readmodel.Document) {
	key := strings.ToLower(collectionName)
	s.docs[key] = append(s.docs[key], documents...)
}

// FailWith makes every subsequent Count and All call return err.
func (s *FakeSession) FailWith(err error) {
	s.failWith = err
}

// Query starts a query over the seeded documents of the collection.
func (s *FakeSession) Query(collection readmodel.CollectionDescriptor) readmodel.DocumentQuery {
	return &fakeQuery{session: s, collection: collection}
}

var _ readmodel.Session = (*FakeSession)(nil)

type fakeQuery struct {
	session    *FakeSession
	collection readmodel.CollectionDescriptor
	predicates []readmodel.Predicate
	ordering   readmodel.OrderSpec
	skip       int
	take       *int
}

func (q *fakeQuery) Where(predicates ...readmodel.Predicate) readmodel.DocumentQuery {
	q.predicates = append(q.predicates, predicates...)
	return q
}

func (q *fakeQuery) OrderBy(spec readmodel.OrderSpec) readmodel.DocumentQuery {
	q.ordering = spec
	return q
}

func (q *fakeQuery) Skip(n int) readmodel.DocumentQuery {
	q.skip = n
	return q
}

func (q *fakeQuery) Take(n int) readmodel.DocumentQuery {
	q.take = &n
	return q
}

func (q *fakeQuery) Count(_ context.Context) (int, error) {
	if q.session.failWith != nil {
		return 0, q.session.failWith
	}

	matches, err := q.filtered()
	if err != nil {
		return 0, err
	}

	return len(matches), nil
}

func (q *fakeQuery) All(_ context.Context) ([]readmodel.Document, error) {
	if q.session.failWith != nil {
		return nil, q.session.failWith
	}

	matches, err := q.filtered()
	if err != nil {
		return nil, err
	}

	q.order(matches)

	if q.skip > 0 {
		if q.skip >= len(matches) {
			matches = matches[:0]
		} else {
			matches = matches[q.skip:]
		}
	}
	if q.take != nil && *q.take < len(matches) {
		matches = matches[:*q.take]
	}

	documents := make([]readmodel.Document, 0, len(matches))
	for _, match := range matches {
		documents = append(documents, match.raw)
	}

	return documents, nil
}

type decodedDocument struct {
	raw    readmodel.Document
	fields map[string]any
}

func (q *fakeQuery) filtered() ([]decodedDocument, error) {
	stored := q.session.docs[strings.ToLower(q.collection.Name)]
	predicates := readmodel.NormalizePredicates(q.predicates)
	matches := make([]decodedDocument, 0, len(stored))

	for _, raw := range stored {
		fields := make(map[string]any)
		if err := jsoniter.ConfigFastest.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decoding seeded document: %w", err)
		}

		doc := decodedDocument{raw: raw, fields: fields}
		if matchesAll(doc, predicates) {
			matches = append(matches, doc)
		}
	}

	return matches, nil
}

func matchesAll(doc decodedDocument, predicates []readmodel.Predicate) bool {
	for _, predicate := range predicates {
		stored, present := doc.fields[predicate.Field()]
		if !present {
			return false
		}

		if !matchesOne(stored, predicate) {
			return false
		}
	}

	return true
}

func matchesOne(stored any, predicate readmodel.Predicate) bool {
	switch predicate.Op() {
	case readmodel.OpEq:
		return compareValues(stored, predicate.Value()) == 0
	case readmodel.OpGte:
		return compareValues(stored, predicate.Value()) >= 0
	case readmodel.OpLte:
		return compareValues(stored, predicate.Value()) <= 0
	}

	return false
}

func (q *fakeQuery) order(matches []decodedDocument) {
	if len(q.ordering) == 0 {
		return
	}

	sort.SliceStable(matches, func(i, j int) bool {
		for _, clause := range q.ordering {
			cmp := compareValues(matches[i].fields[clause.Field], matches[j].fields[clause.Field])
			if cmp == 0 {
				continue
			}
			if clause.Descending {
				return cmp > 0
			}
			return cmp < 0
		}

		return false
	})
}

// compareValues orders two loosely typed values the way the SQL engine's
// casts would: numerically when both sides are numeric, temporally when both
// parse as timestamps, by string otherwise.
func compareValues(a, b any) int {
	if aNum, aOK := toFloat(a); aOK {
		if bNum, bOK := toFloat(b); bOK {
			switch {
			case aNum < bNum:
				return -1
			case aNum > bNum:
				return 1
			default:
				return 0
			}
		}
	}

	if aTime, aOK := toTime(a); aOK {
		if bTime, bOK := toTime(b); bOK {
			return aTime.Compare(bTime)
		}
	}

	return strings.Compare(toString(a), toString(b))
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	return 0, false
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}
