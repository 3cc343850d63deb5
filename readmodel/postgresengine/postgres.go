package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/querymill/readmodel-go/readmodel"
	"github.com/querymill/readmodel-go/readmodel/postgresengine/internal/adapters"
)

var (
	// ErrNilDatabaseConnection is returned when a constructor receives a nil connection.
	ErrNilDatabaseConnection = errors.New("nil database connection supplied")

	// ErrEmptyCollectionTable is returned when a collection descriptor has no storage table.
	ErrEmptyCollectionTable = errors.New("collection descriptor has no storage table")

	// ErrBuildingQueryFailed is returned when the SQL statement cannot be built.
	ErrBuildingQueryFailed = errors.New("building sql query failed")

	// ErrQueryingDocumentsFailed is returned when the select statement fails to execute.
	ErrQueryingDocumentsFailed = errors.New("querying documents failed")

	// ErrCountingDocumentsFailed is returned when the count statement fails to execute.
	ErrCountingDocumentsFailed = errors.New("counting documents failed")

	// ErrScanningDBRowFailed is returned when a result row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning database row failed")

	// ErrUnsupportedPredicateValue is returned for predicate values that cannot be rendered to SQL.
	ErrUnsupportedPredicateValue = errors.New("unsupported predicate value")
)

const (
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildCountQueryFailed  = "failed to build count query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgQueryCompleted         = "document query completed"
	logMsgCountCompleted         = "document count completed"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "document store operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrCollection            = "collection"
	logAttrDocumentCount         = "document_count"
	logAttrTotalCount            = "total_count"
	logAttrDurationMS            = "duration_ms"
	logActionSelect              = "select"
	logActionCount               = "count"
	colDoc                       = "doc"
	aliasTotal                   = "total"
	dialectPostgres              = "postgres"
)

type sqlQueryString = string

// DocumentStore is a read-only document store over Postgres JSONB tables,
// implementing readmodel.Session. One table holds one collection, with the
// document payload in a jsonb column. Equality filters use JSONB containment;
// range filters and ordering use typed casts of the extracted field text.
//
// A DocumentStore is stateless over its connection pool and safe to share;
// handing it to a request as its readmodel.Session is cheap.
type DocumentStore struct {
	db               adapters.DBAdapter
	logger           readmodel.Logger
	metricsCollector readmodel.MetricsCollector
	tracingCollector readmodel.TracingCollector
	contextualLogger readmodel.ContextualLogger
}

// NewDocumentStoreFromPGXPool creates a new DocumentStore using a pgx pool with optional configuration.
func NewDocumentStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (DocumentStore, error) {
	if db == nil {
		return DocumentStore{}, ErrNilDatabaseConnection
	}

	return newDocumentStore(adapters.NewPGXAdapter(db), options...)
}

// NewDocumentStoreFromPGXPoolWithReplica creates a new DocumentStore that sends
// all statements to the replica pool, falling back to the primary when nil.
func NewDocumentStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (DocumentStore, error) {
	if db == nil {
		return DocumentStore{}, ErrNilDatabaseConnection
	}

	return newDocumentStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewDocumentStoreFromSQLDB creates a new DocumentStore using a sql.DB with optional configuration.
func NewDocumentStoreFromSQLDB(db *sql.DB, options ...Option) (DocumentStore, error) {
	if db == nil {
		return DocumentStore{}, ErrNilDatabaseConnection
	}

	return newDocumentStore(adapters.NewSQLAdapter(db), options...)
}

// NewDocumentStoreFromSQLX creates a new DocumentStore using a sqlx.DB with optional configuration.
func NewDocumentStoreFromSQLX(db *sqlx.DB, options ...Option) (DocumentStore, error) {
	if db == nil {
		return DocumentStore{}, ErrNilDatabaseConnection
	}

	return newDocumentStore(adapters.NewSQLXAdapter(db), options...)
}

func newDocumentStore(db adapters.DBAdapter, options ...Option) (DocumentStore, error) {
	ds := DocumentStore{db: db}

	for _, option := range options {
		if err := option(&ds); err != nil {
			return DocumentStore{}, err
		}
	}

	return ds, nil
}

// Query starts a filterable document query over the collection's table.
func (ds DocumentStore) Query(collection readmodel.CollectionDescriptor) readmodel.DocumentQuery {
	return &documentQuery{store: ds, collection: collection}
}

// documentQuery accumulates predicates, ordering and pagination, then builds
// and executes the SQL on Count or All.
type documentQuery struct {
	store      DocumentStore
	collection readmodel.CollectionDescriptor
	predicates []readmodel.Predicate
	ordering   readmodel.OrderSpec
	skip       int
	take       *int
}

// Where adds predicates; all supplied predicates must match (conjunction).
func (q *documentQuery) Where(predicates ...readmodel.Predicate) readmodel.DocumentQuery {
	q.predicates = append(q.predicates, predicates...)
	return q
}

// OrderBy sets the compiled ordering to apply on All.
func (q *documentQuery) OrderBy(spec readmodel.OrderSpec) readmodel.DocumentQuery {
	q.ordering = spec
	return q
}

// Skip sets the number of leading documents to drop on All.
func (q *documentQuery) Skip(n int) readmodel.DocumentQuery {
	q.skip = n
	return q
}

// Take bounds the number of documents returned by All.
func (q *documentQuery) Take(n int) readmodel.DocumentQuery {
	q.take = &n
	return q
}

// Count executes a COUNT over the filtered set. Ordering, skip and take are
// deliberately ignored so the total always reflects the filters only.
func (q *documentQuery) Count(ctx context.Context) (int, error) {
	sqlQuery, buildErr := q.buildCountQuery()
	if buildErr != nil {
		q.store.logError(logMsgBuildCountQueryFailed, buildErr, logAttrCollection, q.collection.Name)
		return 0, buildErr
	}

	ctx, span := q.store.startSpan(ctx, q.collection.Name, logActionCount)

	start := time.Now()
	row := q.store.db.QueryRow(ctx, sqlQuery)
	var total int64
	scanErr := row.Scan(&total)
	duration := time.Since(start)
	q.store.logQueryWithDuration(sqlQuery, logActionCount, duration)

	if scanErr != nil {
		q.store.logError(logMsgDBQueryFailed, scanErr, logAttrQuery, sqlQuery)
		q.store.recordErrorMetrics(ctx, logActionCount)
		q.store.finishSpan(span, scanErr)
		return 0, errors.Join(ErrCountingDocumentsFailed, scanErr)
	}

	q.store.finishSpan(span, nil)
	q.store.recordDurationMetrics(ctx, logActionCount, duration)
	q.store.logOperation(
		logMsgCountCompleted,
		logAttrCollection, q.collection.Name,
		logAttrTotalCount, total,
		logAttrDurationMS, toMilliseconds(duration))

	return int(total), nil
}

// All executes the select with filters, ordering and pagination applied and
// materializes the document payloads.
func (q *documentQuery) All(ctx context.Context) ([]readmodel.Document, error) {
	sqlQuery, buildErr := q.buildSelectQuery()
	if buildErr != nil {
		q.store.logError(logMsgBuildSelectQueryFailed, buildErr, logAttrCollection, q.collection.Name)
		return nil, buildErr
	}

	ctx, span := q.store.startSpan(ctx, q.collection.Name, logActionSelect)

	start := time.Now()
	rows, queryErr := q.store.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	q.store.logQueryWithDuration(sqlQuery, logActionSelect, duration)

	if queryErr != nil {
		q.store.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		q.store.recordErrorMetrics(ctx, logActionSelect)
		q.store.finishSpan(span, queryErr)
		return nil, errors.Join(ErrQueryingDocumentsFailed, queryErr)
	}
	defer q.store.closeRows(rows)

	documents := make([]readmodel.Document, 0)

	for rows.Next() {
		var payload []byte
		if scanErr := rows.Scan(&payload); scanErr != nil {
			q.store.logError(logMsgScanRowFailed, scanErr)
			q.store.finishSpan(span, scanErr)
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		documents = append(documents, readmodel.Document(payload))
	}

	q.store.finishSpan(span, nil)
	q.store.recordDurationMetrics(ctx, logActionSelect, duration)
	q.store.logOperation(
		logMsgQueryCompleted,
		logAttrCollection, q.collection.Name,
		logAttrDocumentCount, len(documents),
		logAttrDurationMS, toMilliseconds(duration))

	return documents, nil
}

func (q *documentQuery) buildSelectQuery() (sqlQueryString, error) {
	if q.collection.Table == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyCollectionTable, q.collection.Name)
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(q.collection.Table).
		Select(goqu.C(colDoc))

	whereExprs, whereErr := q.whereExpressions()
	if whereErr != nil {
		return "", whereErr
	}
	if len(whereExprs) > 0 {
		selectStmt = selectStmt.Where(whereExprs...)
	}

	if ordered := q.orderedExpressions(); len(ordered) > 0 {
		selectStmt = selectStmt.Order(ordered...)
	}

	if q.skip > 0 {
		selectStmt = selectStmt.Offset(uint(q.skip))
	}
	if q.take != nil && *q.take >= 0 {
		selectStmt = selectStmt.Limit(uint(*q.take))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (q *documentQuery) buildCountQuery() (sqlQueryString, error) {
	if q.collection.Table == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyCollectionTable, q.collection.Name)
	}

	countStmt := goqu.Dialect(dialectPostgres).
		From(q.collection.Table).
		Select(goqu.COUNT(goqu.Star()).As(aliasTotal))

	whereExprs, whereErr := q.whereExpressions()
	if whereErr != nil {
		return "", whereErr
	}
	if len(whereExprs) > 0 {
		countStmt = countStmt.Where(whereExprs...)
	}

	sqlQuery, _, toSQLErr := countStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (q *documentQuery) whereExpressions() ([]goqu.Expression, error) {
	predicates := readmodel.NormalizePredicates(q.predicates)
	expressions := make([]goqu.Expression, 0, len(predicates))

	for _, predicate := range predicates {
		expression, err := predicateExpression(predicate)
		if err != nil {
			return nil, err
		}
		expressions = append(expressions, expression)
	}

	return expressions, nil
}

// predicateExpression renders one predicate against the jsonb document column.
// Equality uses containment so Postgres can serve it from a GIN index; range
// operators extract the field text and cast it by the value's type.
func predicateExpression(predicate readmodel.Predicate) (goqu.Expression, error) {
	switch predicate.Op() {
	case readmodel.OpEq:
		containment, marshalErr := jsoniter.ConfigFastest.Marshal(map[string]any{predicate.Field(): predicate.Value()})
		if marshalErr != nil {
			return nil, errors.Join(ErrBuildingQueryFailed, marshalErr)
		}

		return goqu.L(fmt.Sprintf("%s @> '%s'", colDoc, escapeSQLString(string(containment)))), nil

	case readmodel.OpGte:
		return comparisonExpression(predicate, ">=")

	case readmodel.OpLte:
		return comparisonExpression(predicate, "<=")
	}

	return nil, fmt.Errorf("%w: operator %d", ErrBuildingQueryFailed, predicate.Op())
}

func comparisonExpression(predicate readmodel.Predicate, operator string) (goqu.Expression, error) {
	literal, literalErr := sqlLiteral(predicate.Value())
	if literalErr != nil {
		return nil, literalErr
	}

	accessor := castFieldAccessor(predicate.Field(), kindOfValue(predicate.Value()))

	return goqu.L(fmt.Sprintf("%s %s %s", accessor, operator, literal)), nil
}

func (q *documentQuery) orderedExpressions() []exp.OrderedExpression {
	ordered := make([]exp.OrderedExpression, 0, len(q.ordering))

	for _, clause := range q.ordering {
		literal := goqu.L(castFieldAccessor(clause.Field, q.collection.SortKind(clause.Field)))

		if clause.Descending {
			ordered = append(ordered, literal.Desc())
		} else {
			ordered = append(ordered, literal.Asc())
		}
	}

	return ordered
}

// castFieldAccessor renders the jsonb field extraction with the cast needed
// for the field kind, so numbers order numerically and dates temporally.
func castFieldAccessor(field string, kind readmodel.FieldKind) string {
	accessor := fmt.Sprintf("%s->>'%s'", colDoc, escapeSQLString(field))

	switch kind {
	case readmodel.FieldInt, readmodel.FieldDecimal:
		return "(" + accessor + ")::numeric"
	case readmodel.FieldDate:
		return "(" + accessor + ")::timestamptz"
	case readmodel.FieldBool:
		return "(" + accessor + ")::boolean"
	default:
		return accessor
	}
}

func kindOfValue(value any) readmodel.FieldKind {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return readmodel.FieldDecimal
	case time.Time:
		return readmodel.FieldDate
	case bool:
		return readmodel.FieldBool
	default:
		return readmodel.FieldString
	}
}

func sqlLiteral(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return "'" + escapeSQLString(v) + "'", nil
	case time.Time:
		return "'" + v.UTC().Format(time.RFC3339Nano) + "'", nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32, float64:
		return fmt.Sprintf("%v", v), nil
	}

	return "", fmt.Errorf("%w: %v (%T)", ErrUnsupportedPredicateValue, value, value)
}

// escapeSQLString doubles single quotes; anything stronger is the storage
// collaborator's concern per the session contract.
func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
