package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shhac/interfere/internal/domain"

	"modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// receivedTimeExpr reads received_time as unix nanoseconds. Databases written
// by older builds stored a CURRENT_TIMESTAMP text value instead.
const receivedTimeExpr = `CASE typeof(r.received_time)
	WHEN 'integer' THEN r.received_time
	WHEN 'text' THEN CAST(strftime('%s', r.received_time) AS INTEGER) * 1000000000
	ELSE 0 END`

// foldFuncName lowercases with Go's Unicode rules. SQLite's LOWER only
// folds ASCII, which would disagree with likePattern on URLs like /Ärger.
const foldFuncName = "fold_lower"

// searchClause filters endpoints by a case-insensitive URL substring.
// Arguments: raw search, LIKE pattern.
const searchClause = `(? = '' OR ` + foldFuncName + `(e.url) LIKE ? ESCAPE '\')`

// registerFunctions installs the custom SQL functions once per process;
// modernc applies them to every connection opened afterwards.
var registerFunctions = sync.OnceValue(func() error {
	return sqlite.RegisterDeterministicScalarFunction(foldFuncName, 1, foldLower)
})

func foldLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// SQLiteRepository implements Repository on a single SQLite file.
// Every call is serialised by one mutex around the handle.
type SQLiteRepository struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *slog.Logger
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// OpenSQLite opens (creating if needed) the database at path and brings its
// schema up to date.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), dirPermission); err != nil {
		return nil, fmt.Errorf("prepare sqlite directory: %w", err)
	}

	if err := registerFunctions(); err != nil {
		return nil, fmt.Errorf("register sqlite functions: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", filepath.ToSlash(absPath))
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// foreign_keys is a per-connection pragma; a single connection keeps it
	// in effect for every statement.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	if err := migrate(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened database", slog.String("path", absPath))
	return &SQLiteRepository{db: db, logger: logger}, nil
}

// Close releases the database handle
func (r *SQLiteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.Close()
}

// CreateEndpoint inserts a bare endpoint
func (r *SQLiteRepository) CreateEndpoint(ctx context.Context, url string, method domain.Method) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, "INSERT INTO endpoint (url, method) VALUES (?, ?)", url, method.String())
	if err != nil {
		return 0, fmt.Errorf("insert endpoint: %w", err)
	}
	return res.LastInsertId()
}

// CreateEndpointFull inserts the endpoint with its responses and their pairs
// in one transaction.
func (r *SQLiteRepository) CreateEndpointFull(ctx context.Context, endpoint domain.Endpoint) (id int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, "INSERT INTO endpoint (url, method) VALUES (?, ?)", endpoint.URL, endpoint.Method.String())
	if err != nil {
		return 0, fmt.Errorf("insert endpoint: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, response := range endpoint.Responses {
		if _, err = insertResponse(ctx, tx, id, response); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	r.logger.Debug("created endpoint",
		slog.Int64("id", id),
		slog.String("url", endpoint.URL),
		slog.Int("responses", len(endpoint.Responses)))
	return id, nil
}

// UpdateEndpointURL changes the URL of an endpoint
func (r *SQLiteRepository) UpdateEndpointURL(ctx context.Context, id int64, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return execOne(ctx, r.db, "UPDATE endpoint SET url = ? WHERE id = ?", url, id)
}

// UpdateEndpointMethod changes the method of an endpoint
func (r *SQLiteRepository) UpdateEndpointMethod(ctx context.Context, id int64, method domain.Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return execOne(ctx, r.db, "UPDATE endpoint SET method = ? WHERE id = ?", method.String(), id)
}

// DeleteEndpoint removes the endpoint and every response and pair below it
func (r *SQLiteRepository) DeleteEndpoint(ctx context.Context, id int64) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, kind := range []domain.PairKind{domain.QueryParam, domain.Header} {
		query := fmt.Sprintf(`DELETE FROM %s WHERE parent_response_id IN
			(SELECT id FROM response WHERE parent_endpoint_id = ?)`, pairTable(kind))
		if _, err = tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("delete %s rows: %w", kind, err)
		}
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM response WHERE parent_endpoint_id = ?", id); err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	if err = execOne(ctx, tx, "DELETE FROM endpoint WHERE id = ?", id); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("deleted endpoint", slog.Int64("id", id))
	return nil
}

// FindEndpoint returns the newest endpoint with exactly this URL and method
func (r *SQLiteRepository) FindEndpoint(ctx context.Context, url string, method domain.Method) (*domain.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id int64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM endpoint WHERE url = ? AND COALESCE(method, 'GET') = ? ORDER BY id DESC LIMIT 1",
		url, method.String()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find endpoint: %w", err)
	}

	endpoints, err := r.load(ctx, "e.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(endpoints) == 0 {
		return nil, ErrNotFound
	}
	return &endpoints[0], nil
}

// CreateResponse inserts a response and its request pairs in one transaction
func (r *SQLiteRepository) CreateResponse(ctx context.Context, endpointID int64, response domain.Response) (id int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if id, err = insertResponse(ctx, tx, endpointID, response); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// UpdateResponse overwrites the body, status and time of a stored response
func (r *SQLiteRepository) UpdateResponse(ctx context.Context, id int64, text string, code int, receivedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return execOne(ctx, r.db,
		"UPDATE response SET text = ?, code = ?, received_time = ? WHERE id = ?",
		text, code, receivedAt.UnixNano(), id)
}

// DeleteResponse removes a response and its pairs
func (r *SQLiteRepository) DeleteResponse(ctx context.Context, id int64) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, kind := range []domain.PairKind{domain.QueryParam, domain.Header} {
		query := fmt.Sprintf("DELETE FROM %s WHERE parent_response_id = ?", pairTable(kind))
		if _, err = tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("delete %s rows: %w", kind, err)
		}
	}
	if err = execOne(ctx, tx, "DELETE FROM response WHERE id = ?", id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ResponseCount returns how many responses an endpoint has
func (r *SQLiteRepository) ResponseCount(ctx context.Context, endpointID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM response WHERE parent_endpoint_id = ?", endpointID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// CreatePair inserts a query parameter or header under a response
func (r *SQLiteRepository) CreatePair(ctx context.Context, kind domain.PairKind, responseID int64, pair domain.KeyValue) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return insertPair(ctx, r.db, kind, responseID, pair)
}

// UpdatePair overwrites key, value and toggle of a pair
func (r *SQLiteRepository) UpdatePair(ctx context.Context, kind domain.PairKind, id int64, key, value string, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	query := fmt.Sprintf("UPDATE %s SET key = ?, value = ?, is_on = ? WHERE id = ?", pairTable(kind))
	return execOne(ctx, r.db, query, key, value, on, id)
}

// DeletePair removes a pair
func (r *SQLiteRepository) DeletePair(ctx context.Context, kind domain.PairKind, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return execOne(ctx, r.db, fmt.Sprintf("DELETE FROM %s WHERE id = ?", pairTable(kind)), id)
}

// LoadEndpoints returns the nested endpoint graph, newest endpoint first
func (r *SQLiteRepository) LoadEndpoints(ctx context.Context, search string) ([]domain.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	endpoints, err := r.load(ctx, searchClause, search, likePattern(search))
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded endpoints",
		slog.String("search", search),
		slog.Int("count", len(endpoints)))
	return endpoints, nil
}

// load runs three queries (endpoints, responses, pairs) restricted by the
// same endpoint predicate and stitches the graph together. Each result set
// is drained before the next query since the pool holds one connection.
func (r *SQLiteRepository) load(ctx context.Context, where string, args ...any) ([]domain.Endpoint, error) {
	endpoints, err := queryEndpoints(ctx, r.db, where, args)
	if err != nil {
		return nil, err
	}
	if len(endpoints) == 0 {
		return []domain.Endpoint{}, nil
	}

	responses, err := queryResponses(ctx, r.db, where, args)
	if err != nil {
		return nil, err
	}
	queryParams, err := queryPairs(ctx, r.db, domain.QueryParam, where, args)
	if err != nil {
		return nil, err
	}
	headers, err := queryPairs(ctx, r.db, domain.Header, where, args)
	if err != nil {
		return nil, err
	}

	byEndpoint := make(map[int64][]domain.Response, len(endpoints))
	for _, resp := range responses {
		resp.Request.QueryParams = queryParams[resp.ID]
		resp.Request.Headers = headers[resp.ID]
		byEndpoint[resp.EndpointID] = append(byEndpoint[resp.EndpointID], resp)
	}
	for i := range endpoints {
		endpoints[i].Responses = byEndpoint[endpoints[i].ID]
	}
	return endpoints, nil
}

func queryEndpoints(ctx context.Context, db *sql.DB, where string, args []any) ([]domain.Endpoint, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT e.id, COALESCE(e.url, ''), COALESCE(e.method, 'GET') FROM endpoint e WHERE "+where+" ORDER BY e.id DESC",
		args...)
	if err != nil {
		return nil, fmt.Errorf("query endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []domain.Endpoint
	for rows.Next() {
		var (
			e      domain.Endpoint
			method string
		)
		if err := rows.Scan(&e.ID, &e.URL, &method); err != nil {
			return nil, fmt.Errorf("scan endpoint: %w", err)
		}
		if e.Method, err = domain.ParseMethod(method); err != nil {
			e.Method = domain.MethodGet
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

func queryResponses(ctx context.Context, db *sql.DB, where string, args []any) ([]domain.Response, error) {
	query := `SELECT r.id, r.parent_endpoint_id, COALESCE(r.text, ''), COALESCE(r.code, 0), ` + receivedTimeExpr + ` AS received
		FROM response r JOIN endpoint e ON e.id = r.parent_endpoint_id
		WHERE ` + where + `
		ORDER BY received DESC, r.id DESC`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var responses []domain.Response
	for rows.Next() {
		var (
			resp     domain.Response
			received int64
		)
		if err := rows.Scan(&resp.ID, &resp.EndpointID, &resp.Text, &resp.Code, &received); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		resp.ReceivedAt = time.Unix(0, received)
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

func queryPairs(ctx context.Context, db *sql.DB, kind domain.PairKind, where string, args []any) (map[int64][]domain.KeyValue, error) {
	query := fmt.Sprintf(`SELECT p.id, p.parent_response_id, COALESCE(p.key, ''), COALESCE(p.value, ''), COALESCE(p.is_on, 1)
		FROM %s p
		JOIN response r ON r.id = p.parent_response_id
		JOIN endpoint e ON e.id = r.parent_endpoint_id
		WHERE %s
		ORDER BY p.id`, pairTable(kind), where)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	pairs := make(map[int64][]domain.KeyValue)
	for rows.Next() {
		var p domain.KeyValue
		if err := rows.Scan(&p.ID, &p.ParentResponseID, &p.Key, &p.Value, &p.On); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		pairs[p.ParentResponseID] = append(pairs[p.ParentResponseID], p)
	}
	return pairs, rows.Err()
}

func insertResponse(ctx context.Context, ex execer, endpointID int64, response domain.Response) (int64, error) {
	received := response.ReceivedAt
	if received.IsZero() {
		received = time.Now()
	}
	res, err := ex.ExecContext(ctx,
		"INSERT INTO response (parent_endpoint_id, text, code, received_time) VALUES (?, ?, ?, ?)",
		endpointID, response.Text, response.Code, received.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("insert response: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, kind := range []domain.PairKind{domain.QueryParam, domain.Header} {
		for _, pair := range response.Request.Pairs(kind) {
			if _, err := insertPair(ctx, ex, kind, id, pair); err != nil {
				return 0, err
			}
		}
	}
	return id, nil
}

func insertPair(ctx context.Context, ex execer, kind domain.PairKind, responseID int64, pair domain.KeyValue) (int64, error) {
	query := fmt.Sprintf("INSERT INTO %s (parent_response_id, key, value, is_on) VALUES (?, ?, ?, ?)", pairTable(kind))
	res, err := ex.ExecContext(ctx, query, responseID, pair.Key, pair.Value, pair.On)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}
	return res.LastInsertId()
}

// execOne runs a statement that must touch exactly one row
func execOne(ctx context.Context, ex execer, query string, args ...any) error {
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func pairTable(kind domain.PairKind) string {
	if kind == domain.Header {
		return "header"
	}
	return "query_param"
}

// likePattern lowercases s and escapes LIKE wildcards so the search is a
// plain substring match.
func likePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(s)) + "%"
}
