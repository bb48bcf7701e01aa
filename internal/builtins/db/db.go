// Package db exposes the sql builtins: connections are integer handles,
// queries and statements run on background goroutines and come back as
// futures carrying plain row data.
package db

import (
	"database/sql"
	"errors"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/solisoft/soli-lang-sub001/internal/object"
)

var errInvalidHandle = errors.New("invalid connection handle")

var (
	mu           sync.Mutex
	nextHandle   int64 = 1
	connections        = map[int64]*sql.DB{}
	transactions       = map[int64]*sql.Tx{}

	defaultDriver string
	defaultDSN    string
)

// SetDefault records the project-file connection used by a bare
// db_connect() call.
func SetDefault(driver, dsn string) {
	mu.Lock()
	defaultDriver = driver
	defaultDSN = dsn
	mu.Unlock()
}

// Register defines the db_* builtins in env.
func Register(env *object.Environment) {
	builtins := []*object.NativeFunction{
		{Name: "db_connect", Arity: object.Variadic, Fn: dbConnect},
		{Name: "db_query", Arity: object.Variadic, Fn: dbQuery},
		{Name: "db_exec", Arity: object.Variadic, Fn: dbExec},
		{Name: "db_begin", Arity: 1, Fn: dbBegin},
		{Name: "db_commit", Arity: 1, Fn: dbCommit},
		{Name: "db_rollback", Arity: 1, Fn: dbRollback},
		{Name: "db_close", Arity: 1, Fn: dbClose},
	}
	for _, b := range builtins {
		env.Define(b.Name, b)
	}
}

func dbConnect(args ...object.Object) object.Object {
	var driverName, dsnValue string

	switch len(args) {
	case 0:
		mu.Lock()
		driverName, dsnValue = defaultDriver, defaultDSN
		mu.Unlock()
		if driverName == "" {
			return object.NewError("db_connect() needs a driver and dsn: no [database] section in soli.toml")
		}
	case 2:
		driver, ok := args[0].(*object.String)
		if !ok {
			return object.NewError("db_connect() expects String driver, got %s", args[0].Type())
		}
		dsn, ok := args[1].(*object.String)
		if !ok {
			return object.NewError("db_connect() expects String dsn, got %s", args[1].Type())
		}
		driverName, dsnValue = driver.Value, dsn.Value
	default:
		return object.NewError("wrong number of arguments. got=%d, want=0 or 2", len(args))
	}

	db, err := sql.Open(driverName, dsnValue)
	if err != nil {
		return object.NewError("failed to open connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return object.NewError("failed to ping database: %v", err)
	}

	mu.Lock()
	id := nextHandle
	nextHandle++
	connections[id] = db
	mu.Unlock()

	return &object.Integer{Value: id}
}

func dbQuery(args ...object.Object) object.Object {
	if len(args) < 2 {
		return object.NewError("db_query() expects a connection and a query")
	}
	id, errObj := handleArg(args[0], "db_query")
	if errObj != nil {
		return errObj
	}
	query, ok := args[1].(*object.String)
	if !ok {
		return object.NewError("db_query() expects String query, got %s", args[1].Type())
	}

	params, errObj := bindParams(args[2:])
	if errObj != nil {
		return errObj
	}

	return object.NewFuture(object.FutureRows, func() (any, error) {
		rows, err := runQuery(id, query.Value, params)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanRows(rows)
	})
}

func dbExec(args ...object.Object) object.Object {
	if len(args) < 2 {
		return object.NewError("db_exec() expects a connection and a statement")
	}
	id, errObj := handleArg(args[0], "db_exec")
	if errObj != nil {
		return errObj
	}
	stmt, ok := args[1].(*object.String)
	if !ok {
		return object.NewError("db_exec() expects String statement, got %s", args[1].Type())
	}

	params, errObj := bindParams(args[2:])
	if errObj != nil {
		return errObj
	}

	return object.NewFuture(object.FutureExec, func() (any, error) {
		result, err := runExec(id, stmt.Value, params)
		if err != nil {
			return nil, err
		}
		affected, _ := result.RowsAffected()
		lastID, _ := result.LastInsertId()
		return map[string]any{
			"rowsAffected": affected,
			"lastInsertId": lastID,
		}, nil
	})
}

func dbBegin(args ...object.Object) object.Object {
	id, errObj := handleArg(args[0], "db_begin")
	if errObj != nil {
		return errObj
	}

	mu.Lock()
	defer mu.Unlock()
	db, ok := connections[id]
	if !ok {
		return object.NewError("invalid connection handle")
	}
	if _, open := transactions[id]; open {
		return object.NewError("transaction already open on this connection")
	}

	tx, err := db.Begin()
	if err != nil {
		return object.NewError("failed to begin transaction: %v", err)
	}
	transactions[id] = tx
	return args[0]
}

func dbCommit(args ...object.Object) object.Object {
	id, errObj := handleArg(args[0], "db_commit")
	if errObj != nil {
		return errObj
	}

	mu.Lock()
	tx, ok := transactions[id]
	delete(transactions, id)
	mu.Unlock()
	if !ok {
		return object.NewError("no open transaction on this connection")
	}
	if err := tx.Commit(); err != nil {
		return object.NewError("failed to commit transaction: %v", err)
	}
	return args[0]
}

func dbRollback(args ...object.Object) object.Object {
	id, errObj := handleArg(args[0], "db_rollback")
	if errObj != nil {
		return errObj
	}

	mu.Lock()
	tx, ok := transactions[id]
	delete(transactions, id)
	mu.Unlock()
	if !ok {
		return object.NewError("no open transaction on this connection")
	}
	if err := tx.Rollback(); err != nil {
		return object.NewError("failed to rollback transaction: %v", err)
	}
	return args[0]
}

func dbClose(args ...object.Object) object.Object {
	id, errObj := handleArg(args[0], "db_close")
	if errObj != nil {
		return errObj
	}

	mu.Lock()
	defer mu.Unlock()
	if tx, ok := transactions[id]; ok {
		tx.Rollback()
		delete(transactions, id)
	}
	if db, ok := connections[id]; ok {
		db.Close()
		delete(connections, id)
	}
	return object.NULL
}

func handleArg(arg object.Object, name string) (int64, object.Object) {
	id, ok := arg.(*object.Integer)
	if !ok {
		return 0, object.NewError("%s() expects Int connection handle, got %s", name, arg.Type())
	}
	return id.Value, nil
}

// bindParams converts script values into driver arguments before any
// goroutine starts; objects never cross the thread boundary.
func bindParams(args []object.Object) ([]any, object.Object) {
	params := make([]any, len(args))
	for i, arg := range args {
		v, err := object.ObjectToGo(arg)
		if err != nil {
			return nil, object.NewError("cannot bind %s as a query parameter", arg.Type())
		}
		params[i] = v
	}
	return params, nil
}

func runQuery(id int64, query string, params []any) (*sql.Rows, error) {
	mu.Lock()
	tx, isTx := transactions[id]
	db, ok := connections[id]
	mu.Unlock()

	if isTx {
		return tx.Query(query, params...)
	}
	if !ok {
		return nil, errInvalidHandle
	}
	return db.Query(query, params...)
}

func runExec(id int64, stmt string, params []any) (sql.Result, error) {
	mu.Lock()
	tx, isTx := transactions[id]
	db, ok := connections[id]
	mu.Unlock()

	if isTx {
		return tx.Exec(stmt, params...)
	}
	if !ok {
		return nil, errInvalidHandle
	}
	return db.Exec(stmt, params...)
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, isBytes := values[i].([]byte); isBytes {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
