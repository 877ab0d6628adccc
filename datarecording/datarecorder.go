// Package datarecording stores simulation output in SQLite databases.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DefaultBatchSize is the number of buffered rows that triggers a flush.
const DefaultBatchSize = 100000

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers a row for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all tables in creation order.
	ListTables() []string

	// Flush writes all the buffered rows into the database.
	Flush()

	// Close flushes and closes the database.
	Close() error
}

// NewDataRecorder creates a DataRecorder writing to path.sqlite3. An empty
// path picks a unique name. The file must not exist.
func NewDataRecorder(path string) DataRecorder {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: DefaultBatchSize,
		tables:    make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

// NewDataRecorderWithDB creates a DataRecorder writing to a given database.
func NewDataRecorderWithDB(db *sql.DB) DataRecorder {
	w := &sqliteWriter{
		DB:        db,
		batchSize: DefaultBatchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter is the writer that writes data into SQLite database
type sqliteWriter struct {
	*sql.DB

	dbName     string
	tables     map[string]*table
	tableOrder []string
	batchSize  int
	entryCount int
	closed     bool
}

// init establishes a connection to the database.
func (t *sqliteWriter) init() {
	if t.dbName == "" {
		t.dbName = "stateneuron_" + xid.New().String()
	}

	filename := t.dbName
	if !strings.HasSuffix(filename, ".sqlite3") {
		filename += ".sqlite3"
	}

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	t.DB = db
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	types := reflect.TypeOf(entry)
	if types == nil || types.Kind() != reflect.Struct {
		return errors.New("entry must be a struct")
	}

	for i := 0; i < types.NumField(); i++ {
		field := types.Field(i)

		if !isAllowedKind(field.Type.Kind()) {
			return fmt.Errorf("field %s of kind %s cannot be stored",
				field.Name, field.Type.Kind())
		}
	}

	return nil
}

func (t *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	err := checkStructFields(sampleEntry)
	if err != nil {
		panic(err)
	}

	if _, exists := t.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	n := structs.Names(sampleEntry)
	fields := strings.Join(n, ", \n\t")

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	t.mustExecute(createTableSQL)

	t.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
	}
	t.tableOrder = append(t.tableOrder, tableName)
}

func (t *sqliteWriter) InsertData(tableName string, entry any) {
	table, exists := t.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != table.structType {
		panic(fmt.Sprintf("table %s stores %s, not %T",
			tableName, table.structType, entry))
	}

	table.entries = append(table.entries, entry)

	t.entryCount++
	if t.entryCount >= t.batchSize {
		t.Flush()
	}
}

func (t *sqliteWriter) ListTables() []string {
	return slices.Clone(t.tableOrder)
}

func (t *sqliteWriter) Flush() {
	if t.entryCount == 0 || t.closed {
		return
	}

	tx, err := t.Begin()
	if err != nil {
		panic(err)
	}

	for _, tableName := range t.tableOrder {
		table := t.tables[tableName]
		if len(table.entries) == 0 {
			continue
		}

		stmt := prepareStatement(tx, tableName, table.entries[0])

		for _, entry := range table.entries {
			v := []any{}

			values := reflect.ValueOf(entry)
			for i := 0; i < values.NumField(); i++ {
				v = append(v, values.Field(i).Interface())
			}

			_, err := stmt.Exec(v...)
			if err != nil {
				panic(err)
			}
		}

		table.entries = nil

		stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	t.entryCount = 0
}

func (t *sqliteWriter) Close() error {
	if t.closed {
		return nil
	}

	t.Flush()
	t.closed = true

	return t.DB.Close()
}

func (t *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := t.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func prepareStatement(tx *sql.Tx, table string, entry any) *sql.Stmt {
	n := structs.Names(entry)
	for i := 0; i < len(n); i++ {
		n[i] = "?"
	}

	entryToFill := "(" + strings.Join(n, ", ") + ")"
	sqlStr := "INSERT INTO " + table + " VALUES " + entryToFill

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	return stmt
}
