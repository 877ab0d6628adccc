package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// QueryParams selects and orders the rows returned by DataReader.Query.
type QueryParams struct {
	// Where is a SQL condition such as "Step > ? AND Node = ?".
	Where string

	// Args fill the placeholders of Where.
	Args []any

	// OrderBy lists the sort columns, for example "Step DESC".
	OrderBy string

	// Limit caps the number of rows; zero returns all of them. Offset is
	// only honored together with Limit.
	Limit  int
	Offset int
}

// DataReader reads tables written by a DataRecorder back into the structs
// that produced them.
type DataReader interface {
	// MapTable declares the struct type rows of a table decode into.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables, sorted.
	ListTables() []string

	// Query returns pointers to the decoded rows together with the number
	// of rows matching Where, ignoring Limit and Offset.
	Query(ctx context.Context, tableName string, params QueryParams) (
		rows []any,
		matched int,
		err error,
	)

	Close() error
}

type tableReader struct {
	db     *sql.DB
	tables map[string]reflect.Type
}

// NewReader opens a recorded database file.
func NewReader(dbFilename string) DataReader {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		panic(err)
	}

	return NewReaderWithDB(db)
}

// NewReaderWithDB reads from an already open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &tableReader{
		db:     db,
		tables: make(map[string]reflect.Type),
	}
}

func (r *tableReader) MapTable(tableName string, sampleEntry any) {
	r.tables[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *tableReader) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func (r *tableReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	rowType, mapped := r.tables[tableName]
	if !mapped {
		return nil, 0, fmt.Errorf("table %s is not mapped", tableName)
	}

	var matched int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+tableName+whereClause(params),
		params.Args...).Scan(&matched)
	if err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", tableName, err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT * FROM "+tableName+whereClause(params)+pageClause(params),
		params.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	decoded, err := decodeRows(rows, rowType)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", tableName, err)
	}

	return decoded, matched, nil
}

func (r *tableReader) Close() error {
	return r.db.Close()
}

func whereClause(params QueryParams) string {
	if params.Where == "" {
		return ""
	}

	return " WHERE " + params.Where
}

func pageClause(params QueryParams) string {
	var b strings.Builder

	if params.OrderBy != "" {
		b.WriteString(" ORDER BY " + params.OrderBy)
	}

	if params.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", params.Limit)

		if params.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", params.Offset)
		}
	}

	return b.String()
}

// decodeRows fills one new rowType value per row. Columns are matched to
// fields by name; columns without a field are read and dropped.
func decodeRows(rows *sql.Rows, rowType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fields := make([]int, len(columns))
	for i, col := range columns {
		fields[i] = -1
		if f, ok := rowType.FieldByName(col); ok && len(f.Index) == 1 {
			fields[i] = f.Index[0]
		}
	}

	var decoded []any
	targets := make([]any, len(columns))

	for rows.Next() {
		row := reflect.New(rowType)

		for i, field := range fields {
			if field < 0 {
				targets[i] = new(any)
				continue
			}

			targets[i] = row.Elem().Field(field).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		decoded = append(decoded, row.Interface())
	}

	return decoded, rows.Err()
}
