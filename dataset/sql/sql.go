// Package sql loads a dataset.Matrix from a SQL database, using database/sql
// against whichever driver the caller has registered (lib/pq for
// PostgreSQL, mattn/go-sqlite3 for SQLite — both wired by this module's
// cmd/arborist CLI).
package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mjuarezm/Arborist/dataset"
	"github.com/mjuarezm/Arborist/feature"
)

// ReadMatrix runs query against db and builds a dataset.Matrix from the
// result set. query's result columns must be named exactly like cols, and a
// non-empty responseName must be one of cols; column order in the result
// set does not matter. Numeric cells are read as float64, factor and response cells as
// their level's string label.
func ReadMatrix(ctx context.Context, db *sql.DB, query string, cols []feature.ColumnSpec, responseName string) (*dataset.Matrix, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dataset/sql: running query: %v", err)
	}
	defer rows.Close()

	resultCols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dataset/sql: reading result columns: %v", err)
	}
	pos := make(map[string]int, len(resultCols))
	for i, name := range resultCols {
		pos[name] = i
	}
	for _, c := range cols {
		if _, ok := pos[c.Name]; !ok {
			return nil, fmt.Errorf("dataset/sql: query result is missing declared column %q", c.Name)
		}
	}
	if responseName != "" {
		if _, ok := pos[responseName]; !ok {
			return nil, fmt.Errorf("dataset/sql: query result is missing response column %q", responseName)
		}
	}

	bld, err := dataset.NewBuilder(cols, responseName)
	if err != nil {
		return nil, err
	}

	scanTargets := make([]interface{}, len(resultCols))
	cells := make([]sql.NullString, len(resultCols))
	for i := range cells {
		scanTargets[i] = &cells[i]
	}

	for line := 1; rows.Next(); line++ {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("dataset/sql: scanning row %d: %v", line, err)
		}
		values := make(map[string]string, len(cols))
		for _, c := range cols {
			if c.Name == responseName {
				continue
			}
			values[c.Name] = cells[pos[c.Name]].String
		}
		var responseValue string
		if responseName != "" {
			responseValue = cells[pos[responseName]].String
		}
		if err := bld.AddRow(values, responseValue); err != nil {
			return nil, fmt.Errorf("dataset/sql: row %d: %v", line, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dataset/sql: iterating result set: %v", err)
	}
	return bld.Matrix(), nil
}

// Open is a thin wrapper over sql.Open that exists so cmd/arborist need not
// import database/sql directly to select a driver by name ("postgres" via
// lib/pq, "sqlite3" via mattn/go-sqlite3).
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("dataset/sql: opening %s: %v", driver, err)
	}
	return db, nil
}

// BuildSelect assembles `SELECT col1, col2, ... FROM table` for cols plus
// responseName, a convenience for callers that keep predictor columns and
// the response in a single table.
func BuildSelect(table string, cols []feature.ColumnSpec, responseName string) string {
	names := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		names = append(names, c.Name)
	}
	if responseName != "" {
		seen := false
		for _, c := range cols {
			if c.Name == responseName {
				seen = true
			}
		}
		if !seen {
			names = append(names, responseName)
		}
	}
	q := "SELECT "
	for i, n := range names {
		if i > 0 {
			q += ", "
		}
		q += n
	}
	q += " FROM " + table
	return q
}
