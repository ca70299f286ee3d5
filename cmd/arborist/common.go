package main

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/mjuarezm/Arborist/dataset"
	"github.com/mjuarezm/Arborist/dataset/csv"
	"github.com/mjuarezm/Arborist/dataset/mongo"
	datasql "github.com/mjuarezm/Arborist/dataset/sql"
	"github.com/mjuarezm/Arborist/feature"
	"github.com/mjuarezm/Arborist/feature/yaml"
	mgo "gopkg.in/mgo.v2"
)

// inputConfig holds the flags shared by every subcommand that loads a
// dataset.Matrix: where the metadata and row data live, and which column
// (if any) is the response.
type inputConfig struct {
	metadataInput string
	dataInput     string
	sqlDriver     string
	sqlQuery      string
	sqlTable      string
	mongoColl     string
	responseName  string
}

func (ic *inputConfig) addFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&ic.metadataInput, "metadata", "m", "", "path to a YML file declaring the dataset's columns (required)")
	cmd.PersistentFlags().StringVarP(&ic.dataInput, "input", "i", "", "CSV file path (defaults to STDIN), a PostgreSQL/MongoDB connection URL, or a SQLite3 .db file path")
	cmd.PersistentFlags().StringVar(&ic.sqlDriver, "sql-driver", "", "database/sql driver to use when --input is a DB connection string: postgres or sqlite3 (auto-detected from --input when empty)")
	cmd.PersistentFlags().StringVar(&ic.sqlQuery, "sql-query", "", "SQL query to run against --input (defaults to SELECT of --metadata's columns from --sql-table)")
	cmd.PersistentFlags().StringVar(&ic.sqlTable, "sql-table", "", "table name to build the default --sql-query against")
	cmd.PersistentFlags().StringVar(&ic.mongoColl, "mongo-collection", "", "MongoDB collection to read when --input is a mongodb:// URL")
	cmd.PersistentFlags().StringVarP(&ic.responseName, "response", "r", "", "name of the column to train against or predict (required for train, oob and predict)")
}

func (ic *inputConfig) columns() ([]feature.ColumnSpec, error) {
	if ic.metadataInput == "" {
		return nil, fmt.Errorf("required metadata flag was not set")
	}
	return yaml.ReadColumnsFromFile(ic.metadataInput)
}

// loadMatrix reads the dataset named by ic's flags, honoring its driver
// (CSV file/STDIN, PostgreSQL, SQLite3, or MongoDB) by sniffing
// --input's scheme/suffix the way the teacher's CLI picks an adapter.
func (ic *inputConfig) loadMatrix(ctx context.Context, cols []feature.ColumnSpec, log func(string, ...interface{})) (*dataset.Matrix, error) {
	switch {
	case strings.HasPrefix(ic.dataInput, "postgresql://") || strings.HasPrefix(ic.dataInput, "postgres://"):
		log("Opening PostgreSQL connection to read dataset...")
		return ic.sqlMatrix(ctx, "postgres", cols)
	case strings.HasPrefix(ic.dataInput, "mongodb://"):
		log("Opening MongoDB connection to read dataset...")
		return ic.mongoMatrix(cols)
	case strings.HasSuffix(ic.dataInput, ".db"):
		log("Opening SQLite3 file %s to read dataset...", ic.dataInput)
		return ic.sqlMatrix(ctx, "sqlite3", cols)
	default:
		log("Reading dataset from %s...", inputDescription(ic.dataInput))
		return csv.ReadMatrixFromFile(ic.dataInput, cols, ic.responseName)
	}
}

func inputDescription(path string) string {
	if path == "" {
		return "STDIN"
	}
	return path
}

func (ic *inputConfig) sqlMatrix(ctx context.Context, driver string, cols []feature.ColumnSpec) (*dataset.Matrix, error) {
	if ic.sqlDriver != "" {
		driver = ic.sqlDriver
	}
	db, err := datasql.Open(driver, ic.dataInput)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	query := ic.sqlQuery
	if query == "" {
		if ic.sqlTable == "" {
			return nil, fmt.Errorf("one of --sql-query or --sql-table is required when reading from a SQL input")
		}
		query = datasql.BuildSelect(ic.sqlTable, cols, ic.responseName)
	}
	return datasql.ReadMatrix(ctx, db, query, cols, ic.responseName)
}

func (ic *inputConfig) mongoMatrix(cols []feature.ColumnSpec) (*dataset.Matrix, error) {
	if ic.mongoColl == "" {
		return nil, fmt.Errorf("--mongo-collection is required when reading from a mongodb:// input")
	}
	session, err := mgo.Dial(ic.dataInput)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %v", ic.dataInput, err)
	}
	defer session.Close()
	return mongo.ReadMatrix(session, ic.mongoColl, cols, ic.responseName)
}
