// Package mongo loads a dataset.Matrix from a MongoDB collection, one
// document per row, using gopkg.in/mgo.v2.
package mongo

import (
	"fmt"

	"github.com/mjuarezm/Arborist/dataset"
	"github.com/mjuarezm/Arborist/feature"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// ReadMatrix iterates every document in collection and builds a
// dataset.Matrix from the fields named by cols and, if responseName is
// non-empty, the response field. Every field value is formatted with %v
// and handed to dataset.Builder as a string, which parses numeric columns
// as float64 and matches factor and response values against level labels.
func ReadMatrix(session *mgo.Session, collection string, cols []feature.ColumnSpec, responseName string) (*dataset.Matrix, error) {
	bld, err := dataset.NewBuilder(cols, responseName)
	if err != nil {
		return nil, err
	}

	iter := session.DB("").C(collection).Find(nil).Iter()
	defer iter.Close()

	var doc bson.M
	for line := 1; iter.Next(&doc); line++ {
		values := make(map[string]string, len(cols))
		for _, c := range cols {
			if c.Name == responseName {
				continue
			}
			v, ok := doc[c.Name]
			if !ok {
				return nil, fmt.Errorf("dataset/mongo: document %d is missing field %q", line, c.Name)
			}
			values[c.Name] = fmt.Sprintf("%v", v)
		}
		var responseValue string
		if responseName != "" {
			v, ok := doc[responseName]
			if !ok {
				return nil, fmt.Errorf("dataset/mongo: document %d is missing response field %q", line, responseName)
			}
			responseValue = fmt.Sprintf("%v", v)
		}
		if err := bld.AddRow(values, responseValue); err != nil {
			return nil, fmt.Errorf("dataset/mongo: document %d: %v", line, err)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("dataset/mongo: iterating %s: %v", collection, err)
	}
	return bld.Matrix(), nil
}

// EnsureIndexes creates a sparse background index on every declared column
// of collection, mirroring the write path's access pattern for large
// datasets.
func EnsureIndexes(session *mgo.Session, collection string, cols []feature.ColumnSpec) error {
	c := session.DB("").C(collection)
	for _, col := range cols {
		idx := mgo.Index{Key: []string{col.Name}, Background: true, Sparse: true}
		if err := c.EnsureIndex(idx); err != nil {
			return fmt.Errorf("dataset/mongo: indexing %s.%s: %v", collection, col.Name, err)
		}
	}
	return nil
}
