/*
Package yaml provides methods to parse feature.ColumnSpec declarations,
also known as predictor metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"io/ioutil"
	"sort"

	"github.com/mjuarezm/Arborist/feature"
	yaml "gopkg.in/yaml.v2"
)

/*
ReadColumns takes a slice of bytes with a column specification in YML and
returns a slice of feature.ColumnSpec parsed from it, ordered by name for
deterministic predictor indexing, or an error.
The YML is expected to be an object containing a "columns" property. Its
value should be an object with a property per column: either the string
"numeric" for a numerically-ordered predictor, or a list of level names for
a bounded-cardinality factor predictor.
*/
func ReadColumns(md []byte) ([]feature.ColumnSpec, error) {
	metadata := struct {
		Columns map[string]interface{}
	}{}
	err := yaml.Unmarshal(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml columns: %v", err)
	}
	if metadata.Columns == nil {
		return nil, fmt.Errorf("metadata file has no column information")
	}
	names := make([]string, 0, len(metadata.Columns))
	for name := range metadata.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]feature.ColumnSpec, 0, len(names))
	for _, name := range names {
		switch values := metadata.Columns[name].(type) {
		case string:
			specs = append(specs, feature.ColumnSpec{Name: name, Kind: feature.Numeric})
		case []interface{}:
			levels := make([]string, 0, len(values))
			for _, v := range values {
				levels = append(levels, fmt.Sprintf("%v", v))
			}
			specs = append(specs, feature.ColumnSpec{Name: name, Kind: feature.Factor, Levels: levels})
		case []string:
			specs = append(specs, feature.ColumnSpec{Name: name, Kind: feature.Factor, Levels: values})
		default:
			return nil, fmt.Errorf("invalid column declaration of type %T", values)
		}
	}
	if err := feature.Validate(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

/*
ReadColumnsFromFile takes a filepath string, reads its contents and uses
ReadColumns to parse it into a slice of feature.ColumnSpec, or returns an
error if the file cannot be opened for reading or parsed.
*/
func ReadColumnsFromFile(filepath string) ([]feature.ColumnSpec, error) {
	md, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading columns yml file %s: %v", filepath, err)
	}
	specs, err := ReadColumns(md)
	if err != nil {
		err = fmt.Errorf("parsing columns yml file %s: %v", filepath, err)
	}
	return specs, err
}
