package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mjuarezm/Arborist/forest"
)

func parseCodec(name string) (forest.Codec, error) {
	switch strings.ToLower(name) {
	case "", "gob":
		return forest.GobCodec, nil
	case "json":
		return forest.JSONCodec, nil
	}
	return 0, fmt.Errorf("unknown forest codec %q (valid: gob, json)", name)
}

func writeForest(path string, f *forest.Forest, codec forest.Codec) error {
	var out *os.File
	var err error
	if path == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %v", path, err)
		}
		defer out.Close()
	}
	return forest.Encode(out, f, codec)
}

func readForest(path string, codec forest.Codec) (*forest.Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v", path, err)
	}
	defer f.Close()
	return forest.Decode(f, codec)
}
