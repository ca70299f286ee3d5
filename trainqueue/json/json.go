// Package json implements trainqueue/redisq's EncodeDecoder by
// marshaling a Block as JSON.
package json

import (
	"context"
	"encoding/json"

	"github.com/mjuarezm/Arborist/trainqueue"
)

// BlockEncodeDecoder encodes and decodes trainqueue.Block values as JSON.
type BlockEncodeDecoder struct{}

// Encode marshals b as JSON.
func (BlockEncodeDecoder) Encode(ctx context.Context, b *trainqueue.Block) ([]byte, error) {
	return json.Marshal(b)
}

// Decode unmarshals data into a *trainqueue.Block.
func (BlockEncodeDecoder) Decode(ctx context.Context, data []byte) (*trainqueue.Block, error) {
	var b trainqueue.Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
