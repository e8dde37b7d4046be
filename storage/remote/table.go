package remote

import (
	"context"
	"encoding/json"
)

// table binds a backend table to its wire record W and its domain entity D.
type table[W any, D any] struct {
	client   *Client
	name     string
	fields   []Field
	orderBy  []OrderBy
	notFound error
	decode   func(W) D
	encode   func(D) W
}

func (t table[W, D]) query(ctx context.Context, where ...Condition) ([]D, error) {
	var raws []json.RawMessage
	params := FetchParams{Fields: t.fields, Where: where, OrderBy: t.orderBy}
	if err := t.client.fetch(ctx, t.name, params, &raws); err != nil {
		return nil, err
	}
	recs, err := decodeAll[W](raws, t.name)
	if err != nil {
		return nil, err
	}
	entities := make([]D, 0, len(recs))
	for _, rec := range recs {
		entities = append(entities, t.decode(rec))
	}
	return entities, nil
}

func (t table[W, D]) get(ctx context.Context, id int) (D, error) {
	var zero D
	raw, err := t.client.get(ctx, t.name, id, t.fields)
	if err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, t.notFound
	}
	rec, err := decode[W](raw, t.name)
	if err != nil {
		return zero, err
	}
	return t.decode(rec), nil
}

func (t table[W, D]) create(ctx context.Context, entity D) (D, error) {
	return t.save(ctx, t.client.create, entity)
}

func (t table[W, D]) update(ctx context.Context, entity D) (D, error) {
	return t.save(ctx, t.client.update, entity)
}

func (t table[W, D]) save(ctx context.Context, send func(context.Context, string, interface{}) (json.RawMessage, error), entity D) (D, error) {
	var zero D
	raw, err := send(ctx, t.name, t.encode(entity))
	if err != nil {
		return zero, err
	}
	rec, err := decode[W](raw, t.name)
	if err != nil {
		return zero, err
	}
	return t.decode(rec), nil
}

// remove deletes the record and returns it as it was.
func (t table[W, D]) remove(ctx context.Context, id int) (D, error) {
	entity, err := t.get(ctx, id)
	if err != nil {
		return entity, err
	}
	if err = t.client.delete(ctx, t.name, id); err != nil {
		var zero D
		return zero, err
	}
	return entity, nil
}
