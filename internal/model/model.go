package model

import (
	"fmt"
	"sync"
)

// Backend supplies the raw microdata a Model computes over. The SQLite
// dataset store is the production implementation; tests use in-memory fakes.
type Backend interface {
	// Frame returns the population frame for an entity level.
	Frame(entity Entity) (*Frame, error)
	// Column returns the native entity of a variable and its values keyed
	// by entity id for one year. Returns ErrUnknownVariable when the
	// dataset has no such (variable, year) pair.
	Column(variable string, year int) (Entity, map[int64]float64, error)
	// Version identifies the dataset/model build, surfaced in run metadata.
	Version() string
}

// Model answers Calculate queries, converting variables between entity
// levels the way the upstream microsimulation library does: summing when
// moving to a containing group, broadcasting when moving to members.
type Model struct {
	backend Backend

	mu     sync.Mutex
	frames map[Entity]*Frame
}

// New wraps a backend in a Model. Frames are loaded lazily and cached for
// the lifetime of the model.
func New(b Backend) *Model {
	return &Model{backend: b, frames: make(map[Entity]*Frame)}
}

// Version reports the dataset/model build identifier.
func (m *Model) Version() string { return m.backend.Version() }

// Calculate evaluates one variable for one year at the requested entity
// level. Records missing from the stored column read as zero, matching the
// sparse storage convention of the dataset.
func (m *Model) Calculate(variable string, year int, mapTo Entity) (*Series, error) {
	native, col, err := m.backend.Column(variable, year)
	if err != nil {
		return nil, err
	}
	nf, err := m.frame(native)
	if err != nil {
		return nil, err
	}
	if native == mapTo {
		return NewSeries(alignColumn(col, nf.IDs), nf.Weights)
	}
	tf, err := m.frame(mapTo)
	if err != nil {
		return nil, err
	}

	switch {
	case native == EntityPerson && mapTo == EntityBenUnit:
		return NewSeries(sumBy(col, nf.IDs, nf.BenUnits, tf.IDs), tf.Weights)
	case native == EntityPerson && mapTo == EntityHousehold:
		return NewSeries(sumBy(col, nf.IDs, nf.Households, tf.IDs), tf.Weights)
	case native == EntityBenUnit && mapTo == EntityHousehold:
		return NewSeries(sumBy(col, nf.IDs, nf.Households, tf.IDs), tf.Weights)
	case native == EntityBenUnit && mapTo == EntityPerson:
		return NewSeries(broadcast(col, tf.BenUnits), tf.Weights)
	case native == EntityHousehold && mapTo == EntityPerson:
		return NewSeries(broadcast(col, tf.Households), tf.Weights)
	case native == EntityHousehold && mapTo == EntityBenUnit:
		return NewSeries(broadcast(col, tf.Households), tf.Weights)
	}
	return nil, fmt.Errorf("cannot map %q from %s to %s", variable, native, mapTo)
}

func (m *Model) frame(entity Entity) (*Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.frames[entity]; ok {
		return f, nil
	}
	f, err := m.backend.Frame(entity)
	if err != nil {
		return nil, fmt.Errorf("loading %s frame: %w", entity, err)
	}
	m.frames[entity] = f
	return f, nil
}

// alignColumn orders a sparse id-keyed column along a frame's id order.
func alignColumn(col map[int64]float64, ids []int64) []float64 {
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = col[id]
	}
	return out
}

// sumBy aggregates member values into their parent groups, then aligns the
// totals along the target frame's id order.
func sumBy(col map[int64]float64, memberIDs, groupOf, targetIDs []int64) []float64 {
	totals := make(map[int64]float64, len(targetIDs))
	for i, id := range memberIDs {
		totals[groupOf[i]] += col[id]
	}
	return alignColumn(totals, targetIDs)
}

// broadcast assigns each member its group's value.
func broadcast(col map[int64]float64, groupOf []int64) []float64 {
	out := make([]float64, len(groupOf))
	for i, g := range groupOf {
		out[i] = col[g]
	}
	return out
}
