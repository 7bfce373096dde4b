package model

import "fmt"

// Entity identifies the aggregation level a variable lives at. Persons nest
// inside benefit units, benefit units nest inside households.
type Entity string

const (
	EntityPerson    Entity = "person"
	EntityBenUnit   Entity = "benunit"
	EntityHousehold Entity = "household"
)

// ParseEntity converts a string (config, CSV import) to an Entity.
func ParseEntity(s string) (Entity, error) {
	switch Entity(s) {
	case EntityPerson, EntityBenUnit, EntityHousehold:
		return Entity(s), nil
	}
	return "", fmt.Errorf("unknown entity %q (want person, benunit or household)", s)
}

// Frame describes one entity population: record ids in a stable order, the
// survey weight of each record, and the parent group ids needed to map
// variables between entity levels. BenUnits is populated for persons only;
// Households for persons and benefit units.
type Frame struct {
	IDs        []int64
	Weights    []float64
	BenUnits   []int64
	Households []int64
}
