package valueobjects

// EntrySource records how an address entered the pool.
type EntrySource string

const (
	// EntrySourceDerived addresses come from an extended key and carry an index.
	EntrySourceDerived EntrySource = "derived"
	// EntrySourceSeeded addresses were loaded by an operator.
	EntrySourceSeeded EntrySource = "seeded"
)

func (s EntrySource) IsValid() bool {
	return s == EntrySourceDerived || s == EntrySourceSeeded
}

func (s EntrySource) String() string {
	return string(s)
}
