package enums

import "fmt"

// PetSpecies classifies a listing in the catalog.
type PetSpecies string

const (
	PetSpeciesDog   PetSpecies = "dog"
	PetSpeciesCat   PetSpecies = "cat"
	PetSpeciesBird  PetSpecies = "bird"
	PetSpeciesFish  PetSpecies = "fish"
	PetSpeciesOther PetSpecies = "other"
)

var validPetSpecies = []PetSpecies{
	PetSpeciesDog,
	PetSpeciesCat,
	PetSpeciesBird,
	PetSpeciesFish,
	PetSpeciesOther,
}

// String implements fmt.Stringer.
func (p PetSpecies) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PetSpecies.
func (p PetSpecies) IsValid() bool {
	for _, candidate := range validPetSpecies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePetSpecies converts raw input into a PetSpecies.
func ParsePetSpecies(value string) (PetSpecies, error) {
	for _, candidate := range validPetSpecies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pet species %q", value)
}
