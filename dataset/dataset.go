// Package dataset ships small embedded reference datasets used when
// generating realistic field values: person names, postal addresses, phone
// area codes, ICD-10 diagnoses, and medication names. All lookups are
// index-based so a seeded random source yields deterministic picks.
package dataset

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
)

//go:embed data/*.json
var dataFS embed.FS

// Person is one demographic sample row.
type Person struct {
	FamilyName string `json:"familyName"`
	GivenName  string `json:"givenName"`
	Sex        string `json:"sex"`
}

// Address is one postal address sample row.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Diagnosis is one ICD-10-CM code with its description.
type Diagnosis struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Medication is one drug name sample row.
type Medication struct {
	Name     string `json:"name"`
	Strength string `json:"strength"`
}

// Library bundles every embedded dataset.
type Library struct {
	People      []Person
	Addresses   []Address
	AreaCodes   []string
	Diagnoses   []Diagnosis
	Medications []Medication
}

var (
	loadOnce sync.Once
	loaded   *Library
	loadErr  error
)

// Load parses the embedded datasets. The result is cached; concurrent
// callers share one copy.
func Load() (*Library, error) {
	loadOnce.Do(func() {
		loaded, loadErr = load()
	})
	return loaded, loadErr
}

func load() (*Library, error) {
	lib := &Library{}
	files := []struct {
		name string
		dst  any
	}{
		{"data/people.json", &lib.People},
		{"data/addresses.json", &lib.Addresses},
		{"data/areacodes.json", &lib.AreaCodes},
		{"data/diagnoses.json", &lib.Diagnoses},
		{"data/medications.json", &lib.Medications},
	}
	for _, f := range files {
		raw, err := dataFS.ReadFile(f.name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}
	if len(lib.People) == 0 || len(lib.Addresses) == 0 || len(lib.Diagnoses) == 0 {
		return nil, fmt.Errorf("embedded datasets are incomplete")
	}
	return lib, nil
}

// Person picks a deterministic sample for the given source.
func (l *Library) Person(rng *rand.Rand) Person {
	return l.People[rng.Intn(len(l.People))]
}

// Address picks a deterministic sample for the given source.
func (l *Library) Address(rng *rand.Rand) Address {
	return l.Addresses[rng.Intn(len(l.Addresses))]
}

// Phone builds a NANP-shaped phone number from a sampled area code.
func (l *Library) Phone(rng *rand.Rand) string {
	area := l.AreaCodes[rng.Intn(len(l.AreaCodes))]
	return fmt.Sprintf("(%s)%03d-%04d", area, 200+rng.Intn(800), rng.Intn(10000))
}

// Diagnosis picks a deterministic sample for the given source.
func (l *Library) Diagnosis(rng *rand.Rand) Diagnosis {
	return l.Diagnoses[rng.Intn(len(l.Diagnoses))]
}

// Medication picks a deterministic sample for the given source.
func (l *Library) Medication(rng *rand.Rand) Medication {
	return l.Medications[rng.Intn(len(l.Medications))]
}
