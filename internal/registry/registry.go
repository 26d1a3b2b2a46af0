// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package registry is the closed set of districts the dashboard tracks.
//
// The registry is immutable after construction and safe for concurrent use.
// Its order is the display order used by listings and comparisons.
package registry

// Language codes used in District.Name.
const (
	LangEnglish = "en"
	LangHindi   = "hi"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// District is one registry entry.
type District struct {
	Code        string            `json:"code"`
	Name        map[string]string `json:"name"`
	Coordinates Coordinates       `json:"coordinates"`

	// RadiusKm is the approximate extent of the district used as display
	// metadata by location detection.
	RadiusKm float64 `json:"radiusKm,omitempty"`
}

// EnglishName returns the canonical English display name.
func (d District) EnglishName() string {
	return d.Name[LangEnglish]
}

// Registry is an ordered, read-only district index.
type Registry struct {
	districts []District
	byCode    map[string]int
}

// New builds a registry from districts in the given order. Later duplicates
// of a code are ignored.
func New(districts []District) *Registry {
	r := &Registry{
		districts: make([]District, 0, len(districts)),
		byCode:    make(map[string]int, len(districts)),
	}
	for _, d := range districts {
		if _, dup := r.byCode[d.Code]; dup {
			continue
		}
		r.byCode[d.Code] = len(r.districts)
		r.districts = append(r.districts, cloneDistrict(d))
	}
	return r
}

// Default returns the Chhattisgarh registry.
func Default() *Registry {
	return New(chhattisgarh)
}

// All returns a copy of every district in registry order.
func (r *Registry) All() []District {
	out := make([]District, len(r.districts))
	for i, d := range r.districts {
		out[i] = cloneDistrict(d)
	}
	return out
}

// Get looks a district up by code.
func (r *Registry) Get(code string) (District, bool) {
	i, ok := r.byCode[code]
	if !ok {
		return District{}, false
	}
	return cloneDistrict(r.districts[i]), true
}

// Codes returns district codes in registry order.
func (r *Registry) Codes() []string {
	codes := make([]string, len(r.districts))
	for i, d := range r.districts {
		codes[i] = d.Code
	}
	return codes
}

// Len returns the number of districts.
func (r *Registry) Len() int {
	return len(r.districts)
}

func cloneDistrict(d District) District {
	names := make(map[string]string, len(d.Name))
	for k, v := range d.Name {
		names[k] = v
	}
	d.Name = names
	return d
}

var chhattisgarh = []District{
	{Code: "raipur", Name: map[string]string{LangEnglish: "Raipur", LangHindi: "रायपुर"}, Coordinates: Coordinates{Lat: 21.2514, Lng: 81.6296}, RadiusKm: 50},
	{Code: "bilaspur", Name: map[string]string{LangEnglish: "Bilaspur", LangHindi: "बिलासपुर"}, Coordinates: Coordinates{Lat: 22.0797, Lng: 82.1409}, RadiusKm: 50},
	{Code: "durg", Name: map[string]string{LangEnglish: "Durg", LangHindi: "दुर्ग"}, Coordinates: Coordinates{Lat: 21.1904, Lng: 81.2849}, RadiusKm: 40},
	{Code: "rajnandgaon", Name: map[string]string{LangEnglish: "Rajnandgaon", LangHindi: "राजनांदगांव"}, Coordinates: Coordinates{Lat: 21.0974, Lng: 81.0379}, RadiusKm: 40},
	{Code: "korba", Name: map[string]string{LangEnglish: "Korba", LangHindi: "कोरबा"}, Coordinates: Coordinates{Lat: 22.3595, Lng: 82.7501}, RadiusKm: 45},
	{Code: "raigarh", Name: map[string]string{LangEnglish: "Raigarh", LangHindi: "रायगढ़"}, Coordinates: Coordinates{Lat: 21.8974, Lng: 83.3950}, RadiusKm: 45},
	{Code: "janjgir-champa", Name: map[string]string{LangEnglish: "Janjgir-Champa", LangHindi: "जांजगीर-चांपा"}, Coordinates: Coordinates{Lat: 22.0156, Lng: 82.5772}, RadiusKm: 40},
	{Code: "mahasamund", Name: map[string]string{LangEnglish: "Mahasamund", LangHindi: "महासमुंद"}, Coordinates: Coordinates{Lat: 21.1078, Lng: 82.0984}, RadiusKm: 40},
	{Code: "bastar", Name: map[string]string{LangEnglish: "Bastar", LangHindi: "बस्तर"}, Coordinates: Coordinates{Lat: 19.0688, Lng: 81.9598}, RadiusKm: 60},
	{Code: "jashpur", Name: map[string]string{LangEnglish: "Jashpur", LangHindi: "जशपुर"}, Coordinates: Coordinates{Lat: 22.8858, Lng: 84.1411}, RadiusKm: 45},
}
