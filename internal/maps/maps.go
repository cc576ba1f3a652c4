// Package maps is the map-definition asset store. A map names the teams a
// lobby can field and the geometry the simulation runs on.
package maps

type TeamConfig struct {
	Color      string `json:"color"`
	MaxPlayers int    `json:"maxPlayers"`
}

type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Layer groups tiles that share a movement-cost modifier, e.g. forest.
type Layer struct {
	Kind         string  `json:"kind"`
	CostModifier float64 `json:"costModifier"`
	Tiles        []Tile  `json:"tiles"`
}

// Marker kinds.
const (
	MarkerSpawn = "Spawn"
	MarkerFlag  = "Flag"
)

// Marker tags a tile with gameplay meaning. Group ties a marker to a team.
type Marker struct {
	Tile        Tile   `json:"tile"`
	Group       string `json:"group"`
	Kind        string `json:"kind"`
	SpawnNumber int    `json:"spawnNumber,omitempty"`
}

// Definition is the geometry half of a map: a height grid plus layers and
// markers. Tiles holds Height rows of Width values.
type Definition struct {
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Tiles   [][]float64 `json:"tiles"`
	Layers  []Layer     `json:"layers"`
	Markers []Marker    `json:"markers"`
}

type Config struct {
	Teams map[string]TeamConfig `json:"teams"`
	Map   Definition            `json:"map"`
}

// Store resolves a map name to its configuration.
type Store interface {
	Lookup(name string) (*Config, bool)
	ListNames() []string
}
