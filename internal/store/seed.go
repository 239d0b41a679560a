package store

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// SeedTopping is one catalog entry in a seed set. Display order follows
// position in the seed.
type SeedTopping struct {
	Name  string `toml:"name"`
	Emoji string `toml:"emoji"`
}

// seedFile is the on-disk TOML shape for a custom catalog seed:
//
//	[[topping]]
//	name  = "Ketchup"
//	emoji = "🍅"
type seedFile struct {
	Toppings []SeedTopping `toml:"topping"`
}

// DefaultCatalog returns the built-in topping seed used when no seed file is
// configured. It is also what ClearAll resets the catalog to.
func DefaultCatalog() []SeedTopping {
	return []SeedTopping{
		{Name: "Ketchup", Emoji: "🍅"},
		{Name: "Mustard", Emoji: "🌶️"},
		{Name: "Onions", Emoji: "🧅"},
		{Name: "Relish", Emoji: "🥒"},
		{Name: "Cheese", Emoji: "🧀"},
		{Name: "Chili", Emoji: "🫘"},
		{Name: "Sauerkraut", Emoji: "🥬"},
		{Name: "Jalapeños", Emoji: "🌶️"},
	}
}

// LoadSeed reads a TOML catalog seed file. An empty topping list is an
// error: an empty catalog would make every add fail validation.
func LoadSeed(path string) ([]SeedTopping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read seed file: %w", err)
	}

	var f seedFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("store: parse seed file %s: %w", path, err)
	}
	if len(f.Toppings) == 0 {
		return nil, fmt.Errorf("store: seed file %s defines no toppings", path)
	}
	for i, t := range f.Toppings {
		if t.Name == "" {
			return nil, fmt.Errorf("store: seed file %s: topping %d has no name", path, i)
		}
	}
	return f.Toppings, nil
}
