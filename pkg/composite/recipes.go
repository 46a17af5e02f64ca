package composite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// Recipe names recognized by Bands (§4.7). The channel order is
// (R, G, B); a recipe may name fewer than three bands, in which case the
// unused channels are zero (§4.7 "Missing bands become zero channels").
const (
	RecipeTrueColor     = "true_color"
	RecipeNaturalColor  = "natural_color"
	RecipeFireDetection = "fire_detection"
	RecipeDustAsh       = "dust_ash"
	RecipeDayCloudPhase = "day_cloud_phase"
	RecipeAirmass       = "airmass"
)

// defaultRecipesYAML is the built-in recipe table (§4.7), approximating
// the standard ABI multispectral RGB recipes with direct band triplets
// rather than the full derived-channel math (e.g. true color's synthetic
// green), which is out of scope here. Kept as YAML, not a Go map literal,
// so the same decode path also serves COMPOSITE_RECIPES_FILE overrides.
var defaultRecipesYAML = []byte(`
true_color:      [C02, C03, C01]
natural_color:   [C05, C03, C02]
fire_detection:  [C07, C06, C02]
dust_ash:        [C15, C13, C11]
day_cloud_phase: [C13, C02, C05]
airmass:         [C08, C10, C13]
`)

var bandsByRecipe = mustParseRecipes(defaultRecipesYAML)

func init() {
	path := os.Getenv("COMPOSITE_RECIPES_FILE")
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("composite: reading COMPOSITE_RECIPES_FILE %q: %v", path, err))
	}
	bandsByRecipe = mustParseRecipes(data)
}

func mustParseRecipes(data []byte) map[string][3]catalogmodel.Band {
	var raw map[string][3]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		panic(fmt.Sprintf("composite: invalid recipe table: %v", err))
	}
	out := make(map[string][3]catalogmodel.Band, len(raw))
	for name, bands := range raw {
		out[name] = [3]catalogmodel.Band{
			catalogmodel.Band(bands[0]),
			catalogmodel.Band(bands[1]),
			catalogmodel.Band(bands[2]),
		}
	}
	return out
}

// Bands returns the (R,G,B) band triplet for recipe, or false if recipe
// is not configured.
func Bands(recipe string) ([3]catalogmodel.Band, bool) {
	bands, ok := bandsByRecipe[recipe]
	return bands, ok
}
