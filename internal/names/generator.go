// Package names generates human-readable daemon instance names in the
// "adjective-noun" form, drawn from light and painting vocabulary.
//
// An instance name identifies one lumend process in health output and
// logs when several daemons share a Redis cache or sit behind one load
// balancer. Operators can set their own with --name; a generated one is
// used otherwise.
//
// Examples: "luminous-vermeer", "gilded-lantern", "hazy-ultramarine"
package names

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// MaxLength bounds an instance name so it fits a DNS label.
const MaxLength = 63

var adjectives = []string{
	// Light
	"bright", "brilliant", "dappled", "dazzling", "dim",
	"flickering", "gleaming", "glowing", "hazy", "incandescent",
	"iridescent", "lucent", "luminous", "lustrous", "misty",
	"opalescent", "pale", "radiant", "shimmering", "shining",
	"shadowed", "sparkling", "sunlit", "twilit", "vivid",

	// Painting and texture
	"abstract", "bold", "burnished", "chalky", "gilded",
	"glazed", "impasto", "inked", "lacquered", "layered",
	"matte", "muted", "pastel", "smudged", "stippled",
	"textured", "tinted", "washed", "woven",

	// Mood
	"calm", "dreamy", "gentle", "quiet", "serene",
	"still", "tender", "wistful",
}

var nouns = []string{
	// Painters
	"cassatt", "cezanne", "hokusai", "kahlo", "klimt",
	"matisse", "monet", "morisot", "okeeffe", "rembrandt",
	"rothko", "seurat", "turner", "vermeer", "whistler",

	// Pigments
	"cadmium", "carmine", "cerulean", "cobalt", "crimson",
	"indigo", "madder", "ochre", "saffron", "sepia",
	"sienna", "umber", "ultramarine", "vermilion", "viridian",

	// Light and optics
	"aurora", "beacon", "candle", "dawn", "dusk",
	"ember", "flare", "halo", "lantern", "lens",
	"rainbow", "ray", "spectrum", "sunbeam", "zenith",

	// Studio
	"canvas", "easel", "fresco", "mosaic", "palette",
	"sketch", "study", "vignette",
}

var validName = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Generate returns a random "adjective-noun" instance name.
func Generate() string {
	adjective := adjectives[randomIndex(len(adjectives))]
	noun := nouns[randomIndex(len(nouns))]
	return fmt.Sprintf("%s-%s", adjective, noun)
}

// randomIndex returns a uniform index in [0, max) from crypto/rand.
func randomIndex(max int) int {
	if max <= 0 {
		return 0
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}

	return int(n.Int64())
}

// Validate checks a user supplied instance name: lowercase letters, digits
// and inner hyphens, at most MaxLength characters.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("instance name cannot be empty")
	}
	if len(name) > MaxLength {
		return fmt.Errorf("instance name exceeds %d characters", MaxLength)
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("instance name %q must contain only lowercase letters, digits and inner hyphens", name)
	}
	return nil
}
