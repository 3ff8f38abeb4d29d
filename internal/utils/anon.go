package utils

import (
	"math/rand"
)

var (
	anonAdjectives = []string{"Happy", "Clever", "Swift", "Bright", "Quiet"}
	anonAnimals    = []string{"Panda", "Eagle", "Tiger", "Fox", "Wolf"}
)

// RandomAnonName returns a display name for anonymous chat connections,
// e.g. "SwiftFox". Assigned once per connection.
func RandomAnonName() string {
	return anonAdjectives[rand.Intn(len(anonAdjectives))] + anonAnimals[rand.Intn(len(anonAnimals))]
}
