package sh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Preset is a named environment light.
type Preset struct {
	Name         string
	Coefficients Coefficients
}

// Library is a fixed, ordered catalog of light presets.
type Library struct {
	presets []Preset
}

// NewLibrary creates a library holding a copy of presets.
func NewLibrary(presets ...Preset) *Library {
	l := &Library{presets: make([]Preset, len(presets))}
	copy(l.presets, presets)
	return l
}

// DefaultLibrary returns the five reference environment captures.
func DefaultLibrary() *Library {
	return NewLibrary(referencePresets...)
}

// Len returns the number of presets.
func (l *Library) Len() int {
	return len(l.presets)
}

// Get returns the preset at index.
func (l *Library) Get(index int) (Preset, error) {
	if index < 0 || index >= len(l.presets) {
		return Preset{}, fmt.Errorf("%w: light %d (catalog has %d)", ErrOutOfRange, index, len(l.presets))
	}
	return l.presets[index], nil
}

// Names returns preset names in catalog order.
func (l *Library) Names() []string {
	names := make([]string, len(l.presets))
	for i, p := range l.presets {
		names[i] = p.Name
	}
	return names
}

// Reference capture data. Values are reference constants and must stay
// byte-identical to the published catalog.
var referencePresets = []Preset{
	{
		Name: "light 1",
		Coefficients: Coefficients{
			mgl64.Vec3{0.865754, 0.880196, 0.947154},
			mgl64.Vec3{-0.205633, -0.211215, -0.250504},
			mgl64.Vec3{0.349584, 0.365084, 0.463253},
			mgl64.Vec3{-0.0789622, -0.0750734, -0.091405},
			mgl64.Vec3{0.077691, 0.0810771, 0.0922284},
			mgl64.Vec3{-0.402685, -0.40834, -0.462763},
			mgl64.Vec3{0.328907, 0.328656, 0.370725},
			mgl64.Vec3{-0.131815, -0.140992, -0.158298},
			mgl64.Vec3{-0.0992293, -0.0983686, -0.107975},
		},
	},
	{
		Name: "light 2",
		Coefficients: Coefficients{
			mgl64.Vec3{1.90437, 1.07481, 0.857633},
			mgl64.Vec3{-0.0331074, -0.0478128, -0.0296945},
			mgl64.Vec3{0.766105, 0.294044, 0.191198},
			mgl64.Vec3{0.231872, 0.122125, 0.0905467},
			mgl64.Vec3{0.0123723, -0.0041153, -0.00260202},
			mgl64.Vec3{-0.028598, -0.0379158, -0.0262766},
			mgl64.Vec3{0.0938688, 0.0643945, 0.0726383},
			mgl64.Vec3{0.101804, -0.00522616, -0.0082345},
			mgl64.Vec3{-0.272241, -0.111701, -0.0635506},
		},
	},
	{
		Name: "light 3",
		Coefficients: Coefficients{
			mgl64.Vec3{0.941012, 0.934079, 0.922621},
			mgl64.Vec3{0.27147, 0.249407, 0.184535},
			mgl64.Vec3{0.224825, 0.232201, 0.25785},
			mgl64.Vec3{0.295623, 0.271244, 0.200348},
			mgl64.Vec3{0.398634, 0.370312, 0.28953},
			mgl64.Vec3{0.211437, 0.196382, 0.149764},
			mgl64.Vec3{-0.157615, -0.139511, -0.0819072},
			mgl64.Vec3{0.213564, 0.19918, 0.153739},
			mgl64.Vec3{0.0568231, 0.053088, 0.0474619},
		},
	},
	{
		Name: "light 4",
		Coefficients: Coefficients{
			mgl64.Vec3{1.16273, 1.12557, 1.29516},
			mgl64.Vec3{0.23754, 0.121926, 0.0586194},
			mgl64.Vec3{0.19915, 0.263936, 0.43702},
			mgl64.Vec3{0.381448, 0.252011, 0.200875},
			mgl64.Vec3{0.299434, 0.151388, 0.0883712},
			mgl64.Vec3{0.0996847, 0.0602041, 0.0310203},
			mgl64.Vec3{-0.265275, -0.131498, -0.0271039},
			mgl64.Vec3{0.149834, 0.107542, 0.0891161},
			mgl64.Vec3{0.109078, 0.0394395, -0.0010838},
		},
	},
	{
		Name: "light 5",
		Coefficients: Coefficients{
			mgl64.Vec3{1.04193, 0.844106, 0.603002},
			mgl64.Vec3{0.549836, 0.321299, 0.048695},
			mgl64.Vec3{0.0645036, 0.0496089, 0.0303306},
			mgl64.Vec3{0.421742, 0.248284, 0.0405856},
			mgl64.Vec3{0.726357, 0.416303, 0.0488588},
			mgl64.Vec3{0.0930457, 0.0572625, 0.0129239},
			mgl64.Vec3{-0.474425, -0.29132, -0.0699404},
			mgl64.Vec3{0.0739008, 0.0469059, 0.0124285},
			mgl64.Vec3{-0.186023, -0.096926, 0.00490653},
		},
	},
}
