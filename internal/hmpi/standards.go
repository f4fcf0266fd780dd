package hmpi

// Metal is one of the fixed set of heavy metals the engine understands.
type Metal string

const (
	Arsenic  Metal = "arsenic"
	Lead     Metal = "lead"
	Cadmium  Metal = "cadmium"
	Chromium Metal = "chromium"
	Mercury  Metal = "mercury"
	Iron     Metal = "iron"
	Zinc     Metal = "zinc"
	Copper   Metal = "copper"
	Uranium  Metal = "uranium"
)

// Standards holds the maximum admissible concentration per metal in mg/L
// (WHO drinking-water guidelines).
var Standards = map[Metal]float64{
	Arsenic:  0.01,
	Lead:     0.01,
	Cadmium:  0.003,
	Chromium: 0.05,
	Mercury:  0.001,
	Iron:     0.3,
	Zinc:     3.0,
	Copper:   2.0,
	Uranium:  0.03,
}

// SupportedMetals returns the metal names in a stable order, for the
// read-only standards listing.
func SupportedMetals() []Metal {
	return []Metal{Arsenic, Lead, Cadmium, Chromium, Mercury, Iron, Zinc, Copper, Uranium}
}
