// Package hmpi computes heavy-metal pollution indices (HPI, HEI, Cd, MI)
// from normalized concentration maps against fixed regulatory standards.
package hmpi

import "github.com/aquaguard/hmpi-service/constants"

// Method tags the formula set used for a computation. There is exactly one
// canonical set; the tag is stored alongside results so future revisions can
// coexist in the store.
const Method = "hpi-simplified-v1"

// Concentrations maps metal name to a concentration in mg/L. A metal absent
// from the map is excluded from every sum; it is not treated as zero.
type Concentrations map[Metal]float64

// Result holds all indices for one sample.
type Result struct {
	HPI      float64
	HEI      float64
	Cd       float64
	MI       float64
	Category constants.QualityCategory
}

// Compute calculates HPI, HEI, Cd and MI over the metals present in the
// input. Metals without a known standard are ignored. An empty input yields
// all zeros and the "excellent" category; Compute never fails.
//
// HPI uses the simplified sub-index Qi = (Ci/Si)*100 with unit weight
// Wi = 1/Si. The ideal value is implicitly zero, so the simplified and
// ideal-difference formulations coincide. HEI is the mean contamination
// ratio; MI is its documented alias; Cd sums the contamination-factor
// excesses and can be negative when every concentration is below standard.
func Compute(conc Concentrations) Result {
	var (
		qiwiSum  float64
		wiSum    float64
		ratioSum float64
		cd       float64
		count    int
	)

	for metal, ci := range conc {
		si, ok := Standards[metal]
		if !ok {
			continue
		}
		wi := 1 / si
		qi := (ci / si) * 100
		qiwiSum += qi * wi
		wiSum += wi

		ratio := ci / si
		ratioSum += ratio
		cd += ratio - 1
		count++
	}

	res := Result{}
	if wiSum > 0 {
		res.HPI = qiwiSum / wiSum
	}
	if count > 0 {
		res.HEI = ratioSum / float64(count)
		res.Cd = cd
	}
	res.MI = res.HEI
	res.Category = Classify(res.HPI)
	return res
}

// Classify maps an HPI value onto the quality category scale. Bounds are
// closed below and open above: HPI of exactly 25 is "good".
func Classify(hpi float64) constants.QualityCategory {
	switch {
	case hpi < 25:
		return constants.QualityExcellent
	case hpi < 50:
		return constants.QualityGood
	case hpi < 75:
		return constants.QualityPoor
	default:
		return constants.QualityVeryPoor
	}
}

// Thresholds exposes the classification boundaries for client-side display.
func Thresholds() map[string]float64 {
	return map[string]float64{
		string(constants.QualityExcellent): 25,
		string(constants.QualityGood):      50,
		string(constants.QualityPoor):      75,
	}
}
