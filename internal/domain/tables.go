package domain

import (
	"fmt"
	"sort"
)

// Spectrometer characterization tables mapping (bandwidth MHz, channels per
// window) to the recommended 8-bit quantization scale. A key absent from its
// table means the hardware does not support that combination.
var coherentScales = map[int]map[int]int{
	100:  {64: 2012, 128: 2327, 256: 2612, 512: 2918},
	200:  {128: 1788, 256: 2046, 512: 2321, 1024: 2619},
	800:  {128: 1172, 256: 1369, 512: 1585, 1024: 1811, 2048: 2062},
	1500: {512: 1220, 1024: 1448, 2048: 1662, 4096: 1894},
}

var incoherentScales = map[int]map[int]int{
	100:  {1024: 470, 2048: 520, 4096: 590, 8192: 665, 16384: 745},
	200:  {1024: 435, 2048: 485, 8192: 1045},
	800:  {2048: 830, 4096: 940, 8192: 1060, 16384: 1190},
	1500: {4096: 775, 8192: 870, 16384: 980, 32768: 1100},
}

// coherentAcclens are the only accumulation lengths coherent modes accept.
var coherentAcclens = []int{4, 8, 16}

// GetValidNumchanValues returns the channel counts supported for the
// bandwidth under the given dedispersion family, sorted ascending.
func GetValidNumchanValues(bandwidth int, coherent bool) []int {
	table := scaleTable(coherent)[bandwidth]

	values := make([]int, 0, len(table))
	for numchan := range table {
		values = append(values, numchan)
	}

	sort.Ints(values)

	return values
}

// GetRecommendedScale returns the characterization scale for the exact
// (bandwidth, numchan) key. A missing key is a programming error: callers
// must restrict channel counts to GetValidNumchanValues.
func GetRecommendedScale(bandwidth, numchan int, coherent bool) int {
	scale, ok := scaleTable(coherent)[bandwidth][numchan]
	if !ok {
		panic(fmt.Sprintf("no scale entry for bandwidth=%d numchan=%d coherent=%t",
			bandwidth, numchan, coherent))
	}

	return scale
}

// GetValidAcclenValues returns the selectable accumulation lengths: {4,8,16}
// for coherent dedispersion, powers of two from 1 to 1024 otherwise.
func GetValidAcclenValues(coherent bool) []int {
	if coherent {
		out := make([]int, len(coherentAcclens))
		copy(out, coherentAcclens)

		return out
	}

	out := make([]int, 0, 11)
	for v := 1; v <= 1024; v *= 2 {
		out = append(out, v)
	}

	return out
}

func scaleTable(coherent bool) map[int]map[int]int {
	if coherent {
		return coherentScales
	}

	return incoherentScales
}
