// Package readings popisuje hodnoty jednoho měření koše a jejich textové shrnutí.
package readings

import (
	"strconv"
	"strings"
)

// Values drží volitelné metriky jednoho měření.
// Všechny jsou pointery: nil = senzor danou veličinu neposlal (NULL v DB).
// Nula je platné měření a nesmí se zahodit.
type Values struct {
	DistanceCM         *float64 `json:"distance_cm"`
	FillPercentage     *float64 `json:"fill_percentage"`
	WeightKG           *float64 `json:"weight_kg"`
	TemperatureC       *float64 `json:"temperature_c"`
	HumidityPercentage *float64 `json:"humidity_percentage"`
	AccelerationX      *float64 `json:"acceleration_x"`
	AccelerationY      *float64 `json:"acceleration_y"`
	AccelerationZ      *float64 `json:"acceleration_z"`
	FallDetected       *bool    `json:"fall_detected"`
}

// Summary vrátí čitelné shrnutí, např. "dist=12cm llenado=80% peso=3.5kg".
// Pořadí tokenů je pevné, chybějící hodnoty se přeskakují.
// Pád (caida) se vypíše jen tehdy, když je hodnota nastavená a true.
func Summary(v Values) string {
	tokens := make([]string, 0, 7)

	if v.DistanceCM != nil {
		tokens = append(tokens, "dist="+number(*v.DistanceCM)+"cm")
	}
	if v.FillPercentage != nil {
		tokens = append(tokens, "llenado="+number(*v.FillPercentage)+"%")
	}
	if v.WeightKG != nil {
		tokens = append(tokens, "peso="+number(*v.WeightKG)+"kg")
	}
	if v.TemperatureC != nil {
		tokens = append(tokens, "temp="+number(*v.TemperatureC)+"C")
	}
	if v.HumidityPercentage != nil {
		tokens = append(tokens, "hum="+number(*v.HumidityPercentage)+"%")
	}
	// Trojice zrychlení se řídí osou X, chybějící Y/Z se vypíšou jako "null".
	if v.AccelerationX != nil {
		tokens = append(tokens,
			"ax="+number(*v.AccelerationX)+" ay="+optional(v.AccelerationY)+" az="+optional(v.AccelerationZ))
	}
	if v.FallDetected != nil && *v.FallDetected {
		tokens = append(tokens, "caida=true")
	}

	return strings.Join(tokens, " ")
}

// Empty je true, pokud měření neobsahuje žádnou hodnotu.
func (v Values) Empty() bool {
	return v.DistanceCM == nil && v.FillPercentage == nil && v.WeightKG == nil &&
		v.TemperatureC == nil && v.HumidityPercentage == nil &&
		v.AccelerationX == nil && v.AccelerationY == nil && v.AccelerationZ == nil &&
		v.FallDetected == nil
}

// number formátuje float v nejkratší přesné podobě (3.5, 12, 0.25).
func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optional(f *float64) string {
	if f == nil {
		return "null"
	}
	return number(*f)
}
