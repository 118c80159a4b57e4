package main

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/ingest"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/readings"
)

const (
	// Nad touto zaplněností proběhne svoz a koš začne znovu od startFill.
	collectAtFill = 95.0
	startFill     = 5.0
)

// Simulator napodobuje firmware ESP8266 (ultrazvuk + váha + DHT + akcelerometr).
// Každý senzor má vlastní zaplnění, které s každým měřením roste.
// Není thread-safe, volá se jen z hlavní smyčky.
type Simulator struct {
	rng         *rand.Rand
	heightCM    float64
	maxWeightKG float64
	fill        map[int64]float64
}

func NewSimulator(rng *rand.Rand, heightCM, maxWeightKG float64) *Simulator {
	return &Simulator{
		rng:         rng,
		heightCM:    heightCM,
		maxWeightKG: maxWeightKG,
		fill:        make(map[int64]float64),
	}
}

// Next vrátí další měření senzoru. emptied = v tomto kroku proběhl svoz (koš se vyprázdnil).
func (s *Simulator) Next(sensorID int64, now time.Time) (in ingest.MeasurementInput, emptied bool) {
	fill, ok := s.fill[sensorID]
	if !ok {
		fill = startFill
	}

	fill += 0.5 + s.rng.Float64()*2.5
	if fill >= collectAtFill {
		fill = startFill
		emptied = true
	}
	s.fill[sensorID] = fill

	distance := round1(s.heightCM * (1 - fill/100))
	weight := round1(s.maxWeightKG * fill / 100 * (0.9 + s.rng.Float64()*0.2))
	temp := round1(20 + s.rng.Float64()*10)
	hum := round1(40 + s.rng.Float64()*30)
	ax := round1(s.rng.NormFloat64() * 0.1)
	ay := round1(s.rng.NormFloat64() * 0.1)
	az := round1(9.8 + s.rng.NormFloat64()*0.1)
	fallen := s.rng.IntN(500) == 0
	fillPct := round1(fill)

	id := sensorID
	return ingest.MeasurementInput{
		SensorID: &id,
		Values: readings.Values{
			DistanceCM:         &distance,
			FillPercentage:     &fillPct,
			WeightKG:           &weight,
			TemperatureC:       &temp,
			HumidityPercentage: &hum,
			AccelerationX:      &ax,
			AccelerationY:      &ay,
			AccelerationZ:      &az,
			FallDetected:       &fallen,
		},
		Timestamp: &ingest.Timestamp{Time: now.UTC()},
	}, emptied
}

// LidEvent je událost motoru víka, kterou simulátor pošle při svozu.
func LidEvent(actuatorID int64, now time.Time) ingest.ActuatorEventInput {
	id := actuatorID
	desc := "Tapa abierta para recolección"
	return ingest.ActuatorEventInput{
		ActuatorID:  &id,
		Description: &desc,
		Timestamp:   &ingest.Timestamp{Time: now.UTC()},
	}
}

// round1 zaokrouhlí na jedno desetinné místo, jako posílá firmware.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
