// Package routeplan skládá odkaz na trasu v Google Maps přes vybrané koše.
package routeplan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const baseURL = "https://www.google.com/maps/dir/?api=1"

var (
	// ErrNeedsEndpoints: chybí start nebo cíl trasy.
	ErrNeedsEndpoints = errors.New("origin and destination are required")

	// ErrUnknownBin: vybraný koš neexistuje nebo nemá souřadnice.
	ErrUnknownBin = errors.New("unknown bin")
)

// Stop je jeden bod trasy (koš s GPS souřadnicemi).
type Stop struct {
	BinID     int64
	Latitude  float64
	Longitude float64
}

func (s Stop) coords() string {
	return strconv.FormatFloat(s.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(s.Longitude, 'f', -1, 64)
}

// BuildURL vrátí odkaz pro řidiče. Průjezdní body se oddělují "|",
// s optimize=true si pořadí průjezdních bodů přeskládá Google.
func BuildURL(origin, destination Stop, waypoints []Stop, optimize bool) string {
	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString("&origin=" + origin.coords())
	b.WriteString("&destination=" + destination.coords())
	b.WriteString("&travelmode=driving")

	if len(waypoints) > 0 {
		points := make([]string, 0, len(waypoints))
		for _, w := range waypoints {
			points = append(points, w.coords())
		}
		b.WriteString("&waypoints=")
		if optimize {
			b.WriteString("optimize:true|")
		}
		b.WriteString(strings.Join(points, "|"))
	}

	return b.String()
}

// Plan najde start, cíl a průjezdní body mezi známými koši a vrátí odkaz.
// Průjezdní body jsou vybrané koše bez startu a cíle, v pořadí výběru a bez duplicit.
func Plan(known []Stop, selected []int64, originID, destinationID int64, optimize bool) (string, error) {
	if originID == 0 || destinationID == 0 {
		return "", ErrNeedsEndpoints
	}

	byID := make(map[int64]Stop, len(known))
	for _, s := range known {
		byID[s.BinID] = s
	}

	origin, ok := byID[originID]
	if !ok {
		return "", fmt.Errorf("%w: origin %d", ErrUnknownBin, originID)
	}
	destination, ok := byID[destinationID]
	if !ok {
		return "", fmt.Errorf("%w: destination %d", ErrUnknownBin, destinationID)
	}

	seen := map[int64]bool{originID: true, destinationID: true}
	waypoints := make([]Stop, 0, len(selected))
	for _, id := range selected {
		if seen[id] {
			continue
		}
		seen[id] = true

		s, ok := byID[id]
		if !ok {
			return "", fmt.Errorf("%w: waypoint %d", ErrUnknownBin, id)
		}
		waypoints = append(waypoints, s)
	}

	return BuildURL(origin, destination, waypoints, optimize), nil
}
