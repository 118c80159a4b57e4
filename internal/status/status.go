// Package status skládá stav košů (BinStatus) z plochých řádků databáze
// a rozhoduje, zda je zařízení aktivní.
package status

import "time"

// DefaultWindow je výchozí okno, ve kterém musí zařízení poslat data,
// aby bylo považováno za aktivní.
const DefaultWindow = 5 * time.Minute

// DeviceRow je jeden řádek z dotazu "zařízení na koš + poslední čas".
// LastSeen je nil, pokud zařízení ještě nikdy nic neposlalo (LEFT JOIN vrací NULL).
type DeviceRow struct {
	BinID      int64
	BinName    string
	DeviceType string
	LastSeen   *time.Time
}

// Device je zařízení ve výstupní struktuře pro frontend.
type Device struct {
	Type     string     `json:"type"`
	LastSeen *time.Time `json:"last_seen"`

	// Active se plní až v MarkFreshness, Aggregate ho nechává false.
	Active bool `json:"active"`
}

// BinStatus je odvozený (neukládaný) pohled na jeden koš.
type BinStatus struct {
	BinID     int64    `json:"bin_id"`
	Name      string   `json:"name"`
	Sensors   []Device `json:"sensors"`
	Actuators []Device `json:"actuators"`
}

// Aggregate převede dvě ploché sady řádků na seznam košů.
// Každý koš je ve výstupu právě jednou, v pořadí prvního výskytu
// (nejdřív senzory, pak aktuátory). Chybějící kategorie je prázdný seznam, ne nil.
func Aggregate(sensors, actuators []DeviceRow) []BinStatus {
	out := make([]BinStatus, 0)
	index := make(map[int64]int)

	// record vrátí pointer na záznam koše, případně ho založí.
	record := func(row DeviceRow) *BinStatus {
		if i, ok := index[row.BinID]; ok {
			return &out[i]
		}
		out = append(out, BinStatus{
			BinID:     row.BinID,
			Name:      row.BinName,
			Sensors:   []Device{},
			Actuators: []Device{},
		})
		index[row.BinID] = len(out) - 1
		return &out[len(out)-1]
	}

	for _, row := range sensors {
		bin := record(row)
		bin.Sensors = append(bin.Sensors, Device{Type: row.DeviceType, LastSeen: row.LastSeen})
	}
	for _, row := range actuators {
		bin := record(row)
		bin.Actuators = append(bin.Actuators, Device{Type: row.DeviceType, LastSeen: row.LastSeen})
	}

	return out
}

// MarkFreshness doplní příznak Active ke všem zařízením podle času now.
// Upravuje předaný slice na místě.
func MarkFreshness(bins []BinStatus, now time.Time, window time.Duration) {
	for i := range bins {
		for j := range bins[i].Sensors {
			d := &bins[i].Sensors[j]
			d.Active = Classify(d.LastSeen, now, window) == Active
		}
		for j := range bins[i].Actuators {
			d := &bins[i].Actuators[j]
			d.Active = Classify(d.LastSeen, now, window) == Active
		}
	}
}
