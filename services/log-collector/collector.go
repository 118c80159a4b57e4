package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrBadTopic: topic neodpovídá tvaru "logs/<služba>".
var ErrBadTopic = errors.New("špatný formát topicu")

// Collector zapisuje logovací zprávy do souboru <dir>/<služba>.log.
type Collector struct {
	dir string

	// paho volá handlery z více goroutin, zápisy do stejného souboru serializujeme.
	mu sync.Mutex
}

func NewCollector(dir string) (*Collector, error) {
	// Pokud adresář neexistuje, vytvoříme ho (včetně podadresářů).
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Collector{dir: dir}, nil
}

// Handle zpracuje jednu zprávu z MQTT a vrátí název služby, do jejíhož souboru zapsala.
func (c *Collector) Handle(topic string, payload []byte) (string, error) {
	service, err := serviceFromTopic(topic)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return service, appendLogToFile(c.dir, service, payload)
}

// serviceFromTopic: "logs/bins-api" -> "bins-api".
// Název jde do cesty k souboru, proto z něj bereme jen poslední prvek (žádné "..").
func serviceFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return "", ErrBadTopic
	}

	name := filepath.Base(parts[1])
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", ErrBadTopic
	}
	return name, nil
}

// appendLogToFile otevře (nebo vytvoří) soubor a připíše na konec nový řádek.
// Pattern "Open-Write-Close" pro každý zápis je bezpečný vůči rotaci logů.
func appendLogToFile(dir, service string, data []byte) error {
	filename := filepath.Join(dir, service+".log")

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	// slog už řádek ukončuje "\n", jiní klienti nemusí. Vždy zapíšeme právě jeden.
	line := append(bytes.TrimRight(data, "\r\n"), '\n')
	_, err = f.Write(line)
	return err
}
