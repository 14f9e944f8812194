package spooler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"receipt-bridge/internal/model"
)

const defaultPrefix = "system default destination:"

// ParseLpstat reads the output of `lpstat -p -d` under the C locale
func ParseLpstat(out string) []model.DiscoveredPrinter {
	var (
		names       []string
		defaultName string
	)

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "printer "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				names = append(names, fields[1])
			}
		case strings.HasPrefix(line, defaultPrefix):
			defaultName = strings.TrimSpace(strings.TrimPrefix(line, defaultPrefix))
		}
	}

	printers := make([]model.DiscoveredPrinter, 0, len(names))
	for _, name := range names {
		printers = append(printers, printer(name, name == defaultName))
	}
	return printers
}

type winPrinter struct {
	Name    string `json:"Name"`
	Default bool   `json:"Default"`
}

// ParsePowerShell reads the compressed JSON emitted by ConvertTo-Json,
// which is a single object for one printer and an array otherwise
func ParsePowerShell(out []byte) ([]model.DiscoveredPrinter, error) {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return []model.DiscoveredPrinter{}, nil
	}

	var list []winPrinter
	if strings.HasPrefix(trimmed, "{") {
		var single winPrinter
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil, fmt.Errorf("parse printer list: %w", err)
		}
		list = append(list, single)
	} else if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
		return nil, fmt.Errorf("parse printer list: %w", err)
	}

	printers := make([]model.DiscoveredPrinter, 0, len(list))
	for _, p := range list {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		printers = append(printers, printer(p.Name, p.Default))
	}
	return printers, nil
}

func printer(name string, isDefault bool) model.DiscoveredPrinter {
	return model.DiscoveredPrinter{
		ID:        name,
		Name:      name,
		IsDefault: isDefault,
		Transport: model.TransportSpooler,
	}
}
