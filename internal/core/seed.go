package core

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

const seedToday Date = "today"

type seedFile struct {
	ServiceTypes []string   `yaml:"serviceTypes"`
	Customers    []Customer `yaml:"customers"`
	Vehicles     []Vehicle  `yaml:"vehicles"`
	Orders       []Order    `yaml:"orders"`
	DailyLog     []Order    `yaml:"dailyLog"`
}

var loadSeed = sync.OnceValues(func() (seedFile, error) {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return seedFile{}, fmt.Errorf("parse seed data: %w", err)
	}
	return f, nil
})

// DefaultServiceTypes returns the built-in service type list.
func DefaultServiceTypes() []string {
	f, err := loadSeed()
	if err != nil {
		return []string{}
	}
	return append([]string{}, f.ServiceTypes...)
}

// SeedDataset returns the built-in data set with "today" dates resolved.
func SeedDataset(today Date) (Dataset, error) {
	f, err := loadSeed()
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{
		Customers:    append([]Customer{}, f.Customers...),
		Vehicles:     append([]Vehicle{}, f.Vehicles...),
		ServiceTypes: append([]string{}, f.ServiceTypes...),
		Orders:       make([]Order, 0, len(f.Orders)+len(f.DailyLog)),
	}
	for _, set := range [][]Order{f.DailyLog, f.Orders} {
		for _, o := range set {
			o = o.Clone()
			o.StartDate = resolveSeedDate(o.StartDate, today)
			o.EndDate = resolveSeedDate(o.EndDate, today)
			if !o.Status.Valid() {
				return Dataset{}, fmt.Errorf("seed order %s: invalid status %q", o.ID, o.Status)
			}
			ds.Orders = append(ds.Orders, o)
		}
	}
	return ds, nil
}

func resolveSeedDate(d, today Date) Date {
	if d == seedToday {
		return today
	}
	return d
}
