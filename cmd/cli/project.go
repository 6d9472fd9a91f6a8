package main

import (
	"fmt"
	"os"

	"github.com/amirasaad/pricer/pkg/session"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

// projectFile is the TOML input of the quote command.
type projectFile struct {
	Currency    string              `toml:"currency"`
	Consultants []projectConsultant `toml:"consultant"`
}

type projectConsultant struct {
	Name         string   `toml:"name"`
	Country      string   `toml:"country"`
	Seniority    string   `toml:"seniority"`
	HoursPerWeek *float64 `toml:"hours_per_week"`
	Weeks        *float64 `toml:"weeks"`
	Allocation   *float64 `toml:"allocation"`
}

func readProject(path string) (*projectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	return parseProject(data)
}

func parseProject(data []byte) (*projectFile, error) {
	var project projectFile
	if err := toml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("parse project file: %w", err)
	}
	return &project, nil
}

// apply adds every consultant of the project to s. Omitted numeric fields
// keep the session defaults.
func (p *projectFile) apply(s *session.Session) error {
	for i, c := range p.Consultants {
		item := s.AddLineItem()
		if err := setFields(s, item.ID, c); err != nil {
			return fmt.Errorf("consultant %d: %w", i+1, err)
		}
	}
	return nil
}

func setFields(s *session.Session, id uuid.UUID, c projectConsultant) error {
	updates := []struct {
		field session.Field
		value any
		set   bool
	}{
		{session.FieldName, c.Name, c.Name != ""},
		{session.FieldCountry, c.Country, true},
		{session.FieldSeniority, c.Seniority, true},
		{session.FieldHoursPerWeek, deref(c.HoursPerWeek), c.HoursPerWeek != nil},
		{session.FieldWeeks, deref(c.Weeks), c.Weeks != nil},
		{session.FieldAllocation, deref(c.Allocation), c.Allocation != nil},
	}
	for _, u := range updates {
		if !u.set {
			continue
		}
		if err := s.UpdateLineItem(id, u.field, u.value); err != nil {
			return err
		}
	}
	return nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
