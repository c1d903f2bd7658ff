package usecase

import (
	"fmt"

	"FinPanel/internal/domain/models"
	domrepo "FinPanel/internal/domain/repository"
	"FinPanel/pkg/util"
)

// PanelCatalog holds the configured panel definitions in declaration order.
type PanelCatalog struct {
	defs   []models.PanelDefinition
	byName map[string]int
}

func NewPanelCatalog(defs []models.PanelDefinition) (*PanelCatalog, error) {
	c := &PanelCatalog{
		defs:   defs,
		byName: make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: panel %d has no name", ErrInvalidRequest, i)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate panel %q", ErrInvalidRequest, d.Name)
		}
		c.byName[d.Name] = i
	}
	return c, nil
}

func (c *PanelCatalog) Get(name string) (models.PanelDefinition, error) {
	i, ok := c.byName[name]
	if !ok {
		return models.PanelDefinition{}, fmt.Errorf("%w: %s", domrepo.ErrPanelNotFound, name)
	}
	return c.defs[i], nil
}

func (c *PanelCatalog) Names() []string {
	out := make([]string, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.Name
	}
	return out
}

func (c *PanelCatalog) List() []models.PanelSummary {
	out := make([]models.PanelSummary, 0, len(c.defs))
	for _, d := range c.defs {
		s := models.PanelSummary{
			Name:     d.Name,
			Series:   make([]string, len(d.Series)),
			Calendar: d.Calendar,
		}
		for i, sp := range d.Series {
			s.Series[i] = sp.ID
		}
		if d.Window.Start != nil {
			s.Start = util.FormatDate(*d.Window.Start)
		}
		if d.Window.End != nil {
			s.End = util.FormatDate(*d.Window.End)
		}
		out = append(out, s)
	}
	return out
}
