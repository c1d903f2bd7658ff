package models

import "time"

// PanelDefinition is everything needed to pull and build one named panel.
type PanelDefinition struct {
	Name     string       `json:"name"`
	Series   []SeriesSpec `json:"series"`
	Rules    Rules        `json:"rules"`
	Window   Window       `json:"window"`
	Calendar string       `json:"calendar,omitempty"`
	// Labels describes columns no series provides (manual, derived).
	Labels map[string]string `json:"labels,omitempty"`
}

// Descriptions maps column ids to human readable labels.
func (d PanelDefinition) Descriptions() map[string]string {
	out := make(map[string]string, len(d.Series)+len(d.Labels))
	for _, s := range d.Series {
		if s.Description != "" {
			out[s.ID] = s.Description
		}
	}
	for id, l := range d.Labels {
		out[id] = l
	}
	return out
}

// PanelBuild is one persisted result of building a panel.
type PanelBuild struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	BuiltAt  time.Time `json:"built_at"`
	Panel    *Panel    `json:"panel"`
	Warnings []Warning `json:"warnings"`
}

// PanelBuilt is the event published after a build is saved.
type PanelBuilt struct {
	BuildID  string    `json:"build_id"`
	Panel    string    `json:"panel"`
	BuiltAt  time.Time `json:"built_at"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Warnings int       `json:"warnings"`
}

func NewPanelBuilt(b *PanelBuild) PanelBuilt {
	ev := PanelBuilt{
		BuildID:  b.ID,
		Panel:    b.Name,
		BuiltAt:  b.BuiltAt,
		Rows:     b.Panel.Len(),
		Columns:  b.Panel.ColumnIDs(),
		Warnings: len(b.Warnings),
	}
	if n := b.Panel.Len(); n > 0 {
		ev.Start = b.Panel.Index[0]
		ev.End = b.Panel.Index[n-1]
	}
	return ev
}

// RebuildRequest asks the service to rebuild a panel up to End.
type RebuildRequest struct {
	Panel string `json:"panel"`
	End   string `json:"end,omitempty"`
}
