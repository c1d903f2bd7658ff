package models

// Requests for panel HTTP endpoints.

type PanelQueryRequest struct {
	Name    string `param:"name" validate:"required"`
	From    string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Columns string `query:"columns"`
}

type BuildPanelRequest struct {
	Name string `param:"name" json:"-" validate:"required"`
	End  string `json:"end" validate:"omitempty,datetime=2006-01-02"`
}

type PanelSummary struct {
	Name     string   `json:"name"`
	Series   []string `json:"series"`
	Calendar string   `json:"calendar,omitempty"`
	Start    string   `json:"start,omitempty"`
	End      string   `json:"end,omitempty"`
}

type BuildSummary struct {
	BuildID  string    `json:"build_id"`
	Panel    string    `json:"panel"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	Warnings []Warning `json:"warnings"`
}
