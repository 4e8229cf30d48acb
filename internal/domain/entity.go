package domain

import "time"

// Entity is a tenant: the isolation boundary every other accounting record
// belongs to. Entity is the only record without an entity scope of its own.
type Entity struct {
	ID              string
	Name            string
	Currency        string
	ReportingPeriod *ReportingPeriod
	Recyclable
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Entity) RecordID() string { return e.ID }

// ReportingPeriod is a calendar year accounting window owned by an entity.
// An entity has at most one period per calendar year.
type ReportingPeriod struct {
	ID           string
	EntityID     string
	CalendarYear int
	PeriodCount  int
	Recyclable
	CreatedAt time.Time
}

func (p *ReportingPeriod) RecordID() string { return p.ID }

func (p *ReportingPeriod) ScopeEntityID() string { return p.EntityID }
