package engine

import (
	"time"

	"github.com/lib/pq"
)

// Canonical tables for the synchronized dataset. Every row carries UpdatedAt,
// stamped at staging time; natural keys get unique indexes in Migrate.

type LegislativeSession struct {
	ID             uint   `json:"-" gorm:"primaryKey"`
	Identifier     string `json:"identifier" gorm:"uniqueIndex"`
	JurisdictionID string `json:"jurisdiction_id"`
	Name           string `json:"name"`
	UpdatedAt      time.Time
}

type Organization struct {
	ID             uint    `json:"-" gorm:"primaryKey"`
	OCDID          string  `json:"ocd_id" gorm:"column:ocd_id;uniqueIndex"`
	Name           string  `json:"name"`
	Classification string  `json:"classification"`
	ParentID       *string `json:"parent_id"`
	Slug           string  `json:"slug" gorm:"uniqueIndex"`
	SourceURL      string  `json:"source_url"`
	UpdatedAt      time.Time
}

type Post struct {
	ID             uint    `json:"-" gorm:"primaryKey"`
	OCDID          string  `json:"ocd_id" gorm:"column:ocd_id;uniqueIndex"`
	Label          string  `json:"label"`
	Role           string  `json:"role"`
	OrganizationID string  `json:"organization_id"`
	DivisionID     *string `json:"division_id"`
	Shape          *string `json:"-"`
	UpdatedAt      time.Time
}

type Person struct {
	ID         uint   `json:"-" gorm:"primaryKey"`
	OCDID      string `json:"ocd_id" gorm:"column:ocd_id;uniqueIndex"`
	Name       string `json:"name"`
	Slug       string `json:"slug" gorm:"uniqueIndex"`
	Headshot   string `json:"headshot"`
	Email      string `json:"email"`
	Website    string `json:"website"`
	Phone      string `json:"phone"`
	SourceURL  string `json:"source_url"`
	SourceNote string `json:"source_note"`
	UpdatedAt  time.Time
}

type Membership struct {
	ID             uint       `json:"-" gorm:"primaryKey"`
	OrganizationID string     `json:"organization_id"`
	PersonID       string     `json:"person_id"`
	PostID         *string    `json:"post_id"`
	Label          string     `json:"label"`
	Role           string     `json:"role"`
	StartDate      *time.Time `json:"start_date" gorm:"type:date"`
	EndDate        *time.Time `json:"end_date" gorm:"type:date"`
	UpdatedAt      time.Time
}

type Bill struct {
	ID                   uint           `json:"-" gorm:"primaryKey"`
	OCDID                string         `json:"ocd_id" gorm:"column:ocd_id;uniqueIndex"`
	OCDCreatedAt         time.Time      `json:"ocd_created_at"`
	OCDUpdatedAt         time.Time      `json:"ocd_updated_at" gorm:"index"`
	Identifier           string         `json:"identifier"`
	Slug                 string         `json:"slug" gorm:"uniqueIndex"`
	Description          string         `json:"description"`
	BillType             string         `json:"bill_type"`
	Classification       pq.StringArray `json:"classification" gorm:"type:text[]"`
	Subject              pq.StringArray `json:"subject" gorm:"type:text[]"`
	Abstract             string         `json:"abstract"`
	FullText             *string        `json:"-"`
	OCRFullText          *string        `json:"-" gorm:"column:ocr_full_text"`
	HTMLText             *string        `json:"-" gorm:"column:html_text"`
	LastActionDate       *time.Time     `json:"last_action_date"`
	LegislativeSessionID string         `json:"legislative_session_id"`
	FromOrganizationID   *string        `json:"from_organization_id"`
	SourceURL            string         `json:"source_url"`
	SourceNote           string         `json:"source_note"`
	UpdatedAt            time.Time
}

type Action struct {
	ID             uint           `json:"-" gorm:"primaryKey"`
	BillID         string         `json:"bill_id"`
	Order          int            `json:"order" gorm:"column:order"`
	Description    string         `json:"description"`
	Classification pq.StringArray `json:"classification" gorm:"type:text[]"`
	Date           time.Time      `json:"date"`
	OrganizationID *string        `json:"organization_id"`
	UpdatedAt      time.Time
}

// ActionRelatedEntity is a tagged reference from an action to an organization
// or a person; exactly one of the two id columns is set when resolvable.
type ActionRelatedEntity struct {
	ID             uint    `json:"-" gorm:"primaryKey"`
	BillID         string  `json:"bill_id"`
	ActionOrder    int     `json:"action_order"`
	EntityType     string  `json:"entity_type"`
	EntityName     string  `json:"entity_name"`
	OrganizationID *string `json:"organization_id"`
	PersonID       *string `json:"person_id"`
	UpdatedAt      time.Time
}

type Sponsorship struct {
	ID             uint   `json:"-" gorm:"primaryKey"`
	BillID         string `json:"bill_id"`
	PersonID       string `json:"person_id"`
	Classification string `json:"classification"`
	IsPrimary      bool   `json:"is_primary"`
	UpdatedAt      time.Time
}

// BillDocument is a URL attached to a bill: an attachment ("A") or a full
// text version ("V").
type BillDocument struct {
	ID           uint    `json:"-" gorm:"primaryKey"`
	BillID       string  `json:"bill_id"`
	DocumentType string  `json:"document_type"`
	Note         string  `json:"note"`
	URL          string  `json:"url"`
	FullText     *string `json:"-"`
	UpdatedAt    time.Time
}

type Event struct {
	ID             uint       `json:"-" gorm:"primaryKey"`
	OCDID          string     `json:"ocd_id" gorm:"column:ocd_id;uniqueIndex"`
	OCDCreatedAt   time.Time  `json:"ocd_created_at"`
	OCDUpdatedAt   time.Time  `json:"ocd_updated_at" gorm:"index"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug" gorm:"uniqueIndex"`
	Description    string     `json:"description"`
	Classification string     `json:"classification"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	AllDay         bool       `json:"all_day"`
	Status         string     `json:"status"`
	Location       string     `json:"location"`
	SourceURL      string     `json:"source_url"`
	SourceNote     string     `json:"source_note"`
	UpdatedAt      time.Time
}

type EventParticipant struct {
	ID         uint   `json:"-" gorm:"primaryKey"`
	EventID    string `json:"event_id"`
	EntityName string `json:"entity_name"`
	EntityType string `json:"entity_type"`
	Note       string `json:"note"`
	UpdatedAt  time.Time
}

type EventDocument struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	EventID   string  `json:"event_id"`
	URL       string  `json:"url"`
	Note      string  `json:"note"`
	FullText  *string `json:"-"`
	UpdatedAt time.Time
}

type EventAgendaItem struct {
	ID          uint    `json:"-" gorm:"primaryKey"`
	EventID     string  `json:"event_id"`
	Order       int     `json:"order" gorm:"column:order"`
	Description string  `json:"description"`
	BillID      *string `json:"bill_id"`
	Note        string  `json:"note"`
	UpdatedAt   time.Time
}

func (LegislativeSession) TableName() string  { return "legislative_session" }
func (Organization) TableName() string        { return "organization" }
func (Post) TableName() string                { return "post" }
func (Person) TableName() string              { return "person" }
func (Membership) TableName() string          { return "membership" }
func (Bill) TableName() string                { return "bill" }
func (Action) TableName() string              { return "action" }
func (ActionRelatedEntity) TableName() string { return "action_related_entity" }
func (Sponsorship) TableName() string         { return "sponsorship" }
func (BillDocument) TableName() string        { return "bill_document" }
func (Event) TableName() string               { return "event" }
func (EventParticipant) TableName() string    { return "event_participant" }
func (EventDocument) TableName() string       { return "event_document" }
func (EventAgendaItem) TableName() string     { return "event_agenda_item" }
