package ocd

import "encoding/json"

// ListPage is one page of an index endpoint response.
type ListPage struct {
	Meta    *Meta        `json:"meta"`
	Results []ListResult `json:"results"`
	// Error is set when the remote reports a dataset-level problem.
	Error json.RawMessage `json:"error"`
}

// Meta carries the pagination envelope of an index response.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	MaxPage    int `json:"max_page"`
	TotalCount int `json:"total_count"`
}

// ListResult is a single entry of an index page. Only the fields the fetcher
// needs; the detail endpoint supplies everything else.
type ListResult struct {
	ID        string `json:"id"`
	UpdatedAt string `json:"updated_at"`
}

// Link is a URL attached to a record.
type Link struct {
	URL  string `json:"url"`
	Note string `json:"note"`
}

// Source is a provenance URL. The engine depends on the "web" note convention
// for primary source selection.
type Source struct {
	URL  string `json:"url"`
	Note string `json:"note"`
}

// ContactDetail is a typed contact record on a person.
type ContactDetail struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Note  string `json:"note"`
}

// Ref is an embedded reference to another record.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Jurisdiction is the jurisdiction detail record; it supplies the
// legislative-session list when none is configured.
type Jurisdiction struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	LegislativeSessions []LegislativeSession `json:"legislative_sessions"`
}

// LegislativeSession as embedded in the jurisdiction record.
type LegislativeSession struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// Organization is the detail record for a council, committee, or body.
type Organization struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Classification string   `json:"classification"`
	Parent         *Ref     `json:"parent"`
	ParentID       string   `json:"parent_id"`
	Sources        []Source `json:"sources"`
}

// Post is a seat within an organization.
type Post struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Role         string `json:"role"`
	Organization *Ref   `json:"organization"`
	DivisionID   string `json:"division_id"`
}

// Person is the detail record for a member or sponsor. Memberships are
// embedded; they have no index endpoint of their own.
type Person struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Image          string          `json:"image"`
	ContactDetails []ContactDetail `json:"contact_details"`
	Links          []Link          `json:"links"`
	Memberships    []Membership    `json:"memberships"`
	Sources        []Source        `json:"sources"`
}

// Membership links a person to an organization and optionally a post.
type Membership struct {
	Organization *Ref   `json:"organization"`
	Post         *Ref   `json:"post"`
	Label        string `json:"label"`
	Role         string `json:"role"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// Bill is the detail record for a piece of legislation.
type Bill struct {
	ID                 string          `json:"id"`
	Identifier         string          `json:"identifier"`
	Title              string          `json:"title"`
	Classification     []string        `json:"classification"`
	Subject            []string        `json:"subject"`
	Abstracts          []BillAbstract  `json:"abstracts"`
	Actions            []Action        `json:"actions"`
	Sponsorships       []Sponsorship   `json:"sponsorships"`
	Documents          []Document      `json:"documents"`
	Versions           []Document      `json:"versions"`
	Sources            []Source        `json:"sources"`
	Extras             json.RawMessage `json:"extras"`
	LegislativeSession *struct {
		Identifier string `json:"identifier"`
	} `json:"legislative_session"`
	FromOrganization *Ref   `json:"from_organization"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// BillAbstract is a summary attached to a bill.
type BillAbstract struct {
	Abstract string `json:"abstract"`
	Note     string `json:"note"`
}

// Action is one step in a bill's procedural history.
type Action struct {
	Description     string          `json:"description"`
	Classification  []string        `json:"classification"`
	Date            string          `json:"date"`
	Organization    *Ref            `json:"organization"`
	RelatedEntities []RelatedEntity `json:"related_entities"`
}

// RelatedEntity is a polymorphic reference from an action to an organization
// or a person.
type RelatedEntity struct {
	EntityType     string `json:"entity_type"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
	PersonID       string `json:"person_id"`
}

// Sponsorship links a sponsoring entity to a bill.
type Sponsorship struct {
	EntityType     string `json:"entity_type"`
	Name           string `json:"name"`
	PersonID       string `json:"person_id"`
	Classification string `json:"classification"`
	Primary        bool   `json:"primary"`
}

// Document is an attachment or version on a bill or event.
type Document struct {
	Note  string `json:"note"`
	Date  string `json:"date"`
	URL   string `json:"url"`
	Links []Link `json:"links"`
}

// Event is the detail record for a meeting.
type Event struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Classification string             `json:"classification"`
	StartTime      string             `json:"start_time"`
	EndTime        string             `json:"end_time"`
	AllDay         bool               `json:"all_day"`
	Status         string             `json:"status"`
	Location       *EventLocation     `json:"location"`
	Participants   []EventParticipant `json:"participants"`
	Documents      []Document         `json:"documents"`
	Agenda         []EventAgendaItem  `json:"agenda"`
	Sources        []Source           `json:"sources"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

// EventLocation names where a meeting happens.
type EventLocation struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// EventParticipant is an entity taking part in a meeting.
type EventParticipant struct {
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	Note       string `json:"note"`
}

// EventAgendaItem is an ordered item on a meeting agenda.
type EventAgendaItem struct {
	Description     string   `json:"description"`
	Order           string   `json:"order"`
	Notes           []string `json:"notes"`
	RelatedEntities []struct {
		EntityType string `json:"entity_type"`
		BillID     string `json:"bill_id"`
		Bill       *Ref   `json:"bill"`
	} `json:"related_entities"`
}
