package engine

import (
	"encoding/json"
	"fmt"

	"github.com/opencivicdata/ocd-sync/internal/ocd"
)

// PersonRows is the row set parsed from one cached person body: the person
// plus their embedded memberships.
type PersonRows struct {
	Person      Person
	Memberships []Membership
}

// ParsePerson converts one cached person body. Contact and website come from
// the nested contact_details and links records.
func ParsePerson(body []byte) (*PersonRows, error) {
	var src ocd.Person
	if err := json.Unmarshal(body, &src); err != nil {
		return nil, fmt.Errorf("decode person: %w", err)
	}

	sourceURL, sourceNote := primarySource(src.Sources)

	row := Person{
		OCDID:      src.ID,
		Name:       src.Name,
		Slug:       SlugWithID(src.Name, src.ID),
		SourceURL:  sourceURL,
		SourceNote: sourceNote,
	}
	if src.Image != "" {
		row.Headshot = HeadshotName(src.ID)
	}

	for _, cd := range src.ContactDetails {
		switch cd.Type {
		case "email":
			if row.Email == "" {
				row.Email = cd.Value
			}
		case "voice", "phone":
			if row.Phone == "" {
				row.Phone = cd.Value
			}
		}
	}
	for _, l := range src.Links {
		if row.Website == "" {
			row.Website = l.URL
		}
	}

	out := &PersonRows{Person: row}
	for _, m := range src.Memberships {
		if m.Organization == nil || m.Organization.ID == "" {
			continue
		}
		ms := Membership{
			OrganizationID: m.Organization.ID,
			PersonID:       src.ID,
			Label:          m.Label,
			Role:           m.Role,
			StartDate:      parseDate(m.StartDate),
			EndDate:        parseDate(m.EndDate),
		}
		if m.Post != nil && m.Post.ID != "" {
			ms.PostID = &m.Post.ID
		}
		out.Memberships = append(out.Memberships, ms)
	}

	return out, nil
}

// HeadshotName is the on-disk filename for a person's headshot, keyed by the
// id's uuid segment so refetches overwrite in place.
func HeadshotName(ocdID string) string {
	return trailingSegment(ocdID) + ".jpg"
}
