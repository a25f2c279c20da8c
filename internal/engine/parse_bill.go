package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/opencivicdata/ocd-sync/internal/ocd"
)

// EntityResolver looks up an ocd id by display name against the just-staged
// canonical tables. Used for action related entities whose embedded id is
// missing; ties resolve to the first match in ocd_id order.
type EntityResolver interface {
	ResolvePerson(name string) (string, bool)
	ResolveOrganization(name string) (string, bool)
}

// BillRows is the full set of row tuples parsed from one cached bill body.
type BillRows struct {
	Bill            Bill
	Actions         []Action
	RelatedEntities []ActionRelatedEntity
	Sponsorships    []Sponsorship
	Documents       []BillDocument
}

// BillParser projects cached bill JSON onto canonical rows.
type BillParser struct {
	Location *time.Location
	Resolver EntityResolver
}

type billExtras struct {
	LocalClassification string `json:"local_classification"`
	RTFText             string `json:"rtf_text"`
	FullText            string `json:"full_text"`
}

// Parse converts one cached bill body. The bill_type rule is total: when no
// rule applies the parser fails, surfacing upstream data drift instead of
// inventing a default.
func (p *BillParser) Parse(body []byte) (*BillRows, error) {
	var src ocd.Bill
	if err := json.Unmarshal(body, &src); err != nil {
		return nil, fmt.Errorf("decode bill: %w", err)
	}

	var extras billExtras
	if len(src.Extras) > 0 {
		// extras is free-form; ignore shapes we don't recognize.
		_ = json.Unmarshal(src.Extras, &extras)
	}

	billType, err := resolveBillType(src, extras)
	if err != nil {
		return nil, err
	}

	sourceURL, sourceNote := primarySource(src.Sources)

	abstract := ""
	if len(src.Abstracts) > 0 {
		abstract = src.Abstracts[0].Abstract
	}

	fullText := extras.RTFText
	if fullText == "" {
		fullText = extras.FullText
	}

	session := ""
	if src.LegislativeSession != nil {
		session = src.LegislativeSession.Identifier
	}

	var fromOrg *string
	if src.FromOrganization != nil && src.FromOrganization.ID != "" {
		fromOrg = &src.FromOrganization.ID
	}

	rows := &BillRows{
		Bill: Bill{
			OCDID:                src.ID,
			Identifier:           src.Identifier,
			Slug:                 BillSlug(src.Identifier),
			Description:          src.Title,
			BillType:             billType,
			Classification:       src.Classification,
			Subject:              src.Subject,
			Abstract:             abstract,
			FullText:             optional(fullText),
			LegislativeSessionID: session,
			FromOrganizationID:   fromOrg,
			SourceURL:            sourceURL,
			SourceNote:           sourceNote,
		},
	}
	if t := parseTimestamp(src.CreatedAt, p.Location); t != nil {
		rows.Bill.OCDCreatedAt = *t
	}
	if t := parseTimestamp(src.UpdatedAt, p.Location); t != nil {
		rows.Bill.OCDUpdatedAt = *t
	}

	p.parseActions(&src, rows)
	p.parseSponsorships(&src, rows)
	p.parseDocuments(&src, rows)

	return rows, nil
}

// resolveBillType applies the total bill_type rule:
// extras.local_classification, else a single-element classification array,
// else error.
func resolveBillType(src ocd.Bill, extras billExtras) (string, error) {
	if extras.LocalClassification != "" {
		return extras.LocalClassification, nil
	}
	if len(src.Classification) == 1 {
		return src.Classification[0], nil
	}
	return "", parseErrorf(src.ID,
		"unresolvable bill_type: no local_classification and classification=%v",
		[]string(src.Classification))
}

// parseActions assigns each action its position within the bill's action
// array as the order, and records the latest action date on the bill.
func (p *BillParser) parseActions(src *ocd.Bill, rows *BillRows) {
	var lastAction *time.Time

	for i, a := range src.Actions {
		act := Action{
			BillID:         src.ID,
			Order:          i,
			Description:    a.Description,
			Classification: a.Classification,
		}
		if t := parseTimestamp(a.Date, p.Location); t != nil {
			act.Date = *t
			if lastAction == nil || t.After(*lastAction) {
				lastAction = t
			}
		}
		if a.Organization != nil && a.Organization.ID != "" {
			act.OrganizationID = &a.Organization.ID
		}
		rows.Actions = append(rows.Actions, act)

		for _, re := range a.RelatedEntities {
			rows.RelatedEntities = append(rows.RelatedEntities, p.relatedEntity(src.ID, i, re))
		}
	}

	rows.Bill.LastActionDate = lastAction
}

func (p *BillParser) relatedEntity(billID string, order int, re ocd.RelatedEntity) ActionRelatedEntity {
	row := ActionRelatedEntity{
		BillID:      billID,
		ActionOrder: order,
		EntityType:  re.EntityType,
		EntityName:  re.Name,
	}

	switch re.EntityType {
	case "organization":
		if re.OrganizationID != "" {
			row.OrganizationID = &re.OrganizationID
		} else if p.Resolver != nil {
			if id, ok := p.Resolver.ResolveOrganization(re.Name); ok {
				row.OrganizationID = &id
			}
		}
	case "person":
		if re.PersonID != "" {
			row.PersonID = &re.PersonID
		} else if p.Resolver != nil {
			if id, ok := p.Resolver.ResolvePerson(re.Name); ok {
				row.PersonID = &id
			}
		}
	}

	return row
}

// parseSponsorships keeps person sponsorships only; sponsoring organizations
// are dropped (known limitation of the canonical schema).
func (p *BillParser) parseSponsorships(src *ocd.Bill, rows *BillRows) {
	for _, sp := range src.Sponsorships {
		if sp.EntityType != "person" {
			log.Printf("[parse] dropping %s sponsorship %q on %s", sp.EntityType, sp.Name, src.ID)
			continue
		}
		personID := sp.PersonID
		if personID == "" && p.Resolver != nil {
			if id, ok := p.Resolver.ResolvePerson(sp.Name); ok {
				personID = id
			}
		}
		if personID == "" {
			log.Printf("[parse] unresolvable sponsor %q on %s, skipping", sp.Name, src.ID)
			continue
		}
		rows.Sponsorships = append(rows.Sponsorships, Sponsorship{
			BillID:         src.ID,
			PersonID:       personID,
			Classification: sp.Classification,
			IsPrimary:      sp.Primary,
		})
	}
}

// parseDocuments classifies by origin array: documents are attachments ("A"),
// versions are full-text versions ("V"). The URL is the first link.
func (p *BillParser) parseDocuments(src *ocd.Bill, rows *BillRows) {
	appendDocs := func(docs []ocd.Document, docType string) {
		for _, d := range docs {
			url := firstLinkURL(d)
			if url == "" {
				continue
			}
			rows.Documents = append(rows.Documents, BillDocument{
				BillID:       src.ID,
				DocumentType: docType,
				Note:         d.Note,
				URL:          url,
			})
		}
	}
	appendDocs(src.Documents, "A")
	appendDocs(src.Versions, "V")
}
