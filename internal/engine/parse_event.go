package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opencivicdata/ocd-sync/internal/ocd"
)

// EventRows is the row set parsed from one cached event body.
type EventRows struct {
	Event        Event
	Participants []EventParticipant
	Documents    []EventDocument
	AgendaItems  []EventAgendaItem
}

// EventParser projects cached event JSON onto canonical rows.
type EventParser struct {
	Location *time.Location
}

// Parse converts one cached event body.
func (p *EventParser) Parse(body []byte) (*EventRows, error) {
	var src ocd.Event
	if err := json.Unmarshal(body, &src); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	sourceURL, sourceNote := primarySource(src.Sources)

	row := Event{
		OCDID:          src.ID,
		Name:           src.Name,
		Slug:           SlugWithID(src.Name, src.ID),
		Description:    src.Description,
		Classification: src.Classification,
		AllDay:         src.AllDay,
		Status:         src.Status,
		SourceURL:      sourceURL,
		SourceNote:     sourceNote,
	}
	if src.Location != nil {
		row.Location = src.Location.Name
	}
	if t := parseTimestamp(src.StartTime, p.Location); t != nil {
		row.StartTime = *t
	}
	row.EndTime = parseTimestamp(src.EndTime, p.Location)
	if t := parseTimestamp(src.CreatedAt, p.Location); t != nil {
		row.OCDCreatedAt = *t
	}
	if t := parseTimestamp(src.UpdatedAt, p.Location); t != nil {
		row.OCDUpdatedAt = *t
	}

	out := &EventRows{Event: row}

	for _, part := range src.Participants {
		out.Participants = append(out.Participants, EventParticipant{
			EventID:    src.ID,
			EntityName: part.Name,
			EntityType: part.EntityType,
			Note:       part.Note,
		})
	}

	for _, doc := range src.Documents {
		url := firstLinkURL(doc)
		if url == "" {
			continue
		}
		out.Documents = append(out.Documents, EventDocument{
			EventID: src.ID,
			URL:     url,
			Note:    doc.Note,
		})
	}

	for i, item := range src.Agenda {
		row := EventAgendaItem{
			EventID:     src.ID,
			Order:       agendaOrder(item.Order, i),
			Description: item.Description,
			Note:        strings.Join(item.Notes, "\n"),
		}
		for _, re := range item.RelatedEntities {
			if re.EntityType != "bill" {
				continue
			}
			switch {
			case re.BillID != "":
				row.BillID = &re.BillID
			case re.Bill != nil && re.Bill.ID != "":
				row.BillID = &re.Bill.ID
			}
			if row.BillID != nil {
				break
			}
		}
		out.AgendaItems = append(out.AgendaItems, row)
	}

	return out, nil
}

// agendaOrder prefers the dataset's own order value; a blank or malformed
// one falls back to the array position.
func agendaOrder(raw string, index int) int {
	if raw == "" {
		return index
	}
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return n
	}
	return index
}
