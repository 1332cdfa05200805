// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package confero

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/confero/core"
)

// snapshotItem is one offering or request in an extraction snapshot.
// Embeddings are optional; items without them get vectors during the
// precompute embedding backfill.
type snapshotItem struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// snapshotAttendee mirrors one attendee record in an extraction snapshot.
type snapshotAttendee struct {
	Id        uint64         `json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Company   string         `json:"company"`
	JobTitle  string         `json:"job_title"`
	Country   string         `json:"country"`
	LinkedIn  string         `json:"linkedin"`
	Swapcard  string         `json:"swapcard"`
	Biography string         `json:"biography"`
	Offerings []snapshotItem `json:"offerings"`
	Requests  []snapshotItem `json:"requests"`
}

// SnapshotStats summarizes what a snapshot load stored.
type SnapshotStats struct {
	Attendees int
	Offerings int
	Requests  int
}

// LoadSnapshot imports an extraction snapshot file into the database.
// Offering and request IDs are derived from attendee ID plus text, so
// loading the same snapshot twice overwrites rather than duplicates.
func LoadSnapshot(ctx context.Context, db *Database, path string) (*SnapshotStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []snapshotAttendee
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid snapshot format: %w", err)
	}

	stats := &SnapshotStats{}
	for _, record := range records {
		if record.Id == 0 {
			return nil, fmt.Errorf("attendee %q %q has no id", record.FirstName, record.LastName)
		}
		attendee := &core.Attendee{
			Id:        core.ID(record.Id),
			FirstName: record.FirstName,
			LastName:  record.LastName,
			Company:   record.Company,
			JobTitle:  record.JobTitle,
			Country:   record.Country,
			LinkedIn:  record.LinkedIn,
			Swapcard:  record.Swapcard,
			Biography: record.Biography,
		}

		offerings := make([]*core.Offering, 0, len(record.Offerings))
		for _, item := range record.Offerings {
			if item.Text == "" {
				continue
			}
			offerings = append(offerings, &core.Offering{
				Id:         itemID(attendee.Id, item.Text),
				AttendeeId: attendee.Id,
				Text:       item.Text,
				Vector:     item.Embedding,
			})
		}

		requests := make([]*core.Request, 0, len(record.Requests))
		for _, item := range record.Requests {
			if item.Text == "" {
				continue
			}
			requests = append(requests, &core.Request{
				Id:         itemID(attendee.Id, item.Text),
				AttendeeId: attendee.Id,
				Text:       item.Text,
				Vector:     item.Embedding,
			})
		}

		if err := db.PutAttendeeData(ctx, attendee, offerings, requests); err != nil {
			return nil, fmt.Errorf("failed to store attendee %d: %w", record.Id, err)
		}
		stats.Attendees++
		stats.Offerings += len(offerings)
		stats.Requests += len(requests)
	}

	return stats, nil
}

// itemID derives a stable ID from owner and text so re-seeding is
// idempotent. The owner is part of the key because two attendees can ask
// for the same thing verbatim.
func itemID(attendeeId core.ID, text string) core.ID {
	return core.IDFromContent(fmt.Sprintf("%d:%s", attendeeId, text))
}
