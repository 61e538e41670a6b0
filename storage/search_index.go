package storage

import (
	"strings"
	"time"
)

// ConversationMessageMatch is one hit from a search across saved conversations
type ConversationMessageMatch struct {
	ConversationID   string
	ConversationName string
	MessageIndex     int
	Role             string
	Content          string
	Preview          string
	Timestamp        time.Time
}

type SearchIndex struct {
	storage *ConversationStorage
}

func NewSearchIndex(storage *ConversationStorage) *SearchIndex {
	return &SearchIndex{storage: storage}
}

// SearchAllConversations scans every saved conversation for the query,
// case-insensitive substring match
func (si *SearchIndex) SearchAllConversations(query string) ([]ConversationMessageMatch, error) {
	if query == "" {
		return []ConversationMessageMatch{}, nil
	}

	list, err := si.storage.List()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var matches []ConversationMessageMatch

	for _, meta := range list {
		conv, err := si.storage.Load(meta.ID)
		if err != nil {
			continue
		}

		for i, msg := range conv.Messages {
			if msg.Role == "system" {
				continue
			}

			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				preview := msg.Content
				if len(preview) > 100 {
					preview = preview[:100] + "..."
				}

				matches = append(matches, ConversationMessageMatch{
					ConversationID:   conv.ID,
					ConversationName: conv.Name,
					MessageIndex:     i,
					Role:             msg.Role,
					Content:          msg.Content,
					Preview:          preview,
					Timestamp:        msg.Timestamp,
				})
			}
		}
	}

	return matches, nil
}
