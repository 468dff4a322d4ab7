package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"recruitassist-backend/internal/models"
)

const getConversationMessages = `
SELECT messages
FROM conversations
WHERE agent_name = $1 AND phone_number = $2`

// ConversationHistory returns the most recent messages of a conversation, up
// to limit (0 means all). A conversation that does not exist yet is an empty
// history, not an error.
func (s *PostgresStore) ConversationHistory(ctx context.Context, agentName, phoneNumber string, limit int) ([]models.Message, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, getConversationMessages, agentName, phoneNumber).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []models.Message{}, nil
		}
		log.Printf("ERROR [PostgresStore] ConversationHistory: query failed for (%s, %s): %v", agentName, phoneNumber, err)
		return nil, fmt.Errorf("database error fetching conversation: %w", err)
	}

	var messages []models.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		log.Printf("ERROR [PostgresStore] ConversationHistory: corrupt messages for (%s, %s): %v", agentName, phoneNumber, err)
		return nil, fmt.Errorf("failed to parse conversation messages: %w", err)
	}

	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// The ON CONFLICT arm requires a unique constraint on
// (agent_name, phone_number), e.g.
//
//	ALTER TABLE conversations
//	    ADD CONSTRAINT conversations_agent_name_phone_number_key
//	    UNIQUE (agent_name, phone_number);
//
// Without it the insert fails and conversations are never created lazily.
const appendConversationMessages = `
INSERT INTO conversations (id, agent_name, phone_number, messages)
VALUES ($1, $2, $3, $4)
ON CONFLICT (agent_name, phone_number)
DO UPDATE SET messages = conversations.messages || EXCLUDED.messages, updated_at = NOW()`

// AppendConversationMessages appends msgs to the conversation in one
// statement, creating the conversation lazily. The single upsert keeps the
// append atomic and preserves causal order: either every message of the turn
// lands, in order, or none do.
func (s *PostgresStore) AppendConversationMessages(ctx context.Context, agentName, phoneNumber string, msgs []models.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	raw, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation messages: %w", err)
	}

	_, err = s.db.Exec(ctx, appendConversationMessages, uuid.New(), agentName, phoneNumber, raw)
	if err != nil {
		log.Printf("ERROR [PostgresStore] AppendConversationMessages: failed for (%s, %s): %v", agentName, phoneNumber, err)
		return fmt.Errorf("database error appending conversation messages: %w", err)
	}

	log.Printf("[PostgresStore] AppendConversationMessages: appended %d messages to (%s, %s)", len(msgs), agentName, phoneNumber)
	return nil
}
