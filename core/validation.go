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


package core

import (
	"fmt"
	"time"
)

// ValidateSupportItem validates a SupportItem according to domain rules.
//
// Validation rules:
//   - Number must not be empty
//
// NOT validated (upstream converters may leave these blank):
//   - Name, Category, RegistrationGroup, Unit
//   - PriceLimits (an item may have no published price in any state)
func ValidateSupportItem(item *SupportItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidSupportItem)
	}

	if item.Number == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSupportItem, ErrMissingItemNumber)
	}

	return nil
}

// ValidateClaimingRule validates a ClaimingRule according to domain rules.
func ValidateClaimingRule(rule *ClaimingRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule is nil", ErrInvalidRule)
	}

	if rule.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRule, ErrEmptyRuleName)
	}

	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - SourceType must be valid
//   - ChunkID must not be empty
//
// NOT validated:
//   - Vector (can be empty until the corpus is embedded)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	if err := ValidateSourceType(doc.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if doc.ChunkID == "" {
		return fmt.Errorf("%w: chunk id is required", ErrInvalidDocument)
	}

	return nil
}

// ValidateConversationTurn validates a ConversationTurn according to domain rules.
//
// Validation rules:
//   - Query must not be empty
//   - CreatedAt must not be in the future
//
// NOT validated:
//   - Answer (the no-relevant-information answer is still recorded)
//   - Sources (a turn may cite no documents)
//   - ID (0 is valid from database sequences)
func ValidateConversationTurn(turn *ConversationTurn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidTurn)
	}

	if turn.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptyQuery)
	}

	if !IsValidTimestamp(turn.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateSourceType validates that a SourceType has a valid value.
func ValidateSourceType(sourceType SourceType) error {
	switch sourceType {
	case SourceTypePricing, SourceTypeRule, SourceTypeGuidance:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidSourceType, sourceType)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
