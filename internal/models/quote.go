package models

import "time"

// UserRef is the trimmed user view embedded in quote responses.
type UserRef struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email,omitempty"`
}

type Quote struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Author      string    `json:"author"`
	Context     *string   `json:"context"`
	AuthorID    *string   `json:"authorId"`
	IsFavorite  bool      `json:"isFavorite"`
	SubmittedBy string    `json:"submittedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	Submitter   UserRef   `json:"submitter"`
	AuthorUser  *UserRef  `json:"authorUser"`
}

// QuotePatch carries a partial update. Nil means the field was absent from
// the request and must be left untouched; a pointer to an empty string is an
// explicit clear.
type QuotePatch struct {
	Text       *string `json:"text"`
	Author     *string `json:"author"`
	Context    *string `json:"context"`
	IsFavorite *bool   `json:"isFavorite"`
}

// Empty reports whether the patch carries no fields at all.
func (p QuotePatch) Empty() bool {
	return p.Text == nil && p.Author == nil && p.Context == nil && p.IsFavorite == nil
}
