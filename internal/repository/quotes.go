package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kollektivet/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrAuthorNotFound is returned when a quote references an author user id
// that does not exist.
var ErrAuthorNotFound = errors.New("author user not found")

type QuoteRepository interface {
	List(ctx context.Context) ([]*models.Quote, error)
	GetByID(ctx context.Context, id string) (*models.Quote, error)
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	// Update applies the patch in a single conditional statement: the row is
	// only touched when it belongs to callerID or callerIsAdmin is set.
	// Returns whether a row matched.
	Update(ctx context.Context, id string, patch models.QuotePatch, callerID string, callerIsAdmin bool) (bool, error)
	Delete(ctx context.Context, id string, callerID string, callerIsAdmin bool) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type quoteRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewQuoteRepository(db *sqlx.DB, logger *zap.Logger) QuoteRepository {
	return &quoteRepository{db: db, logger: logger}
}

type quoteRow struct {
	ID             string         `db:"id"`
	Text           string         `db:"text"`
	Author         string         `db:"author"`
	Context        sql.NullString `db:"context"`
	AuthorID       sql.NullString `db:"author_id"`
	IsFavorite     bool           `db:"is_favorite"`
	SubmittedBy    string         `db:"submitted_by"`
	CreatedAt      time.Time      `db:"created_at"`
	SubmitterID    string         `db:"submitter_id"`
	SubmitterName  sql.NullString `db:"submitter_name"`
	SubmitterEmail string         `db:"submitter_email"`
	AuthorUserID   sql.NullString `db:"author_user_id"`
	AuthorUserName sql.NullString `db:"author_user_name"`
}

const quoteSelect = `
	SELECT
		q.id,
		q.text,
		q.author,
		q.context,
		q.author_id,
		q.is_favorite,
		q.submitted_by,
		q.created_at,
		s.id AS submitter_id,
		s.name AS submitter_name,
		s.email AS submitter_email,
		a.id AS author_user_id,
		a.name AS author_user_name
	FROM quotes q
	JOIN users s ON q.submitted_by = s.id
	LEFT JOIN users a ON q.author_id = a.id
`

func (row *quoteRow) toQuote() *models.Quote {
	quote := &models.Quote{
		ID:          row.ID,
		Text:        row.Text,
		Author:      row.Author,
		IsFavorite:  row.IsFavorite,
		SubmittedBy: row.SubmittedBy,
		CreatedAt:   row.CreatedAt,
		Submitter: models.UserRef{
			ID:    row.SubmitterID,
			Email: row.SubmitterEmail,
		},
	}
	if row.Context.Valid {
		quote.Context = &row.Context.String
	}
	if row.AuthorID.Valid {
		quote.AuthorID = &row.AuthorID.String
	}
	if row.SubmitterName.Valid {
		quote.Submitter.Name = &row.SubmitterName.String
	}
	if row.AuthorUserID.Valid {
		authorUser := &models.UserRef{ID: row.AuthorUserID.String}
		if row.AuthorUserName.Valid {
			authorUser.Name = &row.AuthorUserName.String
		}
		quote.AuthorUser = authorUser
	}
	return quote
}

func (r *quoteRepository) List(ctx context.Context) ([]*models.Quote, error) {
	var rows []quoteRow
	query := quoteSelect + ` ORDER BY q.created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	quotes := make([]*models.Quote, 0, len(rows))
	for i := range rows {
		quotes = append(quotes, rows[i].toQuote())
	}
	return quotes, nil
}

func (r *quoteRepository) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	var row quoteRow
	query := quoteSelect + ` WHERE q.id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return row.toQuote(), nil
}

func (r *quoteRepository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	query := `INSERT INTO quotes (id, text, author, context, author_id, submitted_by)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, quote.ID, quote.Text, quote.Author,
		nullable(quote.Context), nullable(quote.AuthorID), quote.SubmittedBy)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, quote.ID)
}

func (r *quoteRepository) Update(ctx context.Context, id string, patch models.QuotePatch, callerID string, callerIsAdmin bool) (bool, error) {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 7)

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Text != nil {
		addSet("text", *patch.Text)
	}
	if patch.Author != nil {
		addSet("author", *patch.Author)
	}
	if patch.Context != nil {
		addSet("context", *patch.Context)
	}
	if patch.IsFavorite != nil {
		addSet("is_favorite", *patch.IsFavorite)
	}
	if len(set) == 0 {
		return false, errors.New("empty patch")
	}

	args = append(args, id, callerID, callerIsAdmin)
	query := fmt.Sprintf(`UPDATE quotes SET %s WHERE id = $%d AND (submitted_by = $%d OR $%d)`,
		strings.Join(set, ", "), len(args)-2, len(args)-1, len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *quoteRepository) Delete(ctx context.Context, id string, callerID string, callerIsAdmin bool) (bool, error) {
	query := `DELETE FROM quotes WHERE id = $1 AND (submitted_by = $2 OR $3)`
	result, err := r.db.ExecContext(ctx, query, id, callerID, callerIsAdmin)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *quoteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM quotes WHERE id = $1)`, id)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func nullable(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
