package dao

import (
	"context"
	"strings"
	"unicode"

	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Search uses FTS5 on sqlite, tsvector on postgres and LIKE on mysql
// Search sqlite 使用 FTS5，postgres 使用 tsvector，mysql 使用 LIKE
func (r *noteRepository) Search(ctx context.Context, uid string, query string, limit, offset int) ([]*domain.Note, int64, error) {
	db := r.dao.db.WithContext(ctx)
	switch r.dao.Dialect() {
	case DialectSQLite:
		return searchFTS5(db, uid, query, limit, offset)
	case DialectPostgres:
		return searchTSVector(db, uid, query, limit, offset)
	default:
		return searchLike(db, uid, query, limit, offset)
	}
}

// FTS5Query quotes every whitespace separated term so no FTS5 operator survives.
// Terms without a letter or digit produce no token and are dropped.
// FTS5Query 为每个词加引号，防止注入 FTS5 运算符；不含字母数字的词被忽略
func FTS5Query(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.IndexFunc(t, isTokenRune) < 0 {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func searchFTS5(db *gorm.DB, uid, query string, limit, offset int) ([]*domain.Note, int64, error) {
	match := FTS5Query(query)
	if match == "" {
		return []*domain.Note{}, 0, nil
	}

	var total int64
	err := db.Raw(`SELECT COUNT(*) FROM note_fts JOIN note n ON n.id = note_fts.note_id
		WHERE note_fts MATCH ? AND n.user_id = ?`, match, uid).Scan(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var ms []*model.Note
	err = db.Raw(`SELECT n.* FROM note_fts JOIN note n ON n.id = note_fts.note_id
		WHERE note_fts MATCH ? AND n.user_id = ?
		ORDER BY rank, n.updated_at DESC LIMIT ? OFFSET ?`, match, uid, limit, offset).Scan(&ms).Error
	if err != nil {
		return nil, 0, err
	}
	return notesToDomain(ms), total, nil
}

const tsDocument = "to_tsvector('simple', title || ' ' || content)"

func searchTSVector(db *gorm.DB, uid, query string, limit, offset int) ([]*domain.Note, int64, error) {
	where := "user_id = ? AND " + tsDocument + " @@ plainto_tsquery('simple', ?)"

	var total int64
	if err := db.Model(&model.Note{}).Where(where, uid, query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []*model.Note
	err := db.Where(where, uid, query).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ts_rank(" + tsDocument + ", plainto_tsquery('simple', ?)) DESC",
			Vars:               []interface{}{query},
			WithoutParentheses: true,
		}}).
		Limit(limit).Offset(offset).
		Find(&ms).Error
	if err != nil {
		return nil, 0, err
	}
	return notesToDomain(ms), total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func searchLike(db *gorm.DB, uid, query string, limit, offset int) ([]*domain.Note, int64, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	where := "user_id = ? AND (title LIKE ? OR content LIKE ?)"

	var total int64
	if err := db.Model(&model.Note{}).Where(where, uid, pattern, pattern).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []*model.Note
	err := db.Where(where, uid, pattern, pattern).
		Order("updated_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error
	if err != nil {
		return nil, 0, err
	}
	return notesToDomain(ms), total, nil
}
