// Package sqlxrepos implements the entity repositories on postgres.
package sqlxrepos

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/scholarhub/backend/core"
)

// trapNoRowsErr maps psql "no rows" err to `notFound`
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// expectOne returns `notFound` when the statement touched no row.
func expectOne(res sql.Result, notFound error, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func toDate(day string) null.Time {
	t, err := core.ParseDay(day)
	if err != nil {
		return null.Time{}
	}
	return null.TimeFrom(t)
}

func fromDate(t null.Time) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(core.DateLayout)
}

func toNullString(s string) null.String {
	return null.NewString(s, s != "")
}

// whereClause accumulates AND-ed conditions with positional args.
type whereClause struct {
	conds []string
	args  []interface{}
}

// add appends `cond`, in which every "?" is replaced by the next placeholder for `arg`.
func (w *whereClause) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(w.args))))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func orderBy(ordering []core.DBOrdering, columns map[string]string) string {
	list := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if col, ok := columns[ord.Field]; ok {
			list = append(list, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	list = append(list, "id ASC")
	return " ORDER BY " + strings.Join(list, ", ")
}

// likePattern escapes the LIKE wildcards of `s` and wraps it for a "contains" match.
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
