package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// get runs a `?` placeholder query and scans a single row into dest.
// sql.ErrNoRows is mapped to notFound.
func (repo repository) get(ctx context.Context, exe core.DBExecutor, notFound error, dest interface{}, query string, args ...interface{}) error {
	if err := exe.GetContext(ctx, dest, exe.Rebind(query), args...); err != nil {
		if err == sql.ErrNoRows {
			return notFound
		}
		return err
	}
	return nil
}

// selectAll runs a `?` placeholder query and scans all rows into dest.
func (repo repository) selectAll(ctx context.Context, exe core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	return exe.SelectContext(ctx, dest, exe.Rebind(query), args...)
}

// exec runs a `?` placeholder statement and returns the number of affected rows.
func (repo repository) execStmt(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) (int64, error) {
	res, err := exe.ExecContext(ctx, exe.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// whereClause joins conditions with AND.
type whereClause struct {
	conds []string
	args  []interface{}
}

func (w *whereClause) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders orderings whose field is in allowed (json name -> column).
// Unknown fields are ignored; def is used when nothing is left.
func orderBy(ordering []core.DBOrdering, allowed map[string]string, def string) string {
	list := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		list = append(list, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(list) == 0 {
		return " ORDER BY " + def
	}
	return " ORDER BY " + strings.Join(list, ", ")
}

func wrapf(err error, format string, args ...interface{}) error {
	if core.IsNotFound(err) {
		return err
	}
	return errors.Wrapf(err, format, args...)
}

// inClause renders "col IN (?, ?, ...)" with n placeholders.
func inClause(col string, n int) string {
	return col + " IN (" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

func stringArgs(vals []string) []interface{} {
	args := make([]interface{}, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}
