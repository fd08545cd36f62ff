package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

const userColumns = "id, username, password, role, name, created_at"

type userRow struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	Role      string    `db:"role"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:        usr.ID,
		Username:  usr.Username,
		Password:  string(usr.PasswordHash),
		Role:      usr.Role,
		Name:      usr.Name,
		CreatedAt: usr.CreatedAt.UTC(),
	}
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		Username:     r.Username,
		Name:         r.Name,
		Role:         r.Role,
		PasswordHash: []byte(r.Password),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func usersFromRows(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users
}

type UserRepository struct {
	repository
}

var _ user.Repository = (*UserRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *UserRepository {
	return &UserRepository{repository{exec: exec}}
}

func (repo UserRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	row := newUserRow(usr)
	_, err := repo.execStmt(ctx, repo.getExec(exec),
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		row.ID, row.Username, row.Password, row.Role, row.Name, row.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "username") {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.user(), nil
}

func (repo UserRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var where whereClause
	switch {
	case filter.ID != "":
		where.add("id = ?", filter.ID)
	case filter.Username != "":
		where.add("username = ?", filter.Username)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	err := repo.get(ctx, repo.getExec(exec), user.ErrNotFound, &row, "SELECT "+userColumns+" FROM users"+where.String(), where.args...)
	if err != nil {
		return user.User{}, wrapf(err, "finding user")
	}
	return row.user(), nil
}

var userOrderings = map[string]string{
	"name":      "name",
	"username":  "username",
	"role":      "role",
	"createdAt": "created_at",
}

func (repo UserRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	var where whereClause
	if filter != nil {
		// users with Name or Username matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			where.add("(LOWER(name) LIKE LOWER(?) OR LOWER(username) LIKE LOWER(?))", val, val)
		}
		if len(filter.Roles) > 0 {
			where.add(inClause("role", len(filter.Roles)), stringArgs(filter.Roles)...)
		}
		if len(filter.IDs) > 0 {
			where.add(inClause("id", len(filter.IDs)), stringArgs(filter.IDs)...)
		}
	}

	var rows []userRow
	q := "SELECT " + userColumns + " FROM users" + where.String() + orderBy(ordering, userOrderings, "name ASC")
	if err := repo.selectAll(ctx, repo.getExec(exec), &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return usersFromRows(rows), nil
}

func (repo UserRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	row := newUserRow(usr)
	cnt, err := repo.execStmt(ctx, repo.getExec(exec),
		"UPDATE users SET username = ?, password = ?, role = ?, name = ? WHERE id = ?",
		row.Username, row.Password, row.Role, row.Name, row.ID)
	if err != nil {
		if database.IsUniqueViolation(err, "username") {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return row.user(), nil
}
