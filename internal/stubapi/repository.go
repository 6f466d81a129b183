package stubapi

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/contesttracker/tracker/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ErrNoMatchingCompetition is returned when no competition of a type covers a participant's age
var ErrNoMatchingCompetition = errors.New("no competition for this type and age")

// Repository stores competitions, participants, enrollments and users in SQLite
type Repository struct {
	db *sql.DB
}

// NewRepository opens dbPath and runs migrations. Use ":memory:" for a throwaway database.
func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// SQLite works best with single connection; also keeps :memory: databases shared
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS competitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			age_category TEXT NOT NULL,
			nr_of_participants INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			age INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS participant_competitions (
			participant_id INTEGER NOT NULL,
			competition_id INTEGER NOT NULL,
			PRIMARY KEY (participant_id, competition_id),
			FOREIGN KEY (participant_id) REFERENCES participants(id) ON DELETE CASCADE,
			FOREIGN KEY (competition_id) REFERENCES competitions(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_name TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_competitions_type_age ON competitions(type, age_category)`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_competition ON participant_competitions(competition_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// Seed inserts one competition per type and age band when the table is empty,
// and the given user when it does not exist yet. It returns the number of
// competitions inserted.
func (r *Repository) Seed(ctx context.Context, userName, password string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM competitions`).Scan(&count); err != nil {
		return 0, err
	}

	inserted := 0
	if count == 0 {
		for _, typ := range models.CompetitionTypes() {
			for _, age := range models.AgeCategories() {
				if _, err := r.db.ExecContext(ctx,
					`INSERT INTO competitions (type, age_category, nr_of_participants) VALUES (?, ?, 0)`,
					string(typ), string(age)); err != nil {
					return inserted, err
				}
				inserted++
			}
		}
	}

	if userName != "" {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO users (user_name, password) VALUES (?, ?)`, userName, password); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

// ==================== Competition Methods ====================

// ListCompetitions returns competitions, narrowed by typ and/or age when non-empty
func (r *Repository) ListCompetitions(ctx context.Context, typ, age string) ([]models.Competition, error) {
	query := `SELECT id, type, age_category, nr_of_participants FROM competitions WHERE 1=1`
	var args []interface{}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, typ)
	}
	if age != "" {
		query += ` AND age_category = ?`
		args = append(args, age)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := []models.Competition{}
	for rows.Next() {
		var c models.Competition
		var t, a string
		if err := rows.Scan(&c.ID, &t, &a, &c.NrOfParticipants); err != nil {
			return nil, err
		}
		c.Type = models.CompetitionType(t)
		c.AgeCategory = models.AgeCategory(a)
		competitions = append(competitions, c)
	}
	return competitions, rows.Err()
}

// GetCompetition returns one competition
func (r *Repository) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	var c models.Competition
	var t, a string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, type, age_category, nr_of_participants FROM competitions WHERE id = ?`, id,
	).Scan(&c.ID, &t, &a, &c.NrOfParticipants)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Type = models.CompetitionType(t)
	c.AgeCategory = models.AgeCategory(a)
	return &c, nil
}

// CreateCompetition inserts a competition and returns it with its id
func (r *Repository) CreateCompetition(ctx context.Context, dto models.CompetitionDTO) (*models.Competition, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO competitions (type, age_category, nr_of_participants) VALUES (?, ?, ?)`,
		string(dto.Type), string(dto.AgeCategory), dto.NrOfParticipants)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Competition{
		ID:               int(id),
		Type:             dto.Type,
		AgeCategory:      dto.AgeCategory,
		NrOfParticipants: dto.NrOfParticipants,
	}, nil
}

// UpdateCompetition replaces the fields of a competition
func (r *Repository) UpdateCompetition(ctx context.Context, id int, dto models.CompetitionDTO) (*models.Competition, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE competitions SET type = ?, age_category = ?, nr_of_participants = ? WHERE id = ?`,
		string(dto.Type), string(dto.AgeCategory), dto.NrOfParticipants, id)
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return r.GetCompetition(ctx, id)
}

// DeleteCompetition removes a competition and its enrollments
func (r *Repository) DeleteCompetition(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM competitions WHERE id = ?`, id)
	return err
}

// CompetitionFor returns the first competition of typ whose age band contains age
func (r *Repository) CompetitionFor(ctx context.Context, typ models.CompetitionType, age int) (*models.Competition, error) {
	band, ok := models.AgeCategoryFor(age)
	if !ok {
		return nil, ErrNoMatchingCompetition
	}
	matches, err := r.ListCompetitions(ctx, string(typ), string(band))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNoMatchingCompetition
	}
	return &matches[0], nil
}

// Enroll links a participant to a competition and increments its participant
// count. Enrolling twice is a no-op.
func (r *Repository) Enroll(ctx context.Context, participantID, competitionID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO participant_competitions (participant_id, competition_id) VALUES (?, ?)`,
		participantID, competitionID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE competitions SET nr_of_participants = nr_of_participants + 1 WHERE id = ?`,
			competitionID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ==================== Participant Methods ====================

func (r *Repository) scanParticipants(rows *sql.Rows) ([]models.Participant, error) {
	defer rows.Close()
	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Age); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// ListParticipants returns every participant
func (r *Repository) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, age FROM participants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return r.scanParticipants(rows)
}

// ParticipantsForCompetition returns the participants enrolled in a competition
func (r *Repository) ParticipantsForCompetition(ctx context.Context, competitionID int) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.age
		FROM participants p
		JOIN participant_competitions pc ON pc.participant_id = p.id
		WHERE pc.competition_id = ?
		ORDER BY p.id
	`, competitionID)
	if err != nil {
		return nil, err
	}
	return r.scanParticipants(rows)
}

// GetParticipant returns one participant
func (r *Repository) GetParticipant(ctx context.Context, id int) (*models.Participant, error) {
	var p models.Participant
	err := r.db.QueryRowContext(ctx, `SELECT id, name, age FROM participants WHERE id = ?`, id).Scan(&p.ID, &p.Name, &p.Age)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateParticipant inserts a participant and returns it with its id
func (r *Repository) CreateParticipant(ctx context.Context, dto models.CreateParticipantDTO) (*models.Participant, error) {
	result, err := r.db.ExecContext(ctx, `INSERT INTO participants (name, age) VALUES (?, ?)`, dto.Name, dto.Age)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Participant{ID: int(id), Name: dto.Name, Age: dto.Age}, nil
}

// UpdateParticipant applies the fields set in dto
func (r *Repository) UpdateParticipant(ctx context.Context, id int, dto models.UpdateParticipantDTO) (*models.Participant, error) {
	existing, err := r.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		existing.Name = *dto.Name
	}
	if dto.Age != nil {
		existing.Age = *dto.Age
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE participants SET name = ?, age = ? WHERE id = ?`, existing.Name, existing.Age, id); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteParticipant removes a participant and its enrollments
func (r *Repository) DeleteParticipant(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	return err
}

// ==================== User Methods ====================

// ListUsers returns every user
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_name, password FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.UserName, &u.Password); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser returns one user
func (r *Repository) GetUser(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `SELECT id, user_name, password FROM users WHERE id = ?`, id).Scan(&u.ID, &u.UserName, &u.Password)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user and returns it with its id
func (r *Repository) CreateUser(ctx context.Context, dto models.CreateUserDTO) (*models.User, error) {
	result, err := r.db.ExecContext(ctx, `INSERT INTO users (user_name, password) VALUES (?, ?)`, dto.UserName, dto.Password)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: int(id), UserName: dto.UserName, Password: dto.Password}, nil
}

// Authenticate returns the user matching both credentials
func (r *Repository) Authenticate(ctx context.Context, userName, password string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_name, password FROM users WHERE user_name = ? AND password = ?`, userName, password,
	).Scan(&u.ID, &u.UserName, &u.Password)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
