package gwodds

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/richard-senior/gwodds/internal/logger"
	_ "modernc.org/sqlite"
)

// Persistable is implemented by objects the store can manage. Table shape is
// derived from the `column`, `dbtype`, `primary` and `index` struct tags.
type Persistable interface {
	TableName() string
	PrimaryKey() map[string]any
	BeforeSave() error
}

// Store holds the SQLite database the stats/fixture collaborators write into
// and the engine reads from.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if necessary) the database at the given path and
// ensures the engine's tables exist
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite permits one writer; a second pooled connection would only ever
	// see SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Database initialized", path)
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	for _, obj := range []Persistable{&TeamSeasonStats{}, &Fixture{}} {
		if err := s.CreateTable(obj); err != nil {
			return fmt.Errorf("failed to create table %s: %w", obj.TableName(), err)
		}
	}
	return nil
}

// CreateTable creates the table (and its indexes) for a persistable type
func (s *Store) CreateTable(obj Persistable) error {
	createSQL := generateCreateTableSQL(obj)
	logger.Debug("Creating table with SQL", createSQL)
	if _, err := s.db.Exec(createSQL); err != nil {
		return err
	}
	for _, indexSQL := range generateIndexSQL(obj) {
		if _, err := s.db.Exec(indexSQL); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx so saves can run inside or
// outside a transaction
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Save persists the object, inserting or updating as needed
func (s *Store) Save(obj Persistable) error {
	return save(s.db, obj)
}

func save(e execer, obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	found, err := rowExists(e, obj)
	if err != nil {
		return err
	}

	table := obj.TableName()
	columns, values := persistedFields(obj)

	if found {
		where, whereValues := buildWhereClause(obj.PrimaryKey())
		primary := primaryColumns(obj)
		var setPairs []string
		var setValues []any
		for i, column := range columns {
			if primary[column] {
				continue
			}
			setPairs = append(setPairs, column+" = ?")
			setValues = append(setValues, values[i])
		}
		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(setPairs, ", "), where)
		if _, err := e.Exec(query, append(setValues, whereValues...)...); err != nil {
			return fmt.Errorf("failed to update %s: %w", table, err)
		}
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
	if _, err := e.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// SaveAll persists a batch of objects inside one transaction
func (s *Store) SaveAll(objects []Persistable) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := save(tx, obj); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Exists checks whether the object's primary key is present
func (s *Store) Exists(obj Persistable) (bool, error) {
	return rowExists(s.db, obj)
}

func rowExists(e execer, obj Persistable) (bool, error) {
	where, values := buildWhereClause(obj.PrimaryKey())
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", obj.TableName(), where)

	var count int
	if err := e.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", obj.TableName(), err)
	}
	return count > 0, nil
}

// Delete removes the object from its table
func (s *Store) Delete(obj Persistable) error {
	where, values := buildWhereClause(obj.PrimaryKey())
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", obj.TableName(), where)
	if _, err := s.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", obj.TableName(), err)
	}
	return nil
}

// FindWhere executes a custom WHERE query against the object's table and
// returns one freshly allocated object per row
func (s *Store) FindWhere(obj Persistable, whereClause string, args ...any) ([]Persistable, error) {
	columns, _ := scanTargets(obj)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), obj.TableName(), whereClause)
	logger.Debug("FindWhere SQL", query)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", obj.TableName(), err)
	}
	defer rows.Close()

	objType := reflect.TypeOf(obj).Elem()

	var results []Persistable
	for rows.Next() {
		next := reflect.New(objType).Interface().(Persistable)
		_, targets := scanTargets(next)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", obj.TableName(), err)
		}
		results = append(results, next)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", obj.TableName(), err)
	}

	return results, nil
}

// LoadSeasonStats loads every stats record for a league across the given
// season labels
func (s *Store) LoadSeasonStats(leagueID string, seasons ...string) ([]*TeamSeasonStats, error) {
	if len(seasons) == 0 {
		return nil, fmt.Errorf("must pass at least one season")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(seasons)), ", ")
	args := make([]any, 0, len(seasons)+1)
	args = append(args, leagueID)
	for _, season := range seasons {
		args = append(args, season)
	}

	rows, err := s.FindWhere(&TeamSeasonStats{}, fmt.Sprintf("league_id = ? AND season IN (%s)", placeholders), args...)
	if err != nil {
		return nil, err
	}

	stats := make([]*TeamSeasonStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, row.(*TeamSeasonStats))
	}
	return stats, nil
}

// LoadUpcomingFixtures loads a league's fixtures in kickoff order
func (s *Store) LoadUpcomingFixtures(leagueID string) ([]*Fixture, error) {
	rows, err := s.FindWhere(&Fixture{}, "league_id = ? ORDER BY kickoff_utc ASC", leagueID)
	if err != nil {
		return nil, err
	}

	fixtures := make([]*Fixture, 0, len(rows))
	for _, row := range rows {
		fixtures = append(fixtures, row.(*Fixture))
	}
	return fixtures, nil
}

/////////////////////////////////////////////////////////////////////////
////// Reflection Helpers
/////////////////////////////////////////////////////////////////////////

func structFields(obj any) ([]reflect.StructField, reflect.Value) {
	value := reflect.ValueOf(obj)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	objType := value.Type()

	fields := make([]reflect.StructField, 0, objType.NumField())
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}
		fields = append(fields, field)
	}
	return fields, value
}

func columnName(field reflect.StructField) string {
	if name := field.Tag.Get("column"); name != "" {
		return name
	}
	return strings.ToLower(field.Name)
}

// persistedFields extracts column names and current values for writes
func persistedFields(obj any) ([]string, []any) {
	fields, value := structFields(obj)

	columns := make([]string, 0, len(fields))
	values := make([]any, 0, len(fields))
	for _, field := range fields {
		columns = append(columns, columnName(field))
		values = append(values, value.FieldByIndex(field.Index).Interface())
	}
	return columns, values
}

// scanTargets extracts column names and addressable scan destinations
func scanTargets(obj any) ([]string, []any) {
	fields, value := structFields(obj)

	columns := make([]string, 0, len(fields))
	targets := make([]any, 0, len(fields))
	for _, field := range fields {
		columns = append(columns, columnName(field))
		targets = append(targets, value.FieldByIndex(field.Index).Addr().Interface())
	}
	return columns, targets
}

func primaryColumns(obj any) map[string]bool {
	fields, _ := structFields(obj)
	primary := make(map[string]bool)
	for _, field := range fields {
		if field.Tag.Get("primary") == "true" {
			primary[columnName(field)] = true
		}
	}
	return primary
}

func generateCreateTableSQL(obj Persistable) string {
	fields, _ := structFields(obj)

	var columns []string
	var primaryKeys []string
	for _, field := range fields {
		dbType := field.Tag.Get("dbtype")
		column := columnName(field)
		if field.Tag.Get("primary") == "true" {
			primaryKeys = append(primaryKeys, column)
		}
		columns = append(columns, fmt.Sprintf("%s %s", column, dbType))
	}
	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", obj.TableName(), strings.Join(columns, ", "))
}

func generateIndexSQL(obj Persistable) []string {
	fields, _ := structFields(obj)

	var statements []string
	for _, field := range fields {
		if field.Tag.Get("index") != "true" {
			continue
		}
		column := columnName(field)
		statements = append(statements,
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", obj.TableName(), column, obj.TableName(), column))
	}
	return statements
}

// buildWhereClause builds a WHERE clause from a primary key map with a
// deterministic column order
func buildWhereClause(primaryKey map[string]any) (string, []any) {
	columns := make([]string, 0, len(primaryKey))
	for column := range primaryKey {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	conditions := make([]string, 0, len(columns))
	values := make([]any, 0, len(columns))
	for _, column := range columns {
		conditions = append(conditions, column+" = ?")
		values = append(values, primaryKey[column])
	}
	return strings.Join(conditions, " AND "), values
}
