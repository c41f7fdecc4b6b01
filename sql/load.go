package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed sessions.sql
var sessionsSQL string

//go:embed passages.sql
var passagesSQL string

// Function lists for verification
var SessionsFunctions = []string{
	"init_sessions",
	"upsert_session",
	"select_session",
	"select_active_sessions",
	"delete_session",
	"delete_expired_sessions",
	"count_active_sessions",
}

var PassagesFunctions = []string{
	"init_passages",
	"insert_passage",
	"select_passages_by_similarity",
	"delete_passages_by_session",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadSessionsSql loads session-related SQL functions
func LoadSessionsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, SessionsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing sessions functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(sessionsSQL)
	if err != nil {
		return fmt.Errorf("error executing sessions SQL: %w", err)
	}

	exist, err := checkFunctions(db, SessionsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL sessions functions loaded successfully")
	return nil
}

// LoadPassagesSql loads passage-related SQL functions
func LoadPassagesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, PassagesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing passages functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(passagesSQL)
	if err != nil {
		return fmt.Errorf("error executing passages SQL: %w", err)
	}

	exist, err := checkFunctions(db, PassagesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL passages functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadSessionsSql(db, force); err != nil {
		return err
	}

	if err := LoadPassagesSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
