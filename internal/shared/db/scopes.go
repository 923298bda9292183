package db

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockForClaim adds FOR UPDATE SKIP LOCKED on dialects that support row locks.
// sqlite serialises writers on its own and rejects the clause, so it is skipped there.
func LockForClaim() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db.Dialector.Name() == "sqlite" {
			return db
		}
		return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Options: clause.LockingOptionsSkipLocked})
	}
}

// LockForUpdate adds a plain FOR UPDATE where supported.
func LockForUpdate() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db.Dialector.Name() == "sqlite" {
			return db
		}
		return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
}

// DueBefore filters rows whose column is NULL or not later than t.
func DueBefore(column string, t time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("("+column+" IS NULL OR "+column+" <= ?)", t)
	}
}
