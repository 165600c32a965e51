package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/slots"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can
// hand the same *sql.Tx to several repositories inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	Slots(db dbx.DBTX) slots.Repository
}
