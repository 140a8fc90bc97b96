package internal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/firodj/soramap/models"
)

const MemoryDSN = "file::memory:?cache=shared"

type SQLRepository struct {
	db *bun.DB
}

func NewSQLRepository(dsn string, debug bool) (*SQLRepository, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dsn)
	}
	sqldb.SetMaxOpenConns(1)

	repo := &SQLRepository{
		db: bun.NewDB(sqldb, sqlitedialect.New()),
	}

	repo.db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.WithEnabled(debug),
	))

	return repo, nil
}

func (repo *SQLRepository) Close() error {
	return repo.db.Close()
}

func (repo *SQLRepository) Migrate(ctx context.Context) error {
	for _, model := range []interface{}{(*models.Import)(nil), (*models.Symbol)(nil)} {
		if _, err := repo.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, "create table")
		}
	}
	_, err := repo.db.NewCreateIndex().
		Model((*models.Symbol)(nil)).
		Index("symbols_import_address_idx").
		IfNotExists().
		Column("import_id", "address").
		Exec(ctx)
	return errors.Wrap(err, "create index")
}

// SaveImport stores the content of doc as a new import.
func (repo *SQLRepository) SaveImport(ctx context.Context, doc *SoraDocument, res ApplyResult) (*models.Import, error) {
	imp := &models.Import{
		ID:        uuid.NewString(),
		MapFile:   doc.MapFile,
		CreatedAt: time.Now(),
		Functions: res.Functions,
		Data:      res.Data,
		Failed:    res.Failed,
		Skipped:   res.Skipped,
	}

	symbols := make([]models.Symbol, 0, doc.FunManager.Size()+doc.DataManager.Size()+doc.SymMap.Size())
	for _, fun := range doc.FunManager.Functions() {
		symbols = append(symbols, models.Symbol{
			ImportID: imp.ID,
			Kind:     models.KindFunction,
			Address:  fun.Address,
			Size:     fun.Size,
			Name:     fun.Name,
		})
	}
	for _, item := range doc.DataManager.Items() {
		symbols = append(symbols, models.Symbol{
			ImportID: imp.ID,
			Kind:     models.KindData,
			Address:  item.Address,
			Size:     item.Size,
			Name:     doc.GetLabelName(item.Address),
		})
	}
	for _, label := range doc.SymMap.Labels() {
		symbols = append(symbols, models.Symbol{
			ImportID: imp.ID,
			Kind:     models.KindLabel,
			Address:  label.Address,
			Name:     label.Name,
			Flags:    uint32(label.Flags),
		})
	}

	err := repo.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(imp).Exec(ctx); err != nil {
			return err
		}
		if len(symbols) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&symbols).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "save import")
	}
	return imp, nil
}

func (repo *SQLRepository) Imports(ctx context.Context) ([]models.Import, error) {
	imports := make([]models.Import, 0)
	err := repo.db.NewSelect().Model(&imports).Order("created_at ASC").Scan(ctx)
	return imports, errors.Wrap(err, "select imports")
}

// Symbols lists the rows of an import ordered by address, kind filters when
// not empty.
func (repo *SQLRepository) Symbols(ctx context.Context, importID string, kind string) ([]models.Symbol, error) {
	symbols := make([]models.Symbol, 0)
	q := repo.db.NewSelect().Model(&symbols).Where("import_id = ?", importID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	err := q.Order("address ASC", "id ASC").Scan(ctx)
	return symbols, errors.Wrap(err, "select symbols")
}
