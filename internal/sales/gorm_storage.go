package sales

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// saleRecord is the row layout of the sales table.
type saleRecord struct {
	ID       uint             `gorm:"primaryKey"`
	Name     *string          `gorm:"not null;check:name <> ''"`
	Course   *string          `gorm:"not null;check:course <> ''"`
	Price    *decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaleDate *Date            `gorm:"column:sale_date;type:date;not null"`
}

func (saleRecord) TableName() string {
	return "sales"
}

func toRecord(s *Sale) *saleRecord {
	c := s.clone()
	return &saleRecord{
		Name:     c.Name,
		Course:   c.Course,
		Price:    c.Price,
		SaleDate: c.SaleDate,
	}
}

func (r *saleRecord) toSale() *Sale {
	return &Sale{
		ID:       r.ID,
		Name:     r.Name,
		Course:   r.Course,
		Price:    r.Price,
		SaleDate: r.SaleDate,
	}
}

// GormStorage persists sales in a relational database through gorm.
type GormStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStorage creates a storage backed by db.
func NewGormStorage(db *gorm.DB, logger *zap.Logger) *GormStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormStorage{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the sales table.
func (g *GormStorage) Migrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&saleRecord{}); err != nil {
		return errors.Wrap(err, "migrate sales table")
	}
	g.logger.Info("sales table migrated")
	return nil
}

// ListAll returns every sale ordered by ID.
func (g *GormStorage) ListAll(ctx context.Context) ([]*Sale, error) {
	var records []saleRecord
	if err := g.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, classifyStorageError(err, "list sales")
	}

	sales := make([]*Sale, 0, len(records))
	for i := range records {
		sales = append(sales, records[i].toSale())
	}
	return sales, nil
}

// Persist inserts the sale in a single transaction and returns the row as
// stored, with the ID assigned by the database. The caller's value is not
// modified.
//
// SQLite does not enforce the column's precision, so prices that do not fit
// numeric(12,2) are rejected here for every dialect.
func (g *GormStorage) Persist(ctx context.Context, sale *Sale) (*Sale, error) {
	if sale.Price != nil && !priceFits(*sale.Price) {
		return nil, invalidPrice(nil)
	}
	rec := toRecord(sale)

	var stored saleRecord
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return tx.First(&stored, rec.ID).Error
	})
	if err != nil {
		return nil, classifyStorageError(err, "persist sale")
	}

	return stored.toSale(), nil
}
