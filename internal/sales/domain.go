package sales

import (
	"database/sql/driver"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices are rendered as JSON numbers ("price": 49.99), not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Sale represents a course sale recorded in the system.
//
// Required fields are pointers so that a candidate sale can carry a missing
// value down to storage, where the NOT NULL constraint rejects it.
type Sale struct {
	ID       uint             `json:"id"`
	Name     *string          `json:"name"`
	Course   *string          `json:"course"`
	Price    *decimal.Decimal `json:"price"`
	SaleDate *Date            `json:"saleDate"`
}

// hasRequiredFields reports whether every NOT NULL column has a value.
func (s *Sale) hasRequiredFields() bool {
	return s.Name != nil && *s.Name != "" &&
		s.Course != nil && *s.Course != "" &&
		s.Price != nil &&
		s.SaleDate != nil
}

// Price column is numeric(12,2): at most 10 integer digits and 2 decimal places.
const (
	priceScale     = 2
	pricePrecision = 12
)

var priceLimit = decimal.New(1, pricePrecision-priceScale)

// priceFits reports whether p is stored exactly by the price column.
func priceFits(p decimal.Decimal) bool {
	return p.Equal(p.Truncate(priceScale)) && p.Abs().LessThan(priceLimit)
}

// clone returns a copy that shares no pointers with s.
func (s *Sale) clone() *Sale {
	c := &Sale{ID: s.ID}
	if s.Name != nil {
		name := *s.Name
		c.Name = &name
	}
	if s.Course != nil {
		course := *s.Course
		c.Course = &course
	}
	if s.Price != nil {
		price := *s.Price
		c.Price = &price
	}
	if s.SaleDate != nil {
		date := *s.SaleDate
		c.SaleDate = &date
	}
	return c
}

// Date is a calendar date without time of day, encoded as YYYY-MM-DD.
type Date struct {
	civil.Date
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{d}, nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. Drivers hand dates back either as time.Time
// (postgres, sqlite with a date column type) or as text.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = civil.DateOf(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("sales: cannot scan %T into Date", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > len("2006-01-02") {
		s = s[:len("2006-01-02")]
	}
	parsed, err := civil.ParseDate(s)
	if err != nil {
		return err
	}
	d.Date = parsed
	return nil
}
