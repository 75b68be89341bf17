package dropship

import (
	"strings"
	"time"

	"github.com/erp/dropship/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// APIFormat is the wire format of a supplier's remote API
type APIFormat string

const (
	APIFormatJSON        APIFormat = "json"
	APIFormatWooCommerce APIFormat = "woocommerce"
)

// SyncFrequency controls how often a supplier's catalog is pulled automatically
type SyncFrequency string

const (
	SyncManual SyncFrequency = "manual"
	SyncHourly SyncFrequency = "hourly"
	SyncDaily  SyncFrequency = "daily"
	SyncWeekly SyncFrequency = "weekly"
)

// IsValid checks if the sync frequency is known
func (f SyncFrequency) IsValid() bool {
	switch f {
	case SyncManual, SyncHourly, SyncDaily, SyncWeekly:
		return true
	}
	return false
}

const (
	defaultCountry      = "PL"
	defaultCurrency     = "PLN"
	defaultLeadTimeDays = 3
)

var upper = cases.Upper(language.Und)

// NormalizeCode trims and upper-cases a supplier code
func NormalizeCode(code string) string {
	return upper.String(strings.TrimSpace(code))
}

// Supplier is a vendor whose catalog is synced and to whom dropship orders are placed.
// ProductsCount, OrdersCount and TotalRevenue are caches recomputed by the repository.
type Supplier struct {
	shared.BaseAggregateRoot
	Name    string
	Code    string
	Email   string
	Phone   string
	Website string
	Country string

	APIURL        string
	APIKey        string
	APIFormat     APIFormat
	SyncEnabled   bool
	SyncFrequency SyncFrequency
	LastSyncAt    *time.Time

	CommissionRate decimal.Decimal
	MinOrderValue  int64
	LeadTimeDays   int
	Currency       string

	IsActive        bool
	IsDropship      bool
	ShowInStore     bool
	StockLocationID string

	ProductsCount int64
	OrdersCount   int64
	TotalRevenue  int64

	Notes    string
	Metadata map[string]any
}

// NewSupplier creates an active dropship supplier with zeroed counters
func NewSupplier(name, code string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	normalized, err := validateCode(code)
	if err != nil {
		return nil, err
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Code:              normalized,
		Country:           defaultCountry,
		APIFormat:         APIFormatJSON,
		SyncEnabled:       true,
		SyncFrequency:     SyncManual,
		CommissionRate:    decimal.Zero,
		LeadTimeDays:      defaultLeadTimeDays,
		Currency:          defaultCurrency,
		IsActive:          true,
		IsDropship:        true,
		Metadata:          map[string]any{},
	}, nil
}

func validateCode(code string) (string, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return "", shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if len(normalized) > 50 {
		return "", shared.NewDomainError("INVALID_CODE", "Supplier code cannot exceed 50 characters")
	}
	return normalized, nil
}

// Rename changes the display name
func (s *Supplier) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	s.Name = name
	s.Touch(time.Now())
	return nil
}

// ChangeCode sets a new code and reports whether it differs from the current one
func (s *Supplier) ChangeCode(code string) (bool, error) {
	normalized, err := validateCode(code)
	if err != nil {
		return false, err
	}
	if normalized == s.Code {
		return false, nil
	}
	s.Code = normalized
	s.Touch(time.Now())
	return true, nil
}

// SetContact sets contact details
func (s *Supplier) SetContact(email, phone, website, country string) {
	s.Email = email
	s.Phone = phone
	s.Website = website
	if country != "" {
		s.Country = country
	}
	s.Touch(time.Now())
}

// SetIntegration configures the remote feed and order API
func (s *Supplier) SetIntegration(apiURL, apiKey string, format APIFormat) error {
	if format == "" {
		format = APIFormatJSON
	}
	if format != APIFormatJSON && format != APIFormatWooCommerce {
		return shared.NewDomainError("INVALID_API_FORMAT", "API format must be json or woocommerce")
	}
	s.APIURL = strings.TrimSpace(apiURL)
	s.APIKey = apiKey
	s.APIFormat = format
	s.Touch(time.Now())
	return nil
}

// SetSchedule configures automatic synchronization
func (s *Supplier) SetSchedule(enabled bool, frequency SyncFrequency) error {
	if frequency == "" {
		frequency = SyncManual
	}
	if !frequency.IsValid() {
		return shared.NewDomainError("INVALID_SYNC_FREQUENCY", "Sync frequency must be manual, hourly, daily or weekly")
	}
	s.SyncEnabled = enabled
	s.SyncFrequency = frequency
	s.Touch(time.Now())
	return nil
}

// SetTerms sets commercial terms
func (s *Supplier) SetTerms(commissionRate decimal.Decimal, minOrderValue int64, leadTimeDays int, currency string) error {
	if commissionRate.IsNegative() {
		return shared.NewDomainError("INVALID_COMMISSION_RATE", "Commission rate cannot be negative")
	}
	if minOrderValue < 0 {
		return shared.NewDomainError("INVALID_MIN_ORDER_VALUE", "Minimum order value cannot be negative")
	}
	if leadTimeDays < 0 {
		return shared.NewDomainError("INVALID_LEAD_TIME", "Lead time cannot be negative")
	}
	s.CommissionRate = commissionRate
	s.MinOrderValue = minOrderValue
	s.LeadTimeDays = leadTimeDays
	if currency != "" {
		s.Currency = strings.ToUpper(currency)
	}
	s.Touch(time.Now())
	return nil
}

// SetFlags sets activation and storefront visibility
func (s *Supplier) SetFlags(active, dropship, showInStore bool) {
	s.IsActive = active
	s.IsDropship = dropship
	s.ShowInStore = showInStore
	s.Touch(time.Now())
}

// SetNotes sets free-form notes and metadata
func (s *Supplier) SetNotes(notes string, metadata map[string]any) {
	s.Notes = notes
	if metadata != nil {
		s.Metadata = metadata
	}
	s.Touch(time.Now())
}

// AttachStockLocation records the stock location provisioned for this supplier
func (s *Supplier) AttachStockLocation(id string) {
	s.StockLocationID = id
	s.Touch(time.Now())
}

// DefaultMarkup is the percentage markup for newly discovered products
func (s *Supplier) DefaultMarkup() decimal.Decimal {
	if s.CommissionRate.IsPositive() {
		return s.CommissionRate
	}
	return DefaultMarkupPercent
}

// CanSync reports ErrSyncDisabled when automatic or manual sync is switched off
func (s *Supplier) CanSync() error {
	if !s.SyncEnabled {
		return ErrSyncDisabled
	}
	return nil
}
