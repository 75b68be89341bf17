// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel shared by every owned table
//   - dropship.go: suppliers, supplier products, price history and supplier orders
//   - commerce.go: tables owned by the commerce platform (products, prices, orders)
package models
