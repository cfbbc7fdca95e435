// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of GORM tags; repositories convert with
// ToDomain/FromDomain.
package models
