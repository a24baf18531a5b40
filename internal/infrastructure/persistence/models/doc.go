// Package models contains GORM persistence models. They mirror database
// tables and are converted to and from domain entities at the repository
// boundary, keeping gorm tags out of the domain layer.
package models
