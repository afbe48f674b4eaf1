// Package model defines the persisted entities of the jellyseerr backend.
package model

// Setting is a key/value configuration row.
type Setting struct {
	Id    int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" gorm:"uniqueIndex"`
	Value string `json:"value"`
}
