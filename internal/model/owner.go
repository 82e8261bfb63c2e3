package model

import "time"

// Owner is a persisted property owner.
type Owner struct {
	IDOwner  string     `bson:"_id" json:"idOwner"`
	Name     string     `bson:"name" json:"name"`
	Address  *string    `bson:"address,omitempty" json:"address,omitempty"`
	Photo    *string    `bson:"photo,omitempty" json:"photo,omitempty"`
	Birthday *time.Time `bson:"birthday,omitempty" json:"birthday,omitempty"`
}
