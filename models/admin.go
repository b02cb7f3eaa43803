package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Admin access levels: 1 is a local admin, 2 a higher-level one. An admin may
// only claim issues whose escalation level is at or below their access level.
type Admin struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName        string             `bson:"fullName" json:"fullName"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password,omitempty" json:"-"`
	PhoneNumber     string             `bson:"phonenumber" json:"phonenumber"`
	Department      string             `bson:"department" json:"department"`
	AdminAccessCode int                `bson:"adminAccessCode" json:"adminAccessCode"`
	AccessLevel     int                `bson:"accessLevel" json:"accessLevel"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (a *Admin) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashed)
	return nil
}

func (a *Admin) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(candidate))
	return err == nil
}
