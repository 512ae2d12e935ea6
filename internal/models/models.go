package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name"          json:"name"`
	Email        string             `bson:"email"         json:"email"`
	PasswordHash string             `bson:"password"      json:"-"`
	IsAdmin      bool               `bson:"isAdmin"       json:"isAdmin"`
	CreatedAt    time.Time          `bson:"created_at"    json:"created_at"`
}

type Review struct {
	UserID    primitive.ObjectID `bson:"user"       json:"user"`
	Name      string             `bson:"name"       json:"name"`
	Rating    int                `bson:"rating"     json:"rating"`
	Comment   string             `bson:"comment"    json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name"          json:"name"`
	Price        float64            `bson:"price"         json:"price"`
	Brand        string             `bson:"brand"         json:"brand"`
	Category     string             `bson:"category"      json:"category"`
	CountInStock int                `bson:"countInStock"  json:"countInStock"`
	Description  string             `bson:"description"   json:"description"`
	Image        string             `bson:"image"         json:"image"`
	Reviews      []Review           `bson:"reviews"       json:"reviews"`
	NumReviews   int                `bson:"numReviews"    json:"numReviews"`
	Rating       float64            `bson:"rating"        json:"rating"`
	CreatedAt    time.Time          `bson:"created_at"    json:"created_at"`
}
