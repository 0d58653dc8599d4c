package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Banner struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	ImageURL     string             `bson:"imageURL" json:"imageURL"`
	CouponCode   string             `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	DiscountRate float64            `bson:"discountRate,omitempty" json:"discountRate,omitempty"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
}
