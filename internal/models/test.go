package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Test is a lab test offering. Date is stored as YYYY-MM-DD so that string
// comparison orders it chronologically.
type Test struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	TestName       string             `bson:"testName" json:"testName"`
	Details        string             `bson:"details" json:"details"`
	ShortDetails   string             `bson:"shortDetails" json:"shortDetails"`
	Slots          int                `bson:"slots" json:"slots"`
	SlotsAvailable int                `bson:"slotsAvailable" json:"slotsAvailable"`
	Price          float64            `bson:"price" json:"price"`
	Date           string             `bson:"date" json:"date"`
	ImageURL       string             `bson:"imageURL" json:"imageURL"`
	Booked         int                `bson:"booked" json:"booked"`
}

// TestFields are the fields PUT /tests copies onto the stored test. A field
// missing from the body is written as null.
var TestFields = []string{"testName", "details", "shortDetails", "slots", "price", "date", "imageURL", "slotsAvailable", "booked"}

const FeaturedTestsLimit = 6
