package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Division, District and Upazila are read-only reference data loaded out of band.
type Division struct {
	ObjectID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ID       string             `bson:"id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	BnName   string             `bson:"bn_name" json:"bn_name"`
	URL      string             `bson:"url,omitempty" json:"url,omitempty"`
}

type District struct {
	ObjectID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ID         string             `bson:"id" json:"id"`
	DivisionID string             `bson:"division_id" json:"division_id"`
	Name       string             `bson:"name" json:"name"`
	BnName     string             `bson:"bn_name" json:"bn_name"`
	Lat        string             `bson:"lat,omitempty" json:"lat,omitempty"`
	Lon        string             `bson:"lon,omitempty" json:"lon,omitempty"`
	URL        string             `bson:"url,omitempty" json:"url,omitempty"`
}

type Upazila struct {
	ObjectID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ID         string             `bson:"id" json:"id"`
	DistrictID string             `bson:"district_id" json:"district_id"`
	Name       string             `bson:"name" json:"name"`
	BnName     string             `bson:"bn_name" json:"bn_name"`
	URL        string             `bson:"url,omitempty" json:"url,omitempty"`
}
