package models

import "go.mongodb.org/mongo-driver/bson"

// Document is a schema-free content entry returned verbatim.
type Document = bson.M

// ContentKind names a read-only marketing collection.
type ContentKind string

const (
	ContentPromotions   ContentKind = "promotions"
	ContentTestimonials ContentKind = "testimonials"
	ContentTips         ContentKind = "tips"
	ContentBlogs        ContentKind = "blogs"
	ContentAbout        ContentKind = "about"
	ContentFooter       ContentKind = "footerData"
)

// WriteResult mirrors the acknowledgement the document store returns for a
// mutation. Only the counters relevant to the operation are set.
type WriteResult struct {
	Acknowledged  bool        `json:"acknowledged"`
	InsertedID    interface{} `json:"insertedId,omitempty"`
	MatchedCount  *int64      `json:"matchedCount,omitempty"`
	ModifiedCount *int64      `json:"modifiedCount,omitempty"`
	DeletedCount  *int64      `json:"deletedCount,omitempty"`
}

func Inserted(id interface{}) WriteResult {
	return WriteResult{Acknowledged: true, InsertedID: id}
}

func Updated(matched, modified int64) WriteResult {
	return WriteResult{Acknowledged: true, MatchedCount: &matched, ModifiedCount: &modified}
}

func Deleted(n int64) WriteResult {
	return WriteResult{Acknowledged: true, DeletedCount: &n}
}
