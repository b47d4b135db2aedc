package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is an invite-time snapshot of a user embedded in a wishlist.
// It is a value copy, not a reference: later changes to the user record
// do not propagate here.
type Member struct {
	ID    primitive.ObjectID `json:"_id"   bson:"_id"`
	Name  string             `json:"name"  bson:"name"`
	Email string             `json:"email" bson:"email"`
}

// Collaborator is a member plus the time it was invited.
type Collaborator struct {
	ID       primitive.ObjectID `json:"_id"      bson:"_id"`
	Name     string             `json:"name"     bson:"name"`
	Email    string             `json:"email"    bson:"email"`
	JoinedAt time.Time          `json:"joinedAt" bson:"joinedAt"`
}

// Comment on a product. Present in the document layout but not populated
// by any current route.
type Comment struct {
	ID        primitive.ObjectID `json:"_id"       bson:"_id"`
	Text      string             `json:"text"      bson:"text"`
	Author    Member             `json:"author"    bson:"author"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Reaction on a product. Same as Comment: carried in the layout, always
// empty in current flows.
type Reaction struct {
	Emoji string               `json:"emoji" bson:"emoji"`
	Count int                  `json:"count" bson:"count"`
	Users []primitive.ObjectID `json:"users" bson:"users"`
}

// Product lives only inside its parent wishlist's products array.
type Product struct {
	ID          primitive.ObjectID `json:"_id"         bson:"_id"`
	Name        string             `json:"name"        bson:"name"`
	Price       float64            `json:"price"       bson:"price"`
	ImageURL    string             `json:"imageUrl"    bson:"imageUrl"`
	Description string             `json:"description" bson:"description"`
	AddedBy     Member             `json:"addedBy"     bson:"addedBy"`
	Comments    []Comment          `json:"comments"    bson:"comments"`
	Reactions   []Reaction         `json:"reactions"   bson:"reactions"`
	CreatedAt   time.Time          `json:"createdAt"   bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"   bson:"updatedAt"`
}

// Wishlist is a document in the "wishlists" collection. Collaborators and
// products are embedded arrays, not separate collections.
type Wishlist struct {
	ID            primitive.ObjectID `json:"_id"           bson:"_id,omitempty"`
	Name          string             `json:"name"          bson:"name"`
	Description   string             `json:"description"   bson:"description"`
	CreatedBy     Member             `json:"createdBy"     bson:"createdBy"`
	Collaborators []Collaborator     `json:"collaborators" bson:"collaborators"`
	Products      []Product          `json:"products"      bson:"products"`
	CreatedAt     time.Time          `json:"createdAt"     bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"     bson:"updatedAt"`
}

// HasAccess reports whether userID is the creator or a collaborator.
func (w *Wishlist) HasAccess(userID primitive.ObjectID) bool {
	if w.CreatedBy.ID == userID {
		return true
	}
	for _, c := range w.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}

// HasCollaboratorEmail reports whether email already appears in the
// collaborators array.
func (w *Wishlist) HasCollaboratorEmail(email string) bool {
	for _, c := range w.Collaborators {
		if c.Email == email {
			return true
		}
	}
	return false
}

// WishlistSummary is a list-view wishlist annotated with the derived
// product count. ItemCount is computed, never stored.
type WishlistSummary struct {
	Wishlist  `bson:",inline"`
	ItemCount int `json:"itemCount" bson:"-"`
}

// CreateWishlistRequest is the JSON body for POST /api/wishlists.
type CreateWishlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// InviteRequest is the JSON body for POST /api/wishlists/{id}/invite.
type InviteRequest struct {
	Email string `json:"email"`
}

// AddProductRequest is the JSON body for POST /api/wishlists/{id}/products.
type AddProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Description string  `json:"description"`
}
