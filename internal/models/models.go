package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the stored account document. The password hash is never serialized to JSON.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	IsActive  *bool              `bson:"isActive,omitempty" json:"isActive,omitempty"`
	Cart      []CartItem         `bson:"cart" json:"cart"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Active treats a missing flag as active; only an explicit false disables an account.
func (u User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// Public is the identity view returned by the auth endpoints.
func (u User) Public(role string) PublicUser {
	return PublicUser{ID: u.ID.Hex(), Email: u.Email, Name: u.Name, Role: role}
}

// View is the admin representation of an account, without the password hash.
func (u User) View() UserView {
	cart := u.Cart
	if cart == nil {
		cart = []CartItem{}
	}
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      CoerceRole(u.Role),
		IsActive:  u.Active(),
		Cart:      cart,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type UserView struct {
	ID        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Role      string             `json:"role"`
	IsActive  bool               `json:"isActive"`
	Cart      []CartItem         `json:"cart"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// CoerceRole maps anything but an exact "admin" to "user".
func CoerceRole(role string) string {
	if role == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// NormalizeEmail trims and lower-cases an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type CartItem struct {
	ProductID    string    `bson:"productId" json:"productId"`
	ProductName  string    `bson:"productName" json:"productName"`
	ProductPrice Price     `bson:"productPrice" json:"productPrice"`
	ImageOne     string    `bson:"imageOne" json:"imageOne"`
	Quantity     int       `bson:"quantity" json:"quantity"`
	AddedAt      time.Time `bson:"addedAt" json:"addedAt"`
}

// Product field names follow the storefront's existing JSON contract.
type Product struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ImageOne            string             `bson:"imageOne" json:"imageOne"`
	ImageTwo            string             `bson:"imageTwo" json:"imageTwo"`
	ImageThree          string             `bson:"imageThree" json:"imageThree"`
	ProductName         string             `bson:"productName" json:"productName"`
	ProductPrice        Text               `bson:"productPrice" json:"productPrice"`
	ProductOnSale       Text               `bson:"productOnSale" json:"productOnSale"`
	AllProducts         Text               `bson:"allProducts" json:"allProducts"`
	ProductCategory     string             `bson:"productCategory" json:"productCategory"`
	ProductAbout        string             `bson:"productAbout" json:"productAbout"`
	ProductLittleDetail string             `bson:"productLittleDetail" json:"productLittleDetail"`
	ProductInfo         string             `bson:"productInfo" json:"productInfo"`
	ProductColorOne     string             `bson:"productColorOne" json:"productColorOne"`
	ProductColorTwo     string             `bson:"productColortwo" json:"productColortwo"`
	IsProductBestseller Text               `bson:"isProductBestseller" json:"isProductBestseller"`
	IsProductNew        Text               `bson:"isProductNew" json:"isProductNew"`
	ProductID           string             `bson:"productId,omitempty" json:"productId"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Inquiry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Firstname   string             `bson:"firstname" json:"firstname"`
	Lastname    string             `bson:"lastname" json:"lastname"`
	Email       string             `bson:"email" json:"email"`
	Phone       string             `bson:"phone" json:"phone"`
	TextMessage string             `bson:"textmessage" json:"textmessage"`
	Reviewed    bool               `bson:"reviewed" json:"reviewed"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ParseID accepts only the canonical lower-case 24-hex form of an object id.
func ParseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil || oid.Hex() != id {
		return primitive.NilObjectID, false
	}
	return oid, true
}
