package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents a registered account, customer or admin
type User struct {
	ID                  uint           `json:"user_id" gorm:"primaryKey"`
	Email               string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash        string         `json:"-" gorm:"not null"`
	FullName            string         `json:"full_name"`
	Phone               string         `json:"phone"`
	Role                string         `json:"role" gorm:"default:'customer'"`
	IsActive            bool           `json:"is_active" gorm:"default:true"`
	IsLocked            bool           `json:"is_locked" gorm:"default:false"`
	LockedUntil         *time.Time     `json:"locked_until,omitempty"`
	FailedLoginAttempts int            `json:"failed_login_attempts"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`

	Addresses []Address `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
}

// Category groups books; deletion is blocked while any book references it
type Category struct {
	ID          uint      `json:"category_id" gorm:"primaryKey"`
	Name        string    `json:"category_name" gorm:"not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Books []Book `json:"books,omitempty" gorm:"foreignKey:CategoryID"`
}

// Book is a catalog item. Price is in the smallest VND unit and is
// snapshotted into order items at purchase time; later price changes do
// not affect historical orders.
type Book struct {
	ID              uint      `json:"book_id" gorm:"primaryKey"`
	ISBN            string    `json:"isbn" gorm:"index;not null"`
	Title           string    `json:"title" gorm:"not null"`
	Author          string    `json:"author"`
	Publisher       string    `json:"publisher"`
	PublicationYear int       `json:"publication_year"`
	Description     string    `json:"description"`
	Price           int64     `json:"price" gorm:"not null"`
	StockQuantity   int       `json:"stock_quantity" gorm:"default:0"`
	CategoryID      *uint     `json:"category_id"`
	Category        *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	ImageURL        string    `json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:BookID"`
}

// CartItem is one (user, book) line in a cart. Re-adding the same book
// increments the quantity instead of creating a second row.
type CartItem struct {
	ID        uint      `json:"cart_id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_user_book"`
	BookID    uint      `json:"book_id" gorm:"not null;uniqueIndex:idx_cart_user_book"`
	Book      Book      `json:"book,omitempty" gorm:"foreignKey:BookID"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart"
}

// Review holds one rating per (user, book) pair. A second submission
// overwrites rating and comment rather than creating a duplicate.
type Review struct {
	ID        uint      `json:"review_id" gorm:"primaryKey"`
	BookID    uint      `json:"book_id" gorm:"not null;uniqueIndex:idx_review_user_book"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_user_book"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Rating    int       `json:"rating" gorm:"check:rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PasswordResetToken stores only the SHA-256 of the issued token. Tokens
// are single use and expire a few minutes after issuance.
type PasswordResetToken struct {
	ID        uint      `json:"token_id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null"`
	TokenHash string    `json:"-" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}
