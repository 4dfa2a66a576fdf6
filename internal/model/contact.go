// internal/model/contact.go
package model

type Contact struct {
	ID          int    `db:"id" json:"id"`
	AccountID   int    `db:"account_id" json:"account_id"`
	Name        string `db:"name" json:"name"`
	Email       string `db:"email" json:"email"`
	PhoneNumber string `db:"phone_number" json:"phone_number"`
}

type Label struct {
	ID        int    `db:"id" json:"id"`
	AccountID int    `db:"account_id" json:"account_id"`
	Title     string `db:"title" json:"title"`
}

type Agent struct {
	ID        int    `db:"id" json:"id"`
	AccountID int    `db:"account_id" json:"account_id"`
	Name      string `db:"name" json:"name"`
}
