package library

import (
	"strings"
	"time"
)

// AddBookRequest carries the fields an admin supplies for a new title.
type AddBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Copies      int    `json:"copies"`
	Category    string `json:"category"`
	Img         string `json:"img"`
}

func (r AddBookRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return newError(KindInvalid, "Book title is required")
	case strings.TrimSpace(r.Author) == "":
		return newError(KindInvalid, "Book author is required")
	case r.Copies < 0:
		return newError(KindInvalid, "Book copies cannot be negative")
	}
	return nil
}

// toBook maps the request onto a new Book with every copy available.
func (r AddBookRequest) toBook() *Book {
	return &Book{
		Title:           strings.TrimSpace(r.Title),
		Author:          strings.TrimSpace(r.Author),
		Description:     r.Description,
		Copies:          r.Copies,
		CopiesAvailable: r.Copies,
		Category:        r.Category,
		Img:             r.Img,
	}
}

// ReviewRequest is a user's rating of a book. ReviewDescription is optional.
type ReviewRequest struct {
	BookID            int64   `json:"bookId"`
	Rating            float64 `json:"rating"`
	ReviewDescription *string `json:"reviewDescription"`
}

func (r ReviewRequest) validate() error {
	if r.Rating < 0 || r.Rating > 5 {
		return newError(KindInvalid, "Rating must be between 0 and 5")
	}
	return nil
}

func (r ReviewRequest) toReview(userEmail string, date time.Time) *Review {
	review := &Review{
		UserEmail: userEmail,
		Date:      date,
		Rating:    r.Rating,
		BookID:    r.BookID,
	}
	if r.ReviewDescription != nil {
		desc := *r.ReviewDescription
		review.ReviewDescription = &desc
	}
	return review
}

// MessageRequest is a question posted by a user.
type MessageRequest struct {
	Title    string `json:"title"`
	Question string `json:"question"`
}

// AdminQuestionRequest is an admin's answer to message ID.
type AdminQuestionRequest struct {
	ID       int64  `json:"id"`
	Response string `json:"response"`
}

// PaymentInfoRequest asks the gateway for an intent. Amount is in minor units (cents).
type PaymentInfoRequest struct {
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ReceiptEmail string `json:"receiptEmail"`
}

// IntentRequest is what PaymentService hands to the gateway.
type IntentRequest struct {
	Amount       int64
	Currency     string
	ReceiptEmail string
}
